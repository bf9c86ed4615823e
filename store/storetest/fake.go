// Package storetest provides an in-memory fake implementing the store.Store
// contract, for exercising the post-construction engine's liveness property
// (spec.md §8 concrete scenario 6) without a real on-disk B-tree. Grounded
// on the teacher's pattern of small hand-rolled fakes for interface-heavy
// subsystems (e.g. testhook's mock storage layers).
package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/molecula/qcore/region"
	"github.com/molecula/qcore/store"
)

// Fake is a single-shard, single-index in-memory store. Primary data lives
// in Primary; writes made after a queue is registered also enqueue a
// ModReport. It is intentionally not safe against concurrent Write
// vs. index-building goroutines racing over the same key ordering beyond
// what a single mutex serializes: exactly the interleavings the spec
// requires (index registration happens-before every subsequent write).
type Fake struct {
	mu      sync.Mutex
	Primary map[string]region.Datum
	Index   map[string]region.Datum // built secondary index entries, keyed by primary key
	Ready   map[uuid.UUID]bool

	// blockMu models the sindex block lock (spec.md §6
	// acquire_sindex_block_for_write): held for the duration between
	// AcquireSindexBlockForWrite and the returned BufLock's Release, and
	// also taken by Write/Delete around their queue-push step, so a
	// writer's commit and a drain iteration's queue check can never
	// interleave — the mutual-exclusion spec.md §5 attributes to "the
	// store enqueues under the same sindex-block lock that serializes
	// primary commits."
	blockMu sync.Mutex

	queue     *store.ModQueue
	queueLock *fakeLockHandle
	draining  bool

	// Snapshotted closes right after PostConstructSecondaryIndexes takes
	// its primary-data snapshot, letting tests synchronize concurrent
	// writes to land strictly after the scan's read-set is fixed — the
	// interleaving spec.md §8's liveness scenario exercises.
	Snapshotted chan struct{}
}

// New returns an empty fake store with no target index yet marked ready.
func New() *Fake {
	return &Fake{
		Primary:     map[string]region.Datum{},
		Index:       map[string]region.Datum{},
		Ready:       map[uuid.UUID]bool{},
		Snapshotted: make(chan struct{}),
	}
}

// Write applies a primary-key write directly (bypassing the qcore write
// path, which is out of scope here) and, if a queue is registered, appends
// a ModReport so the post-construction task observes it.
func (f *Fake) Write(key string, value region.Datum) error {
	f.blockMu.Lock()
	defer f.blockMu.Unlock()

	f.mu.Lock()
	old := f.Primary[key]
	f.Primary[key] = value
	q := f.queue
	f.mu.Unlock()

	if q != nil {
		return q.Push(store.ModReport{Key: []byte(key), OldValue: old, NewValue: value})
	}
	return nil
}

// Delete removes a primary key, enqueuing a delete ModReport if registered.
func (f *Fake) Delete(key string) error {
	f.blockMu.Lock()
	defer f.blockMu.Unlock()

	f.mu.Lock()
	old, existed := f.Primary[key]
	delete(f.Primary, key)
	q := f.queue
	f.mu.Unlock()

	if !existed {
		return nil
	}
	if q != nil {
		return q.Push(store.ModReport{Key: []byte(key), OldValue: old, NewValue: nil})
	}
	return nil
}

func (f *Fake) AcquireSuperblockForWrite(ctx context.Context, ts int64, expectedChangeCount int64, durability store.Durability, drain store.DrainSignal) (store.Txn, store.Superblock, error) {
	return &fakeTxn{}, &fakeSuperblock{expected: expectedChangeCount}, nil
}

func (f *Fake) AcquireSindexBlockForWrite(ctx context.Context, blockID string) (store.BufLock, error) {
	f.blockMu.Lock()
	return &fakeBufLock{f: f}, nil
}

func (f *Fake) RegisterSindexQueue(q *store.ModQueue, lock store.LockHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = q
	return nil
}

func (f *Fake) DeregisterSindexQueue(q *store.ModQueue, lock store.LockHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = nil
	return nil
}

func (f *Fake) EmergencyDeregisterSindexQueue(q *store.ModQueue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = nil
	return nil
}

func (f *Fake) GetInLineForSindexQueue(ctx context.Context, sindexBlock store.BufLock) (store.LockHandle, error) {
	h := make(chan struct{})
	close(h) // the fake never contends, so every acquisition is immediately head-of-line
	return &fakeLockHandle{head: h}, nil
}

func (f *Fake) AcquireSindexSuperblocksForWrite(ctx context.Context, uuids []uuid.UUID, sindexBlock store.BufLock) ([]store.SindexAccess, error) {
	out := make([]store.SindexAccess, len(uuids))
	for i, id := range uuids {
		out[i] = fakeSindexAccess{id: id}
	}
	return out, nil
}

func (f *Fake) MarkIndexUpToDate(ctx context.Context, id uuid.UUID, sindexBlock store.BufLock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ready[id] = true
	return nil
}

// PostConstructSecondaryIndexes scans a snapshot of Primary taken under the
// lock, so concurrent writes during the scan are visible only through the
// modification queue, matching spec.md §4.5 step 2's at-least-once
// argument.
func (f *Fake) PostConstructSecondaryIndexes(ctx context.Context, uuids []uuid.UUID, drain store.DrainSignal, visit func(key []byte, value region.Datum) error) error {
	f.mu.Lock()
	snapshot := make(map[string]region.Datum, len(f.Primary))
	for k, v := range f.Primary {
		snapshot[k] = v
	}
	f.mu.Unlock()
	close(f.Snapshotted)

	for k, v := range snapshot {
		select {
		case <-drain:
			return context.Canceled
		default:
		}
		if err := visit([]byte(k), v); err != nil {
			return err
		}
		f.mu.Lock()
		f.Index[k] = v
		f.mu.Unlock()
	}
	return nil
}

func (f *Fake) RdbUpdateSindexes(ctx context.Context, accesses []store.SindexAccess, mod store.ModReport, txn store.Txn, dc store.DeletionContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mod.IsDelete() {
		delete(f.Index, string(mod.Key))
		return nil
	}
	f.Index[string(mod.Key)] = mod.NewValue
	return nil
}

type fakeTxn struct{}

func (fakeTxn) Commit() error { return nil }
func (fakeTxn) Rollback()     {}

type fakeSuperblock struct{ expected int64 }

func (s fakeSuperblock) ExpectedChangeCount() int64 { return s.expected }

type fakeBufLock struct{ f *Fake }

func (b fakeBufLock) Release() { b.f.blockMu.Unlock() }

type fakeLockHandle struct{ head chan struct{} }

func (h *fakeLockHandle) Head() <-chan struct{} { return h.head }
func (h *fakeLockHandle) Release()              {}

type fakeSindexAccess struct{ id uuid.UUID }

func (a fakeSindexAccess) UUID() uuid.UUID { return a.id }

// Drainer is a fake postconstruct.Drainer that counts outstanding handles.
// Nothing in this package sets stopped, so Acquire always succeeds.
type Drainer struct {
	mu      sync.Mutex
	count   int
	stopped bool
}

func (d *Drainer) Acquire() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil, false
	}
	d.count++
	return func() {
		d.mu.Lock()
		d.count--
		d.mu.Unlock()
	}, true
}
