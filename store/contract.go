// Package store defines the storage-engine contract consumed by the
// post-construction engine (spec.md §6 "Storage engine contract
// (consumed)"). qcore never implements a storage engine itself; these
// interfaces are what a host embedding qcore must satisfy, in the same
// spirit as the teacher's Tx interface in tx.go abstracts over roaring/rbf
// transaction providers without qcore depending on either concretely.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/molecula/qcore/region"
)

// Durability mirrors op.Durability at the storage boundary so this package
// does not import op for a single enum.
type Durability int

const (
	DurabilityHard Durability = iota
	DurabilitySoft
)

// ModReport is spec.md §3 glossary "Modification report": a record of one
// key mutation, produced by the store on every write and consumed by the
// post-construction engine.
type ModReport struct {
	Key      []byte
	OldValue region.Datum // nil if the key had no prior value
	NewValue region.Datum // nil if this report is a delete
	AtUs     int64
}

// IsDelete reports whether this report records a delete (no new value).
func (m ModReport) IsDelete() bool { return m.NewValue == nil }

// Superblock is the write-transaction handle returned by
// AcquireSuperblockForWrite.
type Superblock interface {
	// ExpectedChangeCount is the caller-supplied fencing value the store
	// used to validate the acquisition was not stale.
	ExpectedChangeCount() int64
}

// Txn is the transaction scope a Superblock acquisition opens.
type Txn interface {
	Commit() error
	Rollback()
}

// BufLock guards a store's sindex superblock metadata (the "sindex block")
// against concurrent mutation.
type BufLock interface {
	Release()
}

// LockHandle is returned by an in-line FIFO acquisition (spec.md §4.6). Head
// fires once this handle reaches the front of the queue; the handle is
// usable (but should not yet touch the guarded resource) before that.
type LockHandle interface {
	// Head returns a channel that is closed when this handle becomes the
	// head of the queue.
	Head() <-chan struct{}
	Release()
}

// SindexAccess is one target index's write handle for applying a
// ModReport during drain.
type SindexAccess interface {
	UUID() uuid.UUID
}

// DeletionContext is opaque, storage-engine-defined tombstone bookkeeping
// threaded through RdbUpdateSindexes; qcore never interprets it.
type DeletionContext interface{}

// DrainSignal fires when the store is shutting down; every long-running
// task (post-construction) must observe it and unwind within a bounded
// number of yields, per spec.md §5 "Cancellation and timeouts".
type DrainSignal <-chan struct{}

// Store is the full storage-engine contract post-construction depends on,
// per spec.md §6. A host embedding qcore implements this against its real
// on-disk primary/secondary index structures; package storetest provides an
// in-memory fake for tests.
type Store interface {
	AcquireSuperblockForWrite(ctx context.Context, ts int64, expectedChangeCount int64, durability Durability, drain DrainSignal) (Txn, Superblock, error)
	AcquireSindexBlockForWrite(ctx context.Context, blockID string) (BufLock, error)

	RegisterSindexQueue(q *ModQueue, lock LockHandle) error
	DeregisterSindexQueue(q *ModQueue, lock LockHandle) error
	EmergencyDeregisterSindexQueue(q *ModQueue) error

	GetInLineForSindexQueue(ctx context.Context, sindexBlock BufLock) (LockHandle, error)
	AcquireSindexSuperblocksForWrite(ctx context.Context, uuids []uuid.UUID, sindexBlock BufLock) ([]SindexAccess, error)
	MarkIndexUpToDate(ctx context.Context, id uuid.UUID, sindexBlock BufLock) error

	// PostConstructSecondaryIndexes traverses the primary B-tree, yielding
	// one ModReport-equivalent row per primary key so the scan phase can
	// compute and write index entries. Scanning yields cooperatively and
	// must return promptly once ctx is done.
	PostConstructSecondaryIndexes(ctx context.Context, uuids []uuid.UUID, drain DrainSignal, visit func(key []byte, value region.Datum) error) error

	RdbUpdateSindexes(ctx context.Context, accesses []SindexAccess, mod ModReport, txn Txn, dc DeletionContext) error
}
