// Package postconstruct implements spec.md §4.5: building one or more
// secondary indexes over live primary data while writes continue, without
// blocking writers and without losing updates. The state machine
// (Registered → Scanning → Draining → Finalized, with Interrupted reachable
// from any state) mirrors the protocol in the teacher's generation.go —
// resource lifecycle driven by an explicit state field plus one owning
// goroutine, with locks released along every exit path.
package postconstruct

import (
	"context"

	"github.com/google/uuid"
	"github.com/molecula/qcore/config"
	"github.com/molecula/qcore/errors"
	"github.com/molecula/qcore/logger"
	"github.com/molecula/qcore/region"
	"github.com/molecula/qcore/store"
)

// defaultMaxChunk is NewTask's fallback when cfg is nil, matching
// config.NewDefaultConfig's PostConstruction.MaxChunkSize.
const defaultMaxChunk = 10

// State is one point in the post-construction task's lifecycle.
type State int

const (
	Registered State = iota
	Scanning
	Draining
	Finalized
	Interrupted
)

func (s State) String() string {
	switch s {
	case Registered:
		return "registered"
	case Scanning:
		return "scanning"
	case Draining:
		return "draining"
	case Finalized:
		return "finalized"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// IndexFunc computes a target index's entry for one primary row. Returning
// a nil Datum means the row contributes no entry (e.g. it fails a partial
// index's predicate).
type IndexFunc func(key []byte, value region.Datum) (region.Datum, error)

// Yielder hands control to the scheduler without releasing any held locks,
// per spec.md §4.6 "Cooperative yield". This has no natural third-party
// analogue in the retrieval pack — it is a scheduling primitive the host
// runtime supplies, so the default implementation below is the only
// reasonable stdlib-only piece of this package (see DESIGN.md).
type Yielder interface {
	Yield(ctx context.Context)
}

// GoscheduleYielder yields via runtime.Gosched, suitable when the host
// runtime is a plain goroutine (as opposed to a cooperative fiber
// scheduler, which spec.md's "single-threaded cooperative per logical
// store" model assumes in production).
type GoscheduleYielder struct{}

func (GoscheduleYielder) Yield(ctx context.Context) {
	select {
	case <-ctx.Done():
	default:
		goYield()
	}
}

// Drainer is a counted lifetime token: while outstanding, a shutdown
// signal remains blocked, per spec.md §4.6 "Drainer handle". Acquire
// returns ok=false if the store is already shutting down.
type Drainer interface {
	Acquire() (release func(), ok bool)
}

// Task drives one secondary-index build through the state machine.
type Task struct {
	ID      uuid.UUID
	Targets []uuid.UUID
	Index   IndexFunc

	Store    store.Store
	Drainer  Drainer
	Yielder  Yielder
	BasePath string
	MaxChunk int
	Log      logger.Logger

	state        State
	queue        *store.ModQueue
	queueLock    store.LockHandle
	releaseDrain func()
}

// NewTask constructs a task with a fresh UUID, ready for Run. cfg supplies
// the mod-queue base path and drain chunk size (config.PostConstructionConfig);
// a nil cfg falls back to config.NewDefaultConfig's values.
func NewTask(targets []uuid.UUID, index IndexFunc, st store.Store, d Drainer, cfg *config.PostConstructionConfig, log logger.Logger) *Task {
	if log == nil {
		log = logger.NopLogger
	}
	basePath := "."
	maxChunk := defaultMaxChunk
	if cfg != nil {
		basePath = cfg.BasePath
		if cfg.MaxChunkSize > 0 {
			maxChunk = cfg.MaxChunkSize
		}
	}
	return &Task{
		ID:       uuid.New(),
		Targets:  targets,
		Index:    index,
		Store:    st,
		Drainer:  d,
		Yielder:  GoscheduleYielder{},
		BasePath: basePath,
		MaxChunk: maxChunk,
		Log:      log,
		state:    Registered,
	}
}

// State reports the task's current lifecycle position.
func (t *Task) State() State { return t.state }

// Run executes the full protocol: register, scan, drain, finalize. If the
// drainer refuses, Run returns an errors.ErrInterrupted error at once and
// the task stays Registered. If a step fails with an errors.ErrInterrupted
// error (the drain signal fired), Run removes the queue registration
// through the store's emergency deregister path, closes the queue, and
// returns that error; the queue file is left on disk per spec.md §6.
// Deregistration under the sindex-block lock is not attempted on this
// path. Any other error is returned without deregistering the queue. In
// both failure cases the task ends in the Interrupted state.
func (t *Task) Run(ctx context.Context, drain store.DrainSignal) (err error) {
	release, ok := t.Drainer.Acquire()
	if !ok {
		return errors.New(errors.ErrInterrupted, "post-construction: store already draining")
	}
	t.releaseDrain = release
	defer func() {
		if t.releaseDrain != nil {
			t.releaseDrain()
		}
	}()

	if err := t.register(ctx, drain); err != nil {
		return t.abandon(err)
	}
	if err := t.scan(ctx, drain); err != nil {
		return t.abandon(err)
	}
	if err := t.drain(ctx, drain); err != nil {
		return t.abandon(err)
	}
	return nil
}

// register implements spec.md §4.5 step 1: allocate the disk-backed queue,
// join the sindex-queue serialization line, and register so every future
// write also appends a modification report.
func (t *Task) register(ctx context.Context, drain store.DrainSignal) error {
	q, err := store.NewModQueue(t.BasePath)
	if err != nil {
		return errors.Wrap(err, "post-construction: allocating mod queue")
	}
	t.queue = q

	sindexBlock, err := t.Store.AcquireSindexBlockForWrite(ctx, t.ID.String())
	if err != nil {
		return errors.Wrap(err, "post-construction: acquiring sindex block")
	}
	defer sindexBlock.Release()

	lock, err := t.Store.GetInLineForSindexQueue(ctx, sindexBlock)
	if err != nil {
		return errors.Wrap(err, "post-construction: joining sindex queue line")
	}
	select {
	case <-lock.Head():
	case <-drain:
		lock.Release()
		return errors.New(errors.ErrInterrupted, "post-construction: drain signal during register")
	case <-ctx.Done():
		lock.Release()
		return ctx.Err()
	}
	t.queueLock = lock

	if err := t.Store.RegisterSindexQueue(t.queue, lock); err != nil {
		return errors.Wrap(err, "post-construction: registering mod queue")
	}
	t.state = Scanning
	t.Log.Debugf("post-construction %s registered, scanning %d targets", t.ID, len(t.Targets))
	return nil
}

// scan implements spec.md §4.5 step 2: traverse the primary B-tree,
// computing and writing index entries, yielding cooperatively.
func (t *Task) scan(ctx context.Context, drain store.DrainSignal) error {
	visit := func(key []byte, value region.Datum) error {
		select {
		case <-drain:
			return errors.New(errors.ErrInterrupted, "post-construction: drain signal during scan")
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		t.Yielder.Yield(ctx)
		if t.Index == nil {
			return nil
		}
		_, err := t.Index(key, value)
		return err
	}
	if err := t.Store.PostConstructSecondaryIndexes(ctx, t.Targets, drain, visit); err != nil {
		return errors.Wrap(err, "post-construction: scan")
	}
	t.state = Draining
	return nil
}

// drain implements spec.md §4.5 step 3: repeatedly acquire a write token
// pair with HARD durability, pop up to MaxChunk reports, and apply each,
// until the queue is empty.
func (t *Task) drain(ctx context.Context, drain store.DrainSignal) error {
	for {
		t.Yielder.Yield(ctx)

		txn, _, err := t.Store.AcquireSuperblockForWrite(ctx, 0, 0, store.DurabilityHard, drain)
		if err != nil {
			return errors.Wrap(err, "post-construction: acquiring drain superblock")
		}

		sindexBlock, err := t.Store.AcquireSindexBlockForWrite(ctx, t.ID.String())
		if err != nil {
			txn.Rollback()
			return errors.Wrap(err, "post-construction: acquiring sindex block for drain")
		}

		reports, err := t.queue.Pop(t.MaxChunk)
		if err != nil {
			sindexBlock.Release()
			txn.Rollback()
			return errors.Wrap(err, "post-construction: popping mod queue")
		}
		if len(reports) == 0 {
			// Nothing left to apply. Finalize without releasing
			// sindexBlock first: releasing and reacquiring here would
			// open a window where a write commits, is pushed onto a
			// queue nobody drains again, and is dropped. Observing
			// "empty" and deregistering must happen under one
			// uninterrupted hold of the block.
			txn.Rollback()
			return t.finalizeLocked(ctx, sindexBlock)
		}

		accesses, err := t.Store.AcquireSindexSuperblocksForWrite(ctx, t.Targets, sindexBlock)
		if err != nil {
			sindexBlock.Release()
			txn.Rollback()
			return errors.Wrap(err, "post-construction: acquiring sindex superblocks")
		}

		for _, mod := range reports {
			if err := t.Store.RdbUpdateSindexes(ctx, accesses, mod, txn, nil); err != nil {
				sindexBlock.Release()
				txn.Rollback()
				return errors.Wrap(err, "post-construction: applying mod report")
			}
		}

		sindexBlock.Release()
		if err := txn.Commit(); err != nil {
			return errors.Wrap(err, "post-construction: committing drain batch")
		}

		select {
		case <-drain:
			return errors.New(errors.ErrInterrupted, "post-construction: drain signal during drain loop")
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// finalizeLocked implements spec.md §4.5 step 4: mark each target index
// ready and deregister the queue, deleting its backing file. It assumes
// sindexBlock is already held by the caller (drain's final, empty-queue
// iteration) and releases it before returning.
func (t *Task) finalizeLocked(ctx context.Context, sindexBlock store.BufLock) error {
	defer sindexBlock.Release()

	for _, id := range t.Targets {
		if err := t.Store.MarkIndexUpToDate(ctx, id, sindexBlock); err != nil {
			return errors.Wrap(err, "post-construction: marking index ready")
		}
	}
	if err := t.Store.DeregisterSindexQueue(t.queue, t.queueLock); err != nil {
		return errors.Wrap(err, "post-construction: deregistering mod queue")
	}
	t.queueLock.Release()
	if err := t.queue.Delete(); err != nil {
		return errors.Wrap(err, "post-construction: deleting mod queue file")
	}
	t.state = Finalized
	t.Log.Debugf("post-construction %s finalized", t.ID)
	return nil
}

// abandon implements spec.md §4.5 step 5 for the one Go error type this
// engine is documented to catch: interrupted. Every other error unwinds
// unchanged, per spec.md §7 "Post-construction catches interrupted at one
// specific site to run its emergency-deregister path; all other errors
// unwind."
func (t *Task) abandon(err error) error {
	if !errors.Is(err, errors.ErrInterrupted) {
		t.state = Interrupted
		return err
	}
	if t.queue != nil {
		if emergErr := t.Store.EmergencyDeregisterSindexQueue(t.queue); emergErr != nil {
			t.Log.Errorf("post-construction %s: emergency deregister failed: %v", t.ID, emergErr)
		}
		if closeErr := t.queue.Close(); closeErr != nil {
			t.Log.Errorf("post-construction %s: closing queue after interrupt: %v", t.ID, closeErr)
		}
	}
	t.state = Interrupted
	t.Log.Warnf("post-construction %s interrupted", t.ID)
	return err
}
