package store

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ModQueue is the disk-backed, single-producer/single-consumer FIFO queue
// of ModReports a post-construction task registers with the store, per
// spec.md §6 "Disk-backed queue file layout": one file per task, named
// post_construction_<uuid>, an append-only log of serialized modification
// reports. Random access is never required — the producer only appends,
// the consumer only reads forward — so gob's streaming encoder/decoder is
// enough; qcore does not need a custom on-disk format.
type ModQueue struct {
	id   uuid.UUID
	path string

	mu  sync.Mutex
	w   *os.File
	enc *gob.Encoder

	r   *os.File
	dec *gob.Decoder

	notify chan struct{}
}

// NewModQueue creates the queue file under basePath and returns a handle
// positioned for both writing (append) and reading (from the start).
func NewModQueue(basePath string) (*ModQueue, error) {
	id := uuid.New()
	path := filepath.Join(basePath, "post_construction_"+id.String())

	w, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "opening mod queue for append")
	}
	r, err := os.Open(path)
	if err != nil {
		w.Close()
		return nil, errors.Wrap(err, "opening mod queue for read")
	}

	return &ModQueue{
		id:     id,
		path:   path,
		w:      w,
		enc:    gob.NewEncoder(w),
		r:      r,
		dec:    gob.NewDecoder(bufio.NewReader(r)),
		notify: make(chan struct{}, 1),
	}, nil
}

// UUID identifies this queue's on-disk file, per spec.md §6's naming
// convention.
func (q *ModQueue) UUID() uuid.UUID { return q.id }

// Push appends one modification report. Called by the store, under the
// sindex-block lock, on every committing write once the queue is
// registered.
func (q *ModQueue) Push(m ModReport) error {
	q.mu.Lock()
	err := q.enc.Encode(&m)
	q.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "appending mod report")
	}
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Notify returns a channel that receives a value after a Push, buffered to
// at most one pending value. The post-construction drain loop does not
// wait on it; it polls Pop.
func (q *ModQueue) Notify() <-chan struct{} { return q.notify }

// Pop removes and returns up to max reports in FIFO order. Returns fewer
// than max (possibly zero) once the queue is drained for now; it never
// blocks.
func (q *ModQueue) Pop(max int) ([]ModReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []ModReport
	for len(out) < max {
		var m ModReport
		err := q.dec.Decode(&m)
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, errors.Wrap(err, "decoding mod report")
		}
		out = append(out, m)
	}
	return out, nil
}

// Close releases the queue's file handles without deleting the backing
// file, used on interrupt: spec.md §6 "left on disk after interrupt (the
// store reclaims it at next open)".
func (q *ModQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	err1 := q.w.Close()
	err2 := q.r.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Delete closes and removes the backing file, used on successful finalize.
func (q *ModQueue) Delete() error {
	if err := q.Close(); err != nil {
		return err
	}
	return os.Remove(q.path)
}
