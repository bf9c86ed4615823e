// Package op defines the tagged read and write operation variants of
// spec.md §3 and their region extraction (§4.2). Each variant is a small
// concrete struct implementing Read or Write; dispatch elsewhere in qcore
// (package shard, package unshard) is a plain Go type switch, following the
// tagged-sum-plus-switch style the teacher's db/shard.go Request type
// already uses in miniature ("action interface{}" dispatched by type
// assertion) — no vtables, no reflection-based visitor.
package op

import "github.com/molecula/qcore/region"

// Durability controls whether a write's commit returns only after fsync,
// per spec.md §6 glossary "Durability (HARD/SOFT)".
type Durability int

const (
	// DurabilityHard is the default: commit waits for fsync.
	DurabilityHard Durability = iota
	DurabilitySoft
)

// Row is one opaque result row as returned by the storage engine. qcore
// does not interpret Value; SortKey is the byte encoding the active sort
// order compares on.
type Row struct {
	Key     []byte
	SortKey []byte
	Value   interface{}
}

// SortOrder describes how range-read rows are ordered. Ascending false
// means descending.
type SortOrder struct {
	Ascending bool
}

// Less reports whether a sorts before b under this order.
func (s SortOrder) Less(a, b []byte) bool {
	c := compareBytes(a, b)
	if s.Ascending {
		return c < 0
	}
	return c > 0
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// BatchSpec governs how many rows one storage fetch returns per spec.md
// glossary "Batch spec".
type BatchSpec struct {
	RowsPerBatch int
}

// ScaleDown returns a copy of the batch spec scaled down by factor,
// applied by the sharder to range_read ops per spec.md §4.3 so each shard
// requests proportionally fewer rows per fetch. Never scales below 1.
func (b BatchSpec) ScaleDown(factor int) BatchSpec {
	if factor <= 1 {
		return b
	}
	n := b.RowsPerBatch / factor
	if n < 1 {
		n = 1
	}
	return BatchSpec{RowsPerBatch: n}
}

// Limits caps result-array-valued fields on write responses after merge,
// per spec.md §4.4 "Batched replace / batched insert".
type Limits struct {
	MaxChanges  int // 0 means unlimited
	MaxWarnings int // 0 means unlimited
}

// QueryError is a user-level error produced while evaluating an operation
// (spec.md §7 "query_exception"). It is carried as a payload, never
// returned as a Go error, so that first-error-wins merge logic can inspect
// it without a type switch on error values.
type QueryError struct {
	Code    string
	Message string
}

func (e *QueryError) Error() string { return e.Message }

// EventLogEntry is one profiling event, tagged with the storage-engine
// stage it occurred in (see SPEC_FULL.md §12, supplementing spec.md's bare
// "event log" mention with the stage tag original_source's
// profile::event_log_t carries).
type EventLogEntry struct {
	Stage      string
	StartUs    int64
	DurationUs int64
}

// ResponseMeta holds the two universal tail fields every response variant
// carries per spec.md §3 "Response": an event log (populated only when
// profiling is enabled on the operation) and a shard count.
type ResponseMeta struct {
	EventLog   []EventLogEntry
	ShardCount int
}

// ChangePair is one entry of a write response's "changes" array when
// return_changes is requested (SPEC_FULL.md §12, from
// batched_replace_response_t/batched_insert_response_t in
// original_source/).
type ChangePair struct {
	Old region.Datum
	New region.Datum
}
