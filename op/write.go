package op

import "github.com/molecula/qcore/region"

// Write is the tagged sum of write operation variants from spec.md §3
// "Operation (write)".
type Write interface {
	isWrite()
	Region() region.Region
	Profiled() bool
}

// ReplaceFunc computes a row's replacement given its current value.
// Evaluating it is the storage engine's job; qcore only threads it through
// unchanged.
type ReplaceFunc func(current *Row) Row

// BatchedReplace is spec.md's batched_replace(keys[], pkey, fn, opts,
// return_changes).
type BatchedReplace struct {
	Keys          [][]byte
	PrimaryKey    string
	Fn            ReplaceFunc
	Opts          interface{}
	ReturnChanges bool
	Limits        Limits
	Durability    Durability
	Profile       bool
}

func (BatchedReplace) isWrite() {}

// Region is spec.md §4.2's minimal bounding region across all keys. An
// empty key list is a caller contract violation the spec leaves
// undefined; qcore panics rather than silently producing a nonsense
// region, matching region.BoundingRegion's contract.
func (b BatchedReplace) Region() region.Region { return region.BoundingRegion(b.Keys) }
func (b BatchedReplace) Profiled() bool        { return b.Profile }

// BatchedInsert is spec.md's batched_insert(rows[], pkey, conflict,
// limits, return_changes).
type BatchedInsert struct {
	Rows          []Row // Row.Key must already hold row[pkey]'s encoded value
	PrimaryKey    string
	Conflict      string // e.g. "error", "replace", "update"
	ReturnChanges bool
	Limits        Limits
	Durability    Durability
	Profile       bool
}

func (BatchedInsert) isWrite() {}

func (b BatchedInsert) Region() region.Region {
	keys := make([][]byte, len(b.Rows))
	for i, r := range b.Rows {
		keys[i] = r.Key
	}
	return region.BoundingRegion(keys)
}
func (b BatchedInsert) Profiled() bool { return b.Profile }

// WriteStats is the statistics payload merged across shards for
// BatchedReplace/BatchedInsert responses, per spec.md §4.4 and
// SPEC_FULL.md §12's return_changes shape.
type WriteStats struct {
	Inserted  int64
	Replaced  int64
	Unchanged int64
	Errors    int64
	Skipped   int64
	Deleted   int64
	Warnings  []string
	Changes   []ChangePair
	FirstErr  *QueryError
}

// BatchedWriteResponse is the response variant for both BatchedReplace and
// BatchedInsert.
type BatchedWriteResponse struct {
	Stats WriteStats
	ResponseMeta
}

// PointWrite is spec.md's point_write(key, data, overwrite).
type PointWrite struct {
	Key        []byte
	Data       region.Datum
	Overwrite  bool
	Durability Durability
}

func (PointWrite) isWrite()             {}
func (p PointWrite) Region() region.Region { return region.Monokey(p.Key) }
func (PointWrite) Profiled() bool          { return false }

// PointDelete is spec.md's point_delete(key).
type PointDelete struct {
	Key        []byte
	Durability Durability
}

func (PointDelete) isWrite()             {}
func (p PointDelete) Region() region.Region { return region.Monokey(p.Key) }
func (PointDelete) Profiled() bool          { return false }

// PointWriteResponse is the single-shard response for PointWrite,
// PointDelete, and the sindex write ops (spec.md §4.4 "Point/sindex
// writes, sync: exactly one response expected; pass through").
type PointWriteResponse struct {
	Existed  bool
	QueryErr *QueryError
	ResponseMeta
}

// SindexCreate is spec.md's sindex_create(region, …).
type SindexCreate struct {
	Rgn     region.Region
	Name    string
	Func    interface{} // the index function; opaque to qcore
	Multi   bool
	Geo     bool
	Profile bool
}

func (SindexCreate) isWrite()             {}
func (s SindexCreate) Region() region.Region { return s.Rgn }
func (s SindexCreate) Profiled() bool        { return s.Profile }

// SindexDrop is spec.md's sindex_drop(region, …).
type SindexDrop struct {
	Rgn     region.Region
	Name    string
	Profile bool
}

func (SindexDrop) isWrite()             {}
func (s SindexDrop) Region() region.Region { return s.Rgn }
func (s SindexDrop) Profiled() bool        { return s.Profile }

// SindexRename is spec.md's sindex_rename(region, …), with the Overwrite
// flag from SPEC_FULL.md §12 (original_source's rename requires an
// explicit opt-in to clobber an existing target name).
type SindexRename struct {
	Rgn       region.Region
	From      string
	To        string
	Overwrite bool
	Profile   bool
}

func (SindexRename) isWrite()             {}
func (s SindexRename) Region() region.Region { return s.Rgn }
func (s SindexRename) Profiled() bool        { return s.Profile }

// Sync is spec.md's sync(region).
type Sync struct {
	Rgn        region.Region
	Durability Durability
	Profile    bool
}

func (Sync) isWrite()             {}
func (s Sync) Region() region.Region { return s.Rgn }
func (s Sync) Profiled() bool        { return s.Profile }
