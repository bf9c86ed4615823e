package op

import "github.com/molecula/qcore/region"

// Read is the tagged sum of read operation variants from spec.md §3
// "Operation (read)".
type Read interface {
	isRead()
	// Region returns the (hash, key) domain this operation targets, per
	// spec.md §4.2.
	Region() region.Region
	// Profiled reports whether the caller asked for the event log to be
	// populated on the composite response (spec.md §4.4 "Profiling").
	Profiled() bool
}

// Transform is one stage of a range read's transform pipeline (map/filter/
// concat-map equivalents supplied by the query front-end; qcore treats
// each as an opaque function over rows since evaluating it is outside this
// core's scope per spec.md §1).
type Transform func(Row) (Row, bool)

// Terminal is a final aggregator on a range read (count, sum, reduce),
// per spec.md glossary. Accumulator construction is deferred to unshard
// time so every shard's partial contributes to one running accumulator.
type Terminal interface {
	NewAccumulator(order SortOrder) Accumulator
}

// Accumulator consumes rows (or shard-partial terminal results) in
// sort-comparator order and produces a final payload.
type Accumulator interface {
	Add(Row)
	// AddPartial folds in one shard's already-reduced terminal result,
	// used when each shard evaluated the terminal locally (e.g. a count
	// or sum where partial results can simply be combined).
	AddPartial(partial interface{})
	Finish() interface{}
}

// Geometry is an opaque geometry payload for geo_intersect/geo_nearest;
// interpreting it is the storage engine's job.
type Geometry interface{}

// PointRead is spec.md's point_read(key).
type PointRead struct {
	Key     []byte
	Profile bool
}

func (PointRead) isRead()             {}
func (r PointRead) Region() region.Region { return region.Monokey(r.Key) }
func (r PointRead) Profiled() bool        { return r.Profile }

// PointReadResponse carries the single-row payload (or none, if the key
// was absent).
type PointReadResponse struct {
	Row   *Row
	QueryErr *QueryError
	ResponseMeta
}

// RangeRead is spec.md's range_read(region, sort, transforms[], terminal?,
// sindex?, batchspec).
type RangeRead struct {
	Rgn        region.Region
	Sort       SortOrder
	Transforms []Transform
	Terminal   Terminal // nil if no terminal aggregator attached
	Sindex     string   // "" means the primary index
	Batch      BatchSpec
	Profile    bool
}

func (RangeRead) isRead()                {}
func (r RangeRead) Region() region.Region { return r.Rgn }
func (r RangeRead) Profiled() bool        { return r.Profile }

// RangeReadResponse is one shard's (or the composite's) contribution to a
// range read.
type RangeReadResponse struct {
	Rows      []Row       // populated when Terminal is nil
	Terminal  interface{} // populated when a Terminal is attached
	Truncated bool
	LastKey   []byte // meaningful only when Truncated is true
	QueryErr  *QueryError
	ResponseMeta
}

// GeoIntersect is spec.md's geo_intersect(region, geometry, sindex).
type GeoIntersect struct {
	Rgn      region.Region
	Geometry Geometry
	Sindex   string
	Profile  bool
}

func (GeoIntersect) isRead()                {}
func (g GeoIntersect) Region() region.Region { return g.Rgn }
func (g GeoIntersect) Profiled() bool        { return g.Profile }

// GeoIntersectResponse concatenates its Rows across shards at unshard
// time; first error wins.
type GeoIntersectResponse struct {
	Rows     []Row
	QueryErr *QueryError
	ResponseMeta
}

// GeoNearest is spec.md's geo_nearest(region, center, max_dist,
// max_results, sindex).
type GeoNearest struct {
	Rgn        region.Region
	Center     Geometry
	MaxDist    float64
	MaxResults int
	Sindex     string
	Profile    bool
}

func (GeoNearest) isRead()                {}
func (g GeoNearest) Region() region.Region { return g.Rgn }
func (g GeoNearest) Profiled() bool        { return g.Profile }

// GeoResult pairs a row with its distance from the query center.
type GeoResult struct {
	Row  Row
	Dist float64
}

// GeoNearestResponse is k-way-merged by ascending distance at unshard
// time, bounded to max_results.
type GeoNearestResponse struct {
	Results  []GeoResult
	QueryErr *QueryError
	ResponseMeta
}

// DistributionRead is spec.md's distribution_read(region, max_depth,
// result_limit).
type DistributionRead struct {
	Rgn         region.Region
	MaxDepth    int
	ResultLimit int
	Profile     bool
}

func (DistributionRead) isRead()                {}
func (d DistributionRead) Region() region.Region { return d.Rgn }
func (d DistributionRead) Profiled() bool        { return d.Profile }

// Bucket is one entry of a distribution histogram: a key and the row
// count at or after it, up to the next bucket's key.
type Bucket struct {
	Key   []byte
	Count int64
}

// Histogram is an ordered set of Buckets.
type Histogram []Bucket

// DistributionReadResponse carries one shard's histogram, tagged with the
// key-range group (the intersected region the sharder assigned it) so
// unshard can group shards that share an identical key-range component
// per spec.md §4.4.
type DistributionReadResponse struct {
	Histogram   Histogram
	ShardRegion region.Region
	KeyCount    int64 // total row count this shard holds within ShardRegion
	QueryErr    *QueryError
	ResponseMeta
}

// SindexList is spec.md's sindex_list, sharded to the canonical
// rendezvous region of the empty key (spec.md §4.2).
type SindexList struct {
	Profile bool
}

func (SindexList) isRead()             {}
func (SindexList) Region() region.Region { return region.Monokey(nil) }
func (s SindexList) Profiled() bool      { return s.Profile }

// SindexListResponse carries every secondary index's definition on this
// shard; exactly one response is expected so unshard passes it through.
type SindexListResponse struct {
	Names    []string
	QueryErr *QueryError
	ResponseMeta
}

// SindexStatus is spec.md's sindex_status(names, region).
type SindexStatus struct {
	Names   []string
	Rgn     region.Region
	Profile bool
}

func (SindexStatus) isRead()                {}
func (s SindexStatus) Region() region.Region { return s.Rgn }
func (s SindexStatus) Profiled() bool        { return s.Profile }

// PerShardIndexStatus is spec.md §3 "Per-shard sindex-status".
type PerShardIndexStatus struct {
	BlocksProcessed int64
	BlocksTotal     int64
	Ready           bool
	Definition      string
	Geo             bool
	Multi           bool
	Outdated        bool
}

// SindexStatusResponse maps index name to that shard's status for each
// name requested.
type SindexStatusResponse struct {
	Statuses map[string]PerShardIndexStatus
	QueryErr *QueryError
	ResponseMeta
}

// ChangefeedSubscribe is spec.md's changefeed_subscribe(addr, region).
type ChangefeedSubscribe struct {
	Addr    string
	Rgn     region.Region
	Profile bool
}

func (ChangefeedSubscribe) isRead()                {}
func (c ChangefeedSubscribe) Region() region.Region { return c.Rgn }
func (c ChangefeedSubscribe) Profiled() bool        { return c.Profile }

// ChangefeedSubscribeResponse carries this shard's server/mailbox
// endpoints; unshard unions these sets across shards.
type ChangefeedSubscribeResponse struct {
	ServerIDs []string
	Mailboxes []string
	QueryErr  *QueryError
	ResponseMeta
}

// ChangefeedLimitSubscribe is the bounded, ordered subscription variant
// from original_source's changefeed_limit_subscribe_t (SPEC_FULL.md §12).
// It shards and unshards identically to ChangefeedSubscribe.
type ChangefeedLimitSubscribe struct {
	Addr    string
	Rgn     region.Region
	Sindex  string
	Limit   int
	Profile bool
}

func (ChangefeedLimitSubscribe) isRead()                {}
func (c ChangefeedLimitSubscribe) Region() region.Region { return c.Rgn }
func (c ChangefeedLimitSubscribe) Profiled() bool        { return c.Profile }

// ChangefeedStamp is spec.md's changefeed_stamp(addr, region).
type ChangefeedStamp struct {
	Addr    string
	Rgn     region.Region
	Profile bool
}

func (ChangefeedStamp) isRead()                {}
func (c ChangefeedStamp) Region() region.Region { return c.Rgn }
func (c ChangefeedStamp) Profiled() bool        { return c.Profile }

// PeerStamp is one (peer, stamp) pair.
type PeerStamp struct {
	Peer  string
	Stamp uint64
}

// ChangefeedStampResponse carries this shard's per-peer stamps; unshard
// takes the max stamp per peer across shards.
type ChangefeedStampResponse struct {
	Stamps   []PeerStamp
	QueryErr *QueryError
	ResponseMeta
}

// ChangefeedPointStamp is spec.md's changefeed_point_stamp(addr, key).
type ChangefeedPointStamp struct {
	Addr string
	Key  []byte
}

func (ChangefeedPointStamp) isRead()             {}
func (c ChangefeedPointStamp) Region() region.Region { return region.Monokey(c.Key) }
func (ChangefeedPointStamp) Profiled() bool          { return false }

// ChangefeedPointStampResponse is the single-shard stamp for one key.
type ChangefeedPointStampResponse struct {
	Stamp    uint64
	QueryErr *QueryError
	ResponseMeta
}
