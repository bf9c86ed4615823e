// Package shard implements spec.md §4.3: restricting a logical operation
// to one candidate shard region, or declining because the shard is
// irrelevant to it. Shard is pure, deterministic, and never observes
// storage state — it is invoked once per candidate shard by the caller
// (the query-execution layer that fans an operation out across the
// table's shards, outside this core's scope per spec.md §1).
package shard

import (
	"github.com/molecula/qcore/errors"
	"github.com/molecula/qcore/op"
	"github.com/molecula/qcore/region"
)

// Config carries the sharder's own tunables (spec.md §4.3's "fixed CPU-
// sharding factor" for range-read batch scaling), distinct from the
// storage engine's configuration which the sharder never sees.
type Config struct {
	// RangeReadBatchScaleDown is the fixed factor a range_read's batch
	// spec is divided by per shard, so the aggregate fetch across all
	// shards stays close to the caller's requested batch size.
	RangeReadBatchScaleDown int
}

// DefaultConfig matches spec.md's CPU-sharding default of one shard per
// CPU core; four is a reasonable placeholder used by tests and the bench
// CLI.
var DefaultConfig = Config{RangeReadBatchScaleDown: 4}

// Read restricts a read operation to region r, returning (op', true) if
// the shard is relevant, or (nil, false) if it should be skipped.
func Read(o op.Read, r region.Region, cfg Config) (op.Read, bool) {
	switch v := o.(type) {
	case op.PointRead:
		if !region.ContainsKey(r, v.Key) {
			return nil, false
		}
		return v, true
	case op.SindexList:
		if !region.ContainsKey(r, nil) {
			return nil, false
		}
		return v, true
	case op.ChangefeedPointStamp:
		if !region.ContainsKey(r, v.Key) {
			return nil, false
		}
		return v, true

	case op.RangeRead:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		v.Batch = v.Batch.ScaleDown(cfg.RangeReadBatchScaleDown)
		return v, true
	case op.GeoIntersect:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.GeoNearest:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.DistributionRead:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.SindexStatus:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.ChangefeedSubscribe:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.ChangefeedLimitSubscribe:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.ChangefeedStamp:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	default:
		panic(errors.New(errors.ErrInvariantViolation, "shard: unrecognized read operation variant"))
	}
}

// Write restricts a write operation to region r, returning (op', true) if
// the shard is relevant, or (nil, false) if it should be skipped.
func Write(o op.Write, r region.Region) (op.Write, bool) {
	switch v := o.(type) {
	case op.PointWrite:
		if !region.ContainsKey(r, v.Key) {
			return nil, false
		}
		return v, true
	case op.PointDelete:
		if !region.ContainsKey(r, v.Key) {
			return nil, false
		}
		return v, true

	case op.SindexCreate:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.SindexDrop:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.SindexRename:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true
	case op.Sync:
		inter := region.Intersect(r, v.Rgn)
		if inter.IsEmpty() {
			return nil, false
		}
		v.Rgn = inter
		return v, true

	case op.BatchedReplace:
		filtered := filterKeys(v.Keys, r)
		if len(filtered) == 0 {
			return nil, false
		}
		v.Keys = filtered
		return v, true
	case op.BatchedInsert:
		filtered := filterRows(v.Rows, r)
		if len(filtered) == 0 {
			return nil, false
		}
		v.Rows = filtered
		return v, true
	default:
		panic(errors.New(errors.ErrInvariantViolation, "shard: unrecognized write operation variant"))
	}
}

func filterKeys(keys [][]byte, r region.Region) [][]byte {
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if region.ContainsKey(r, k) {
			out = append(out, k)
		}
	}
	return out
}

func filterRows(rows []op.Row, r region.Region) []op.Row {
	out := make([]op.Row, 0, len(rows))
	for _, row := range rows {
		if region.ContainsKey(r, row.Key) {
			out = append(out, row)
		}
	}
	return out
}
