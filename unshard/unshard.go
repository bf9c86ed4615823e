// Package unshard implements spec.md §4.4: composing the per-shard
// responses to a sharded operation back into one logically-correct
// response, dispatched by the operation's variant. Unshard never catches;
// an invariant violation (wrong response count, mismatched response type,
// unrecognized variant) is returned to the caller as an error coded
// errors.ErrInvariantViolation rather than being silently swallowed, per
// spec.md §7 "Sharder and Unsharder never catch."
package unshard

import (
	"fmt"

	"github.com/molecula/qcore/errors"
	"github.com/molecula/qcore/op"
)

// Read composes the per-shard responses to a read operation. responses
// must hold the concrete *Response type matching o's variant (e.g.
// []op.RangeReadResponse for an op.RangeRead) — a mismatched type is an
// invariant violation, since the caller is responsible for keeping
// operation and response variants paired.
func Read(o op.Read, responses interface{}) (interface{}, error) {
	profiled := o.Profiled()
	switch v := o.(type) {
	case op.PointRead:
		rs, ok := responses.([]op.PointReadResponse)
		if !ok {
			return nil, invariantf("Read: expected []PointReadResponse for PointRead")
		}
		return passThroughOne(rs)
	case op.SindexList:
		rs, ok := responses.([]op.SindexListResponse)
		if !ok {
			return nil, invariantf("Read: expected []SindexListResponse for SindexList")
		}
		if len(rs) != 1 {
			return op.SindexListResponse{}, invariantf("sindex_list expects exactly one shard response, got %d", len(rs))
		}
		return rs[0], nil
	case op.ChangefeedPointStamp:
		rs, ok := responses.([]op.ChangefeedPointStampResponse)
		if !ok {
			return nil, invariantf("Read: expected []ChangefeedPointStampResponse for ChangefeedPointStamp")
		}
		if len(rs) != 1 {
			return op.ChangefeedPointStampResponse{}, invariantf("changefeed_point_stamp expects exactly one shard response, got %d", len(rs))
		}
		return rs[0], nil

	case op.RangeRead:
		rs, ok := responses.([]op.RangeReadResponse)
		if !ok {
			return nil, invariantf("Read: expected []RangeReadResponse for RangeRead")
		}
		return mergeRangeRead(v, rs, profiled)

	case op.GeoIntersect:
		rs, ok := responses.([]op.GeoIntersectResponse)
		if !ok {
			return nil, invariantf("Read: expected []GeoIntersectResponse for GeoIntersect")
		}
		return mergeGeoIntersect(rs, profiled)
	case op.GeoNearest:
		rs, ok := responses.([]op.GeoNearestResponse)
		if !ok {
			return nil, invariantf("Read: expected []GeoNearestResponse for GeoNearest")
		}
		return mergeGeoNearest(v, rs, profiled)

	case op.DistributionRead:
		rs, ok := responses.([]op.DistributionReadResponse)
		if !ok {
			return nil, invariantf("Read: expected []DistributionReadResponse for DistributionRead")
		}
		return mergeDistribution(v, rs, profiled)

	case op.SindexStatus:
		rs, ok := responses.([]op.SindexStatusResponse)
		if !ok {
			return nil, invariantf("Read: expected []SindexStatusResponse for SindexStatus")
		}
		return mergeSindexStatus(rs, profiled)

	case op.ChangefeedSubscribe, op.ChangefeedLimitSubscribe:
		rs, ok := responses.([]op.ChangefeedSubscribeResponse)
		if !ok {
			return nil, invariantf("Read: expected []ChangefeedSubscribeResponse for changefeed subscribe")
		}
		return mergeChangefeedSubscribe(rs, profiled)
	case op.ChangefeedStamp:
		rs, ok := responses.([]op.ChangefeedStampResponse)
		if !ok {
			return nil, invariantf("Read: expected []ChangefeedStampResponse for ChangefeedStamp")
		}
		return mergeChangefeedStamp(rs, profiled)

	default:
		return nil, invariantf("Read: unrecognized read operation variant %T", o)
	}
}

// Write composes the per-shard responses to a write operation.
func Write(o op.Write, responses interface{}) (interface{}, error) {
	switch v := o.(type) {
	case op.PointWrite, op.PointDelete, op.SindexCreate, op.SindexDrop, op.SindexRename, op.Sync:
		rs, ok := responses.([]op.PointWriteResponse)
		if !ok {
			return nil, invariantf("Write: expected []PointWriteResponse for %T", o)
		}
		if len(rs) != 1 {
			return op.PointWriteResponse{}, invariantf("%T expects exactly one shard response, got %d", o, len(rs))
		}
		return rs[0], nil

	case op.BatchedReplace:
		rs, ok := responses.([]op.BatchedWriteResponse)
		if !ok {
			return nil, invariantf("Write: expected []BatchedWriteResponse for BatchedReplace")
		}
		return mergeBatchedWrite(rs, v.Limits, v.Profile)
	case op.BatchedInsert:
		rs, ok := responses.([]op.BatchedWriteResponse)
		if !ok {
			return nil, invariantf("Write: expected []BatchedWriteResponse for BatchedInsert")
		}
		return mergeBatchedWrite(rs, v.Limits, v.Profile)

	default:
		return nil, invariantf("Write: unrecognized write operation variant %T", o)
	}
}

func invariantf(format string, args ...interface{}) error {
	return errors.New(errors.ErrInvariantViolation, fmt.Sprintf(format, args...))
}

func passThroughOne(rs []op.PointReadResponse) (op.PointReadResponse, error) {
	if len(rs) != 1 {
		return op.PointReadResponse{}, invariantf("point_read expects exactly one shard response, got %d", len(rs))
	}
	return rs[0], nil
}

// mergeMeta folds ResponseMeta across shard responses. Per spec.md §4.4,
// event logs are concatenated and shard counts summed only when profiling
// is enabled; otherwise both fields are left at their zero value.
func mergeMeta(dst *op.ResponseMeta, metas []op.ResponseMeta, profiled bool) {
	if !profiled {
		return
	}
	for _, m := range metas {
		dst.EventLog = append(dst.EventLog, m.EventLog...)
		dst.ShardCount += m.ShardCount
	}
}
