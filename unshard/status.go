package unshard

import "github.com/molecula/qcore/op"

// mergeSindexStatus implements spec.md §4.4 "sindex_status": for each index
// name, fold the per-shard PerShardIndexStatus values by summing the
// progress counters and ANDing readiness. Definition/Geo/Multi/Outdated are
// invariant across shards for a given index (spec.md §5 "a secondary
// index's definition is identical on every shard"), so any one shard's
// value is taken.
func mergeSindexStatus(responses []op.SindexStatusResponse, profiled bool) (op.SindexStatusResponse, error) {
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.SindexStatusResponse{QueryErr: r.QueryErr}, nil
		}
	}

	out := op.SindexStatusResponse{Statuses: map[string]op.PerShardIndexStatus{}}
	for _, r := range responses {
		for name, st := range r.Statuses {
			cur, ok := out.Statuses[name]
			if !ok {
				cur = op.PerShardIndexStatus{
					Ready:      true,
					Definition: st.Definition,
					Geo:        st.Geo,
					Multi:      st.Multi,
					Outdated:   st.Outdated,
				}
			}
			cur.BlocksProcessed += st.BlocksProcessed
			cur.BlocksTotal += st.BlocksTotal
			cur.Ready = cur.Ready && st.Ready
			out.Statuses[name] = cur
		}
	}

	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&out.ResponseMeta, metas, profiled)
	return out, nil
}
