package unshard

import "github.com/molecula/qcore/op"

// mergeGeoIntersect implements spec.md §4.4 "Geo intersection": concatenate
// all shards' result arrays, first error wins.
func mergeGeoIntersect(responses []op.GeoIntersectResponse, profiled bool) (op.GeoIntersectResponse, error) {
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.GeoIntersectResponse{QueryErr: r.QueryErr}, nil
		}
	}
	var out op.GeoIntersectResponse
	for _, r := range responses {
		out.Rows = append(out.Rows, r.Rows...)
	}
	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&out.ResponseMeta, metas, profiled)
	return out, nil
}

// mergeGeoNearest implements spec.md §4.4 "Geo nearest": a k-way merge by
// ascending distance using a count-size frontier, stopping at
// min(sum_of_sizes, max_results). First error wins. Ties break in shard
// index order (stable).
func mergeGeoNearest(o op.GeoNearest, responses []op.GeoNearestResponse, profiled bool) (op.GeoNearestResponse, error) {
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.GeoNearestResponse{QueryErr: r.QueryErr}, nil
		}
	}

	// Every shard's Results is assumed pre-sorted by ascending distance —
	// the storage engine's contract for a geo_nearest shard fetch.
	idx := make([]int, len(responses))
	total := 0
	for _, r := range responses {
		total += len(r.Results)
	}
	limit := total
	if o.MaxResults > 0 && o.MaxResults < limit {
		limit = o.MaxResults
	}

	out := make([]op.GeoResult, 0, limit)
	for len(out) < limit {
		best := -1
		for i, r := range responses {
			if idx[i] >= len(r.Results) {
				continue
			}
			if best == -1 || r.Results[idx[i]].Dist < responses[best].Results[idx[best]].Dist {
				best = i
			}
			// Ties keep the earliest-found (lowest shard index) result,
			// since we only overwrite best on strictly smaller distance.
		}
		if best == -1 {
			break
		}
		out = append(out, responses[best].Results[idx[best]])
		idx[best]++
	}

	resp := op.GeoNearestResponse{Results: out}
	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&resp.ResponseMeta, metas, profiled)
	return resp, nil
}
