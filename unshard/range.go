package unshard

import "github.com/molecula/qcore/op"

// mergeRangeRead implements spec.md §4.4 "Range read".
func mergeRangeRead(o op.RangeRead, responses []op.RangeReadResponse, profiled bool) (op.RangeReadResponse, error) {
	// Step 1: first error wins.
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.RangeReadResponse{QueryErr: r.QueryErr}, nil
		}
	}

	// Step 2: compute the continuation cursor.
	truncated := false
	var lastKey []byte
	haveLastKey := false
	for _, r := range responses {
		if r.Truncated {
			truncated = true
			if !haveLastKey || o.Sort.Less(r.LastKey, lastKey) {
				lastKey = r.LastKey
				haveLastKey = true
			}
		}
	}

	out := op.RangeReadResponse{Truncated: truncated}
	if truncated {
		out.LastKey = lastKey
	}

	// Step 3: run the sort-aware accumulator.
	if o.Terminal != nil {
		acc := o.Terminal.NewAccumulator(o.Sort)
		for _, r := range responses {
			acc.AddPartial(r.Terminal)
		}
		out.Terminal = acc.Finish()
	} else {
		out.Rows = mergedRows(responses, o.Sort, truncated, lastKey)
	}

	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&out.ResponseMeta, metas, profiled)
	return out, nil
}

// mergedRows performs the append-accumulator's k-way merge: every eligible
// row across shards, in sort order, bounded by lastKey when truncated is
// true. Each shard's Rows are assumed already sorted per o.Sort — this is
// the storage engine's contract for a range read.
func mergedRows(responses []op.RangeReadResponse, order op.SortOrder, truncated bool, lastKey []byte) []op.Row {
	// Merge with a simple k-pointer scan rather than reaching for
	// container/heap: shard counts are small (one per CPU core) so an
	// O(n*k) scan is not a concern, and it keeps the bound-filtering
	// logic in one obvious place.
	idx := make([]int, len(responses))
	var out []op.Row
	for {
		best := -1
		for i, r := range responses {
			if idx[i] >= len(r.Rows) {
				continue
			}
			if best == -1 || order.Less(r.Rows[idx[i]].SortKey, responses[best].Rows[idx[best]].SortKey) {
				best = i
			}
		}
		if best == -1 {
			break
		}
		row := responses[best].Rows[idx[best]]
		idx[best]++
		if truncated && order.Less(lastKey, row.SortKey) {
			// row sorts strictly after the earliest unexhausted shard's
			// boundary. Since this is the globally smallest remaining
			// row, everything after it does too: stop here so the next
			// page doesn't skip it.
			break
		}
		out = append(out, row)
	}
	return out
}
