package unshard

import (
	"fmt"

	"github.com/molecula/qcore/op"
	"github.com/molecula/qcore/region"
)

// mergeDistribution implements spec.md §4.4 "Distribution read": group
// responses by identical key-range component, rescale the largest
// hash-shard's histogram per group to the group's total, concatenate
// per-group histograms, then scale down to result_limit if needed.
func mergeDistribution(o op.DistributionRead, responses []op.DistributionReadResponse, profiled bool) (op.DistributionReadResponse, error) {
	for _, r := range responses {
		if r.QueryErr != nil {
			return op.DistributionReadResponse{QueryErr: r.QueryErr}, nil
		}
	}

	groups := groupByKeyRange(responses)

	var merged op.Histogram
	for _, g := range groups {
		merged = append(merged, rescaleGroup(g)...)
	}

	if o.ResultLimit > 0 && len(merged) > o.ResultLimit {
		merged = scaleDown(merged, o.ResultLimit)
	}

	out := op.DistributionReadResponse{Histogram: merged}
	metas := make([]op.ResponseMeta, len(responses))
	for i, r := range responses {
		metas[i] = r.ResponseMeta
	}
	mergeMeta(&out.ResponseMeta, metas, profiled)
	return out, nil
}

// groupByKeyRange partitions responses by their ShardRegion's key-range
// component, preserving first-seen order across groups.
func groupByKeyRange(responses []op.DistributionReadResponse) [][]op.DistributionReadResponse {
	var order []region.KeyRange
	byKey := map[string][]op.DistributionReadResponse{}
	keyOf := func(kr region.KeyRange) string {
		return fmt.Sprintf("%t%t%q%t%t%q",
			kr.Left.Unbounded, kr.Left.Open, kr.Left.Value,
			kr.Right.Unbounded, kr.Right.Open, kr.Right.Value)
	}
	for _, r := range responses {
		k := keyOf(r.ShardRegion.Key)
		if _, ok := byKey[k]; !ok {
			order = append(order, r.ShardRegion.Key)
		}
		byKey[k] = append(byKey[k], r)
	}
	groups := make([][]op.DistributionReadResponse, len(order))
	for i, kr := range order {
		groups[i] = byKey[keyOf(kr)]
	}
	return groups
}

// rescaleGroup implements the per-group rule: pick the hash-shard with the
// largest total key count, and rescale its histogram by group_total /
// largest_total (>= 1 by construction).
func rescaleGroup(group []op.DistributionReadResponse) op.Histogram {
	if len(group) == 0 {
		return nil
	}
	groupTotal := int64(0)
	largestIdx := 0
	largestTotal := int64(-1)
	for i, r := range group {
		groupTotal += r.KeyCount
		if r.KeyCount > largestTotal {
			largestTotal = r.KeyCount
			largestIdx = i
		}
	}
	chosen := group[largestIdx].Histogram
	if largestTotal <= 0 {
		return chosen
	}
	factor := float64(groupTotal) / float64(largestTotal)
	out := make(op.Histogram, len(chosen))
	for i, b := range chosen {
		out[i] = op.Bucket{Key: b.Key, Count: int64(float64(b.Count)*factor + 0.5)}
	}
	return out
}

// scaleDown coalesces buckets so the histogram's size drops to exactly
// limit, per spec.md §4.4: when the input divides evenly, this is the same
// as combining every `combine = floor(size/limit)` consecutive buckets
// (the worked example in §8.5: 10 buckets, limit 5, combine 2, coalesced
// pairwise into [3,7,11,15,19]). For inputs that don't divide evenly the
// boundaries are spread proportionally across the limit output buckets so
// the "at most limit" postcondition holds unconditionally rather than only
// on exact multiples.
func scaleDown(h op.Histogram, limit int) op.Histogram {
	size := len(h)
	if limit <= 0 || size <= limit {
		return h
	}
	out := make(op.Histogram, 0, limit)
	for i := 0; i < limit; i++ {
		start := i * size / limit
		end := (i + 1) * size / limit
		if end <= start {
			end = start + 1
		}
		if end > size {
			end = size
		}
		bucket := op.Bucket{Key: h[start].Key}
		for j := start; j < end; j++ {
			bucket.Count += h[j].Count
		}
		out = append(out, bucket)
	}
	return out
}
