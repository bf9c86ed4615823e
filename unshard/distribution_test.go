package unshard

import (
	"testing"

	"github.com/molecula/qcore/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScaleDownWorkedExample reproduces spec.md §8.5 exactly: a 10-bucket
// histogram of counts 1..10, result_limit 5, combine 2, coalesced pairwise
// into [3,7,11,15,19].
func TestScaleDownWorkedExample(t *testing.T) {
	h := make(op.Histogram, 10)
	for i := range h {
		h[i] = op.Bucket{Key: []byte{byte(i)}, Count: int64(i + 1)}
	}
	got := scaleDown(h, 5)
	require.Len(t, got, 5)
	counts := make([]int64, len(got))
	for i, b := range got {
		counts[i] = b.Count
	}
	assert.Equal(t, []int64{3, 7, 11, 15, 19}, counts)
}

func TestScaleDownNoOpWhenUnderLimit(t *testing.T) {
	h := op.Histogram{{Count: 1}, {Count: 2}}
	got := scaleDown(h, 5)
	assert.Equal(t, h, got)
}

func TestScaleDownNeverExceedsLimitOnUnevenInput(t *testing.T) {
	h := make(op.Histogram, 7)
	for i := range h {
		h[i] = op.Bucket{Count: 1}
	}
	got := scaleDown(h, 3)
	assert.LessOrEqual(t, len(got), 3)
	var total int64
	for _, b := range got {
		total += b.Count
	}
	assert.EqualValues(t, 7, total)
}

func TestRescaleGroupPicksLargestShardAndScales(t *testing.T) {
	group := []op.DistributionReadResponse{
		{KeyCount: 10, Histogram: op.Histogram{{Count: 5}, {Count: 5}}},
		{KeyCount: 30, Histogram: op.Histogram{{Count: 15}, {Count: 15}}},
	}
	got := rescaleGroup(group)
	// groupTotal=40, largest=30, factor=40/30
	require.Len(t, got, 2)
	assert.EqualValues(t, 20, got[0].Count)
	assert.EqualValues(t, 20, got[1].Count)
}

func TestMergeDistributionFirstErrorWins(t *testing.T) {
	err1 := &op.QueryError{Message: "bad"}
	got, err := mergeDistribution(op.DistributionRead{}, []op.DistributionReadResponse{
		{QueryErr: err1},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, err1, got.QueryErr)
}
