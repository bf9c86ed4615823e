package unshard

import (
	"testing"

	"github.com/molecula/qcore/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeGeoIntersectConcatenates(t *testing.T) {
	got, err := mergeGeoIntersect([]op.GeoIntersectResponse{
		{Rows: []op.Row{{Key: []byte("a")}}},
		{Rows: []op.Row{{Key: []byte("b")}, {Key: []byte("c")}}},
	}, false)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
}

func TestMergeGeoNearestKWayMergeByDistance(t *testing.T) {
	responses := []op.GeoNearestResponse{
		{Results: []op.GeoResult{{Dist: 1}, {Dist: 5}, {Dist: 9}}},
		{Results: []op.GeoResult{{Dist: 2}, {Dist: 3}}},
	}
	got, err := mergeGeoNearest(op.GeoNearest{MaxResults: 4}, responses, false)
	require.NoError(t, err)
	require.Len(t, got.Results, 4)
	dists := make([]float64, len(got.Results))
	for i, r := range got.Results {
		dists[i] = r.Dist
	}
	assert.Equal(t, []float64{1, 2, 3, 5}, dists)
}

func TestMergeGeoNearestUnboundedTakesEverything(t *testing.T) {
	responses := []op.GeoNearestResponse{
		{Results: []op.GeoResult{{Dist: 4}}},
		{Results: []op.GeoResult{{Dist: 1}}},
	}
	got, err := mergeGeoNearest(op.GeoNearest{}, responses, false)
	require.NoError(t, err)
	require.Len(t, got.Results, 2)
	assert.Equal(t, 1.0, got.Results[0].Dist)
}

func TestMergeGeoNearestFirstErrorWins(t *testing.T) {
	err1 := &op.QueryError{Message: "boom"}
	got, err := mergeGeoNearest(op.GeoNearest{}, []op.GeoNearestResponse{{QueryErr: err1}}, false)
	require.NoError(t, err)
	assert.Equal(t, err1, got.QueryErr)
}
