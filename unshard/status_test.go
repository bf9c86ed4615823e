package unshard

import (
	"testing"

	"github.com/molecula/qcore/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSindexStatusSumsCountersAndsReady(t *testing.T) {
	responses := []op.SindexStatusResponse{
		{Statuses: map[string]op.PerShardIndexStatus{
			"idx1": {BlocksProcessed: 3, BlocksTotal: 10, Ready: true, Definition: "byField(x)"},
		}},
		{Statuses: map[string]op.PerShardIndexStatus{
			"idx1": {BlocksProcessed: 10, BlocksTotal: 10, Ready: false, Definition: "byField(x)"},
		}},
	}
	got, err := mergeSindexStatus(responses, false)
	require.NoError(t, err)
	st := got.Statuses["idx1"]
	assert.EqualValues(t, 13, st.BlocksProcessed)
	assert.EqualValues(t, 20, st.BlocksTotal)
	assert.False(t, st.Ready)
	assert.Equal(t, "byField(x)", st.Definition)
}

func TestMergeSindexStatusReadyOnlyWhenAllShardsReady(t *testing.T) {
	responses := []op.SindexStatusResponse{
		{Statuses: map[string]op.PerShardIndexStatus{"idx1": {Ready: true}}},
		{Statuses: map[string]op.PerShardIndexStatus{"idx1": {Ready: true}}},
	}
	got, err := mergeSindexStatus(responses, false)
	require.NoError(t, err)
	assert.True(t, got.Statuses["idx1"].Ready)
}

func TestMergeSindexStatusFirstErrorWins(t *testing.T) {
	err1 := &op.QueryError{Message: "boom"}
	got, err := mergeSindexStatus([]op.SindexStatusResponse{{QueryErr: err1}}, false)
	require.NoError(t, err)
	assert.Equal(t, err1, got.QueryErr)
}
