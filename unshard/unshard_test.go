package unshard

import (
	"testing"

	"github.com/molecula/qcore/op"
	"github.com/molecula/qcore/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRejectsMismatchedResponseType(t *testing.T) {
	_, err := Read(op.PointRead{Key: []byte("k")}, []op.RangeReadResponse{})
	require.Error(t, err)
}

func TestReadPointReadPassesThrough(t *testing.T) {
	row := op.Row{Key: []byte("k"), Value: 1}
	got, err := Read(op.PointRead{Key: []byte("k")}, []op.PointReadResponse{{Row: &row}})
	require.NoError(t, err)
	assert.Equal(t, &row, got.(op.PointReadResponse).Row)
}

func TestReadPointReadWrongCountIsInvariantViolation(t *testing.T) {
	row := op.Row{Key: []byte("k")}
	_, err := Read(op.PointRead{Key: []byte("k")}, []op.PointReadResponse{{Row: &row}, {Row: &row}})
	require.Error(t, err)
}

func TestReadSindexListPassesThroughSingleResponse(t *testing.T) {
	got, err := Read(op.SindexList{}, []op.SindexListResponse{{Names: []string{"a", "b"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.(op.SindexListResponse).Names)
}

func TestReadFirstErrorWinsAcrossShards(t *testing.T) {
	err1 := &op.QueryError{Code: "E1", Message: "boom"}
	got, err := Read(op.RangeRead{}, []op.RangeReadResponse{
		{QueryErr: err1},
		{Rows: []op.Row{{Key: []byte("z")}}},
	})
	require.NoError(t, err)
	assert.Equal(t, err1, got.(op.RangeReadResponse).QueryErr)
}

func TestWritePointWritePassesThrough(t *testing.T) {
	got, err := Write(op.PointWrite{Key: []byte("k")}, []op.PointWriteResponse{{Existed: true}})
	require.NoError(t, err)
	assert.True(t, got.(op.PointWriteResponse).Existed)
}

func TestWriteBatchedReplaceMergesStats(t *testing.T) {
	rs := []op.BatchedWriteResponse{
		{Stats: op.WriteStats{Inserted: 2, Replaced: 1}},
		{Stats: op.WriteStats{Inserted: 3, Errors: 1}},
	}
	got, err := Write(op.BatchedReplace{Keys: [][]byte{[]byte("a")}}, rs)
	require.NoError(t, err)
	stats := got.(op.BatchedWriteResponse).Stats
	assert.EqualValues(t, 5, stats.Inserted)
	assert.EqualValues(t, 1, stats.Replaced)
	assert.EqualValues(t, 1, stats.Errors)
}

func TestMergeMetaSkipsWhenNotProfiled(t *testing.T) {
	var dst op.ResponseMeta
	mergeMeta(&dst, []op.ResponseMeta{{ShardCount: 1, EventLog: []op.EventLogEntry{{Stage: "x"}}}}, false)
	assert.Zero(t, dst.ShardCount)
	assert.Nil(t, dst.EventLog)
}

func TestMergeMetaConcatenatesWhenProfiled(t *testing.T) {
	var dst op.ResponseMeta
	mergeMeta(&dst, []op.ResponseMeta{
		{ShardCount: 1, EventLog: []op.EventLogEntry{{Stage: "a"}}},
		{ShardCount: 2, EventLog: []op.EventLogEntry{{Stage: "b"}}},
	}, true)
	assert.Equal(t, 3, dst.ShardCount)
	assert.Len(t, dst.EventLog, 2)
}

// Composition law from spec.md §8: unshard(op, [shard(op, R_i) executed])
// reconstructs the same logical result as evaluating the op directly
// against the union of the R_i, for a partition that exactly covers the
// key space.
func TestCompositionLawRangeReadAcrossCPUShards(t *testing.T) {
	all := []op.Row{
		{Key: []byte("a"), SortKey: []byte("a")},
		{Key: []byte("m"), SortKey: []byte("m")},
		{Key: []byte("z"), SortKey: []byte("z")},
	}
	n := 4
	var responses []op.RangeReadResponse
	for i := 0; i < n; i++ {
		r := region.CPUShard(i, n)
		var rows []op.Row
		for _, row := range all {
			if region.ContainsKey(r, row.Key) {
				rows = append(rows, row)
			}
		}
		responses = append(responses, op.RangeReadResponse{Rows: rows})
	}

	got, err := Read(op.RangeRead{Sort: op.SortOrder{Ascending: true}}, responses)
	require.NoError(t, err)
	assert.Equal(t, all, got.(op.RangeReadResponse).Rows)
}
