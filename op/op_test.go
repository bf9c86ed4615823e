package op

import (
	"testing"

	"github.com/molecula/qcore/region"
	"github.com/stretchr/testify/assert"
)

func TestPointReadRegionIsMonokey(t *testing.T) {
	pr := PointRead{Key: []byte("k1")}
	want := region.Monokey([]byte("k1"))
	assert.Equal(t, want, pr.Region())
}

func TestSindexListRegionIsCanonicalRendezvous(t *testing.T) {
	a := SindexList{}.Region()
	b := SindexList{}.Region()
	assert.Equal(t, a, b, "sindex_list must always route to the same rendezvous region")
	assert.Equal(t, region.Monokey(nil), a)
}

func TestBatchedReplaceRegionIsBoundingRegion(t *testing.T) {
	keys := [][]byte{[]byte("m"), []byte("a"), []byte("z")}
	br := BatchedReplace{Keys: keys}
	got := br.Region()
	want := region.BoundingRegion(keys)
	assert.Equal(t, want, got)
	assert.False(t, got.Key.Left.Open)
	assert.False(t, got.Key.Right.Open)
}

func TestBatchedInsertRegionUsesRowKeys(t *testing.T) {
	bi := BatchedInsert{Rows: []Row{{Key: []byte("b")}, {Key: []byte("a")}}}
	got := bi.Region()
	assert.Equal(t, []byte("a"), got.Key.Left.Value)
	assert.Equal(t, []byte("b"), got.Key.Right.Value)
}

func TestBatchedReplaceEmptyKeysPanics(t *testing.T) {
	assert.Panics(t, func() {
		BatchedReplace{Keys: nil}.Region()
	})
}

func TestChangefeedPointStampRegionIsMonokey(t *testing.T) {
	c := ChangefeedPointStamp{Key: []byte("x")}
	assert.Equal(t, region.Monokey([]byte("x")), c.Region())
}

func TestBatchSpecScaleDown(t *testing.T) {
	b := BatchSpec{RowsPerBatch: 100}
	assert.Equal(t, 25, b.ScaleDown(4).RowsPerBatch)
	assert.Equal(t, 1, b.ScaleDown(1000).RowsPerBatch)
	assert.Equal(t, 100, b.ScaleDown(0).RowsPerBatch)
}
