package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	a := Region{HashLo: 0, HashHi: hashLo(8), Key: KeyRange{Left: Closed([]byte("a")), Right: Closed([]byte("m"))}}
	b := Region{HashLo: 4, HashHi: hashLo(12), Key: KeyRange{Left: Closed([]byte("g")), Right: Closed([]byte("z"))}}

	got := Intersect(a, b)

	assert.Equal(t, uint64(4), got.HashLo)
	assert.Equal(t, HashBound{Value: 8}, got.HashHi)
	assert.Equal(t, []byte("g"), got.Key.Left.Value)
	assert.Equal(t, []byte("m"), got.Key.Right.Value)
	assert.False(t, got.IsEmpty())
}

func TestIntersectDisjointIsEmpty(t *testing.T) {
	a := Region{HashLo: 0, HashHi: hashLo(4), Key: UnboundedKeyRange()}
	b := Region{HashLo: 4, HashHi: hashLo(8), Key: UnboundedKeyRange()}
	got := Intersect(a, b)
	assert.True(t, got.IsEmpty())
}

func TestCPUShardCoverage(t *testing.T) {
	const n = 4
	shards := make([]Region, n)
	for i := 0; i < n; i++ {
		shards[i] = CPUShard(i, n)
	}

	require.Equal(t, uint64(0), shards[0].HashLo)
	for i := 1; i < n; i++ {
		require.Equal(t, HashBound{Value: shards[i].HashLo}, shards[i-1].HashHi,
			"shard %d must start exactly where shard %d ends", i, i-1)
	}
	assert.True(t, shards[n-1].HashHi.Max, "final shard must absorb the remainder up to 2^64")

	// Every point in the space belongs to exactly one shard.
	probes := []uint64{0, 1, 1 << 62, 1<<64 - 1}
	for _, p := range probes {
		count := 0
		for _, s := range shards {
			if p >= s.HashLo && compareHash(hashLo(p), s.HashHi) < 0 {
				count++
			}
		}
		assert.Equal(t, 1, count, "point %d must land in exactly one shard", p)
	}
}

func TestCPUShardOddCount(t *testing.T) {
	const n = 3
	shards := make([]Region, n)
	for i := 0; i < n; i++ {
		shards[i] = CPUShard(i, n)
	}
	require.True(t, shards[n-1].HashHi.Max)
	require.Equal(t, uint64(0), shards[0].HashLo)
	require.Equal(t, HashBound{Value: shards[1].HashLo}, shards[0].HashHi)
	require.Equal(t, HashBound{Value: shards[2].HashLo}, shards[1].HashHi)
}

func TestMonokey(t *testing.T) {
	k := []byte("hello")
	m := Monokey(k)
	assert.True(t, ContainsKey(m, k))
	assert.False(t, ContainsKey(m, []byte("goodbye")))
	assert.Equal(t, m.HashLo+1, m.HashHi.Value)
}

func TestUniverseContainsEverything(t *testing.T) {
	u := Universe()
	assert.True(t, ContainsKey(u, []byte("anything")))
	assert.True(t, ContainsRegion(u, Monokey([]byte("x"))))
	assert.False(t, u.IsEmpty())
}

func TestBoundingKeyRange(t *testing.T) {
	keys := [][]byte{[]byte("m"), []byte("a"), []byte("z"), []byte("g")}
	kr := BoundingKeyRange(keys)
	assert.Equal(t, []byte("a"), kr.Left.Value)
	assert.Equal(t, []byte("z"), kr.Right.Value)
	assert.False(t, kr.Left.Open)
	assert.False(t, kr.Right.Open)
}

func TestCompareOrdersByKeyThenHash(t *testing.T) {
	a := Region{HashLo: 10, HashHi: hashLo(20), Key: KeyRange{Left: Closed([]byte("a")), Right: Closed([]byte("b"))}}
	b := Region{HashLo: 0, HashHi: hashLo(5), Key: KeyRange{Left: Closed([]byte("c")), Right: Closed([]byte("d"))}}
	assert.Negative(t, Compare(a, b), "a's key range sorts before b's regardless of hash")
}
