// Package region implements the hash x key-range region algebra of
// spec.md §3-§4.1: the product space a sharded operation's domain is
// described in, and the small set of pure operations (intersect, contains,
// splitting into CPU shards) the sharder and unsharder are built on.
package region

// HashBound is one side of a half-open hash interval. The universe's upper
// bound is 2^64, one past the largest representable uint64, so it can't be
// stored directly in a uint64; Max distinguishes that case.
type HashBound struct {
	Value uint64
	Max   bool // true iff this bound is 2^64 (only ever a right/Hi bound)
}

// hashHi returns 2^64, the exclusive upper bound of the hash universe.
func hashHi() HashBound { return HashBound{Max: true} }

func hashLo(v uint64) HashBound { return HashBound{Value: v} }

// compareHash orders two HashBounds where both are interpreted as points on
// [0, 2^64].
func compareHash(a, b HashBound) int {
	if a.Max && b.Max {
		return 0
	}
	if a.Max {
		return 1
	}
	if b.Max {
		return -1
	}
	switch {
	case a.Value < b.Value:
		return -1
	case a.Value > b.Value:
		return 1
	default:
		return 0
	}
}

func maxHashBound(a, b HashBound) HashBound {
	if compareHash(a, b) >= 0 {
		return a
	}
	return b
}

func minHashBound(a, b HashBound) HashBound {
	if compareHash(a, b) <= 0 {
		return a
	}
	return b
}

// Region is the product of a half-open hash interval [HashLo, HashHi) and a
// KeyRange, per spec.md §3. The universal region is [0, 2^64) x (-inf,
// +inf). A region is empty iff either component is empty.
//
// Invariant maintained by every constructor in this package: HashLo <=
// HashHi; equality denotes an empty hash component.
type Region struct {
	HashLo uint64
	HashHi HashBound
	Key    KeyRange
}

// Universe returns the region covering the entire hash and key space.
func Universe() Region {
	return Region{
		HashLo: 0,
		HashHi: hashHi(),
		Key:    UnboundedKeyRange(),
	}
}

// Monokey returns the width-1 hash, closed-closed singleton-key region for
// a single key, per spec.md §4.1 "monokey(k)".
func Monokey(key []byte) Region {
	h := Hash(key)
	return Region{
		HashLo: h,
		HashHi: hashLo(h + 1),
		Key:    Singleton(key),
	}
}

// IsEmpty reports whether r contains no (hash, key) pairs.
func (r Region) IsEmpty() bool {
	return r.hashIsEmpty() || r.Key.IsEmpty()
}

func (r Region) hashIsEmpty() bool {
	return compareHash(hashLo(r.HashLo), r.HashHi) >= 0
}

// ContainsKey reports whether k lies within r, i.e. hash(k) is in the hash
// interval and k lies in the key range.
func ContainsKey(r Region, k []byte) bool {
	h := Hash(k)
	if h < r.HashLo {
		return false
	}
	if compareHash(hashLo(h), r.HashHi) >= 0 {
		return false
	}
	return r.Key.Contains(k)
}

// ContainsRegion reports whether s is entirely contained within r.
func ContainsRegion(r, s Region) bool {
	if s.IsEmpty() {
		return true
	}
	if r.HashLo > s.HashLo {
		return false
	}
	if compareHash(r.HashHi, s.HashHi) < 0 {
		return false
	}
	return r.Key.ContainsRange(s.Key)
}

// Intersect returns the component-wise intersection of a and b. The result
// may be empty; check IsEmpty before using it as a restriction.
func Intersect(a, b Region) Region {
	lo := a.HashLo
	if b.HashLo > lo {
		lo = b.HashLo
	}
	hi := minHashBound(a.HashHi, b.HashHi)
	return Region{
		HashLo: lo,
		HashHi: hi,
		Key:    IntersectKeyRange(a.Key, b.Key),
	}
}

// CPUShard returns the i-th of n equal-width hash subranges covering the
// universe's hash interval, per spec.md §4.1 "cpu_shard(i, N)". The final
// shard absorbs any remainder so the n shards exactly cover [0, 2^64) with
// no gap or overlap.
func CPUShard(i, n int) Region {
	if n <= 0 || i < 0 || i >= n {
		panic("region: CPUShard index out of range")
	}
	// 2^64/n overflows a uint64 computation done directly, so split the
	// division across the two halves of the space.
	loHalf := (uint64(1) << 63) / uint64(n)
	remHalf := (uint64(1) << 63) % uint64(n)
	width := loHalf*2 + (remHalf*2)/uint64(n)

	lo := width * uint64(i)
	var hi HashBound
	if i == n-1 {
		hi = hashHi()
	} else {
		hi = hashLo(width * uint64(i+1))
	}
	return Region{
		HashLo: lo,
		HashHi: hi,
		Key:    UnboundedKeyRange(),
	}
}

// Compare orders two regions lexicographically, key range first then hash
// range, used only for grouping in distribution merges (spec.md §4.1).
func Compare(a, b Region) int {
	if c := CompareKeyRanges(a.Key, b.Key); c != 0 {
		return c
	}
	if a.HashLo != b.HashLo {
		if a.HashLo < b.HashLo {
			return -1
		}
		return 1
	}
	return compareHash(a.HashHi, b.HashHi)
}
