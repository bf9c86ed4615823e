package region

import "bytes"

// KeyRange is a key-space range with independent open/closed bounds on each
// side. A missing bound (Unbounded) denotes -infinity on the left or
// +infinity on the right, per spec.md §3 "Region".
type KeyRange struct {
	Left  KeyBound
	Right KeyBound
}

// KeyBound is one side of a KeyRange. Unbounded means the "none" marker
// from spec.md; Value/Open are meaningless when Unbounded is true.
type KeyBound struct {
	Value     []byte
	Open      bool
	Unbounded bool
}

// UnboundedLow returns the left-unbounded key bound.
func UnboundedLow() KeyBound { return KeyBound{Unbounded: true} }

// UnboundedHigh returns the right-unbounded key bound.
func UnboundedHigh() KeyBound { return KeyBound{Unbounded: true} }

// Closed returns a closed (inclusive) bound at v.
func Closed(v []byte) KeyBound { return KeyBound{Value: v} }

// OpenBound returns an open (exclusive) bound at v.
func OpenBound(v []byte) KeyBound { return KeyBound{Value: v, Open: true} }

// UnboundedKeyRange spans the entire key space.
func UnboundedKeyRange() KeyRange {
	return KeyRange{Left: UnboundedLow(), Right: UnboundedHigh()}
}

// Singleton returns a closed-closed range containing exactly k.
func Singleton(k []byte) KeyRange {
	return KeyRange{Left: Closed(k), Right: Closed(k)}
}

// IsEmpty reports whether the range contains no keys.
func (kr KeyRange) IsEmpty() bool {
	if kr.Left.Unbounded || kr.Right.Unbounded {
		return false
	}
	c := bytes.Compare(kr.Left.Value, kr.Right.Value)
	if c > 0 {
		return true
	}
	if c == 0 && (kr.Left.Open || kr.Right.Open) {
		return true
	}
	return false
}

// Contains reports whether k lies within the range, respecting bound
// openness.
func (kr KeyRange) Contains(k []byte) bool {
	if !kr.Left.Unbounded {
		c := bytes.Compare(k, kr.Left.Value)
		if c < 0 || (c == 0 && kr.Left.Open) {
			return false
		}
	}
	if !kr.Right.Unbounded {
		c := bytes.Compare(k, kr.Right.Value)
		if c > 0 || (c == 0 && kr.Right.Open) {
			return false
		}
	}
	return true
}

// IntersectKeyRange returns the intersection of two key ranges. The result
// may be empty; callers should check IsEmpty.
func IntersectKeyRange(a, b KeyRange) KeyRange {
	return KeyRange{
		Left:  maxLeft(a.Left, b.Left),
		Right: minRight(a.Right, b.Right),
	}
}

// ContainsRange reports whether s is entirely contained within r.
func (r KeyRange) ContainsRange(s KeyRange) bool {
	if !leftLE(r.Left, s.Left) {
		return false
	}
	if !rightGE(r.Right, s.Right) {
		return false
	}
	return true
}

func maxLeft(a, b KeyBound) KeyBound {
	if a.Unbounded {
		return b
	}
	if b.Unbounded {
		return a
	}
	c := bytes.Compare(a.Value, b.Value)
	switch {
	case c > 0:
		return a
	case c < 0:
		return b
	default:
		// Same value: the open bound is more restrictive.
		if a.Open || b.Open {
			return KeyBound{Value: a.Value, Open: true}
		}
		return a
	}
}

func minRight(a, b KeyBound) KeyBound {
	if a.Unbounded {
		return b
	}
	if b.Unbounded {
		return a
	}
	c := bytes.Compare(a.Value, b.Value)
	switch {
	case c < 0:
		return a
	case c > 0:
		return b
	default:
		if a.Open || b.Open {
			return KeyBound{Value: a.Value, Open: true}
		}
		return a
	}
}

// leftLE reports whether left bound a admits everything left bound b
// admits (a <= b as a lower bound, i.e. a is at least as permissive).
func leftLE(a, b KeyBound) bool {
	if a.Unbounded {
		return true
	}
	if b.Unbounded {
		return false
	}
	c := bytes.Compare(a.Value, b.Value)
	if c < 0 {
		return true
	}
	if c > 0 {
		return false
	}
	// Equal values: a admits b's boundary only if a isn't strictly more
	// closed than b there.
	return !a.Open || b.Open
}

// rightGE is the mirror of leftLE for right bounds.
func rightGE(a, b KeyBound) bool {
	if a.Unbounded {
		return true
	}
	if b.Unbounded {
		return false
	}
	c := bytes.Compare(a.Value, b.Value)
	if c > 0 {
		return true
	}
	if c < 0 {
		return false
	}
	return !a.Open || b.Open
}

// CompareKeyRanges orders two key ranges lexicographically, left bound first then
// right bound, used only for grouping in distribution merges (spec.md §4.1).
func CompareKeyRanges(a, b KeyRange) int {
	if c := compareLeft(a.Left, b.Left); c != 0 {
		return c
	}
	return compareRight(a.Right, b.Right)
}

func compareLeft(a, b KeyBound) int {
	if a.Unbounded && b.Unbounded {
		return 0
	}
	if a.Unbounded {
		return -1
	}
	if b.Unbounded {
		return 1
	}
	if c := bytes.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if a.Open == b.Open {
		return 0
	}
	if a.Open {
		return 1
	}
	return -1
}

func compareRight(a, b KeyBound) int {
	if a.Unbounded && b.Unbounded {
		return 0
	}
	if a.Unbounded {
		return 1
	}
	if b.Unbounded {
		return -1
	}
	if c := bytes.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if a.Open == b.Open {
		return 0
	}
	if a.Open {
		return -1
	}
	return 1
}

// BoundingKeyRange returns the minimal closed-closed range containing every
// key in keys. keys must be non-empty; the caller (batched_replace's
// region extraction, spec.md §4.2) is responsible for that contract.
func BoundingKeyRange(keys [][]byte) KeyRange {
	min, max := keys[0], keys[0]
	for _, k := range keys[1:] {
		if bytes.Compare(k, min) < 0 {
			min = k
		}
		if bytes.Compare(k, max) > 0 {
			max = k
		}
	}
	return KeyRange{Left: Closed(min), Right: Closed(max)}
}

// BoundingRegion returns the minimal bounding region over keys per spec.md
// §4.2's batched_replace/batched_insert region-extraction rule: the hash
// component is tight ([min_hash, max_hash+1)), the key component is
// closed-closed. keys must be non-empty — an empty list is a caller
// contract violation the spec explicitly leaves undefined.
func BoundingRegion(keys [][]byte) Region {
	if len(keys) == 0 {
		panic("region: BoundingRegion called with no keys")
	}
	minHash, maxHash := Hash(keys[0]), Hash(keys[0])
	for _, k := range keys[1:] {
		h := Hash(k)
		if h < minHash {
			minHash = h
		}
		if h > maxHash {
			maxHash = h
		}
	}
	hi := hashHi()
	if maxHash != ^uint64(0) {
		hi = hashLo(maxHash + 1)
	}
	return Region{
		HashLo: minHash,
		HashHi: hi,
		Key:    BoundingKeyRange(keys),
	}
}
