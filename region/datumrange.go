package region

import "bytes"

// Datum is an opaque encoded value; qcore doesn't interpret the value
// domain itself (that's the query-language front-end's job, out of scope
// per spec.md §1), only the byte encodings used to build key ranges from
// it.
type Datum []byte

// DatumBound is one side of a DatumRange: an optional value, independently
// open or closed.
type DatumBound struct {
	Value     Datum
	Open      bool
	Unbounded bool
}

// DatumRange is a value-space range used for secondary-index queries, per
// spec.md §3 "Datum range".
type DatumRange struct {
	Left  DatumBound
	Right DatumBound
}

// Contains is the natural interval test respecting bound openness.
func (dr DatumRange) Contains(v Datum) bool {
	if !dr.Left.Unbounded {
		c := bytes.Compare(v, dr.Left.Value)
		if c < 0 || (c == 0 && dr.Left.Open) {
			return false
		}
	}
	if !dr.Right.Unbounded {
		c := bytes.Compare(v, dr.Right.Value)
		if c > 0 || (c == 0 && dr.Right.Open) {
			return false
		}
	}
	return true
}

// KeyEncoder serializes datum bounds into on-disk key bytes. Two different
// encoders exist (spec.md §3): the primary-key encoding preserves full
// datum bytes, while the secondary encoding truncates to a fixed prefix
// length and therefore needs the successor-key construction below to
// correctly express an open right bound.
type KeyEncoder interface {
	Encode(v Datum) []byte
}

// ToPrimaryKeyRange serializes dr's bounds with enc, a primary-key encoder
// that need not truncate values, per spec.md §3 "to-primary-key-range".
func (dr DatumRange) ToPrimaryKeyRange(enc KeyEncoder) KeyRange {
	kr := KeyRange{}
	if dr.Left.Unbounded {
		kr.Left = UnboundedLow()
	} else {
		kr.Left = KeyBound{Value: enc.Encode(dr.Left.Value), Open: dr.Left.Open}
	}
	if dr.Right.Unbounded {
		kr.Right = UnboundedHigh()
	} else {
		kr.Right = KeyBound{Value: enc.Encode(dr.Right.Value), Open: dr.Right.Open}
	}
	return kr
}

// ToSecondaryKeyRange serializes dr's bounds with enc, a truncated
// secondary-index encoder, per spec.md §3 "to-secondary-key-range". Because
// the encoding truncates, an inclusive right bound must be widened to the
// successor of its encoded prefix so every secondary key sharing that
// prefix is still included; the right bound therefore always comes back
// open.
func (dr DatumRange) ToSecondaryKeyRange(enc KeyEncoder) KeyRange {
	kr := KeyRange{}
	if dr.Left.Unbounded {
		kr.Left = UnboundedLow()
	} else {
		kr.Left = KeyBound{Value: enc.Encode(dr.Left.Value), Open: dr.Left.Open}
	}
	if dr.Right.Unbounded {
		kr.Right = UnboundedHigh()
	} else {
		encoded := enc.Encode(dr.Right.Value)
		if dr.Right.Open {
			// Already exclusive: no widening needed, but the prefix
			// still has to be truncated-safe, which enc.Encode already
			// guarantees.
			kr.Right = KeyBound{Value: encoded, Open: true}
		} else {
			kr.Right = KeyBound{Value: SuccessorKey(encoded), Open: true}
		}
	}
	return kr
}

// SuccessorKey computes the lexicographically-next key that is not itself a
// prefix-extension of k, without lengthening the key: strip trailing
// maximal (0xFF) bytes, then increment the last remaining byte. If the
// whole key strips away (it was all 0xFF bytes, or empty), the one-byte
// maximal key {0xFF} is returned instead, since there is no successor
// within the same length.
//
// This is spec.md §3's "successor key of the right bound" and is exercised
// directly by testable scenario §8.3.
func SuccessorKey(k []byte) []byte {
	i := len(k)
	for i > 0 && k[i-1] == 0xFF {
		i--
	}
	if i == 0 {
		return maximalKey(0)
	}
	out := make([]byte, i)
	copy(out, k[:i])
	out[i-1]++
	return out
}

// maximalKey returns the largest key of length n (all 0xFF bytes), or a
// single 0xFF byte if n is 0 — SuccessorKey's fallback when the input was
// entirely 0xFF or empty, matching spec.md's "if the string becomes empty,
// use the maximal key".
func maximalKey(n int) []byte {
	if n == 0 {
		n = 1
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = 0xFF
	}
	return out
}
