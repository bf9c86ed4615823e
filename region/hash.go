package region

import "github.com/cespare/xxhash"

// Hash maps a primary key to a point in the 64-bit hash space that hash
// intervals are defined over. It is the function referenced by spec.md's
// "hash(k)" throughout the region algebra and by the sharder's containment
// tests.
//
// xxhash is the same class of non-cryptographic hash the storage engine
// this core sits on top of already uses for key-to-shard mapping (see the
// teacher's fragment.go and boltdb/attrstore.go); it is fast, well
// distributed, and has no cryptographic requirement here.
func Hash(key []byte) uint64 {
	return xxhash.Sum64(key)
}
