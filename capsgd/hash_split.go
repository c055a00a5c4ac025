package capsgd

import (
	"encoding/binary"
	"math"
)

// A Hasher is a SampleList which can produce a stable
// hash for each sample, such as a hash of its video ID.
type Hasher interface {
	SampleList
	Hash(i int) []byte
}

// HashSplit deterministically partitions a Hasher into
// two lists, typically validation and training samples.
//
// A sample goes left when the leading 8 bytes of its hash,
// read as a fraction of 2^64, fall below leftRatio.
// Membership therefore depends only on the hash and not
// on the order of h, which is rearranged in place.
func HashSplit(h Hasher, leftRatio float64) (left, right SampleList) {
	if leftRatio <= 0 {
		return h.Slice(0, 0), h
	} else if leftRatio >= 1 {
		return h, h.Slice(0, 0)
	}
	cutoff := uint64(leftRatio * math.MaxUint64)
	split := 0
	for i := 0; i < h.Len(); i++ {
		if hashPrefix(h.Hash(i)) < cutoff {
			h.Swap(split, i)
			split++
		}
	}
	return h.Slice(0, split), h.Slice(split, h.Len())
}

// hashPrefix reads up to 8 leading bytes of a hash as a
// big-endian integer, padding short hashes with zeros.
func hashPrefix(hash []byte) uint64 {
	var buf [8]byte
	copy(buf[:], hash)
	return binary.BigEndian.Uint64(buf[:])
}
