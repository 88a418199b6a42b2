// Package simhash computes 64-bit locality-sensitive fingerprints over a
// document's token multiset, used by the offline pipeline to find
// near-duplicate pages before they enter the index.
package simhash

import (
	"hash/fnv"
	"math/bits"
)

// Simhash64 computes the simhash fingerprint of tokens. Bit i of the result
// is 1 iff the signed sum, over all tokens, of +1/-1 according to bit i of
// that token's hash, is strictly positive.
func Simhash64(tokens []string) uint64 {
	var acc [64]int64
	for _, t := range tokens {
		h := hashToken(t)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				acc[i]++
			} else {
				acc[i]--
			}
		}
	}
	var out uint64
	for i := 0; i < 64; i++ {
		if acc[i] > 0 {
			out |= 1 << uint(i)
		}
	}
	return out
}

func hashToken(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Hamming returns the number of differing bits between a and b.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
