package store

import "github.com/cespare/xxhash/v2"

func hashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
