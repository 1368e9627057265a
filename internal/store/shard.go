package store

import "sync"

type shard struct {
	mu sync.RWMutex
	m  map[string]entry
}

func (s *Store) getShard(key string) *shard {
	h := hashKey(key)
	return &s.shards[h&s.shardMask]
}
