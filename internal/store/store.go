// Package store はプロセス内で完結するシャード分割された TTL 付きバイト列ストアです。
// memory バックエンドの実体として使われます。
package store

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Store は KVS のストアを表します。
type Store struct {
	cfg       Config
	clock     clockwork.Clock
	shards    []shard
	shardMask uint64 // Shards が 2^n の場合（hash & mask）で index

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New は新しい Store を作成します。
func New(opts ...Option) *Store {
	cfg := Config{Shards: 16}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Shards < 1 {
		cfg.Shards = 16
	}
	// 2 の冪に揃える
	cfg.Shards = nextPowerOfTwo(cfg.Shards)
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	s := &Store{
		cfg:       cfg,
		clock:     cfg.Clock,
		shards:    make([]shard, cfg.Shards),
		shardMask: uint64(cfg.Shards - 1),
	}
	for i := range s.shards {
		s.shards[i].m = make(map[string]entry)
	}

	if cfg.CleanupInterval > 0 {
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.cleanupLoop()
	}

	return s
}

// Close はストアをクローズします。
func (s *Store) Close() {
	if s.stopCh == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
