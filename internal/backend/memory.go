package backend

import (
	"context"
	"time"

	"github.com/amakane-hakari/ordcache/internal/store"
)

// Memory はプロセス内の store.Store を使うバックエンドです。
type Memory struct {
	st *store.Store
}

var _ Backend = (*Memory)(nil)

// NewMemory は新しい Memory バックエンドを作成します。
func NewMemory(cfg Config) *Memory {
	opts := []store.Option{store.WithCleanupInterval(cfg.CleanupInterval)}
	if cfg.MemoryShards > 0 {
		opts = append(opts, store.WithShards(cfg.MemoryShards))
	}
	if cfg.Clock != nil {
		opts = append(opts, store.WithClock(cfg.Clock))
	}
	if cfg.Logger != nil {
		opts = append(opts, store.WithLogger(cfg.Logger))
	}
	return &Memory{st: store.New(opts...)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.st.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.st.Set(key, value)
	return nil
}

func (m *Memory) SetWithExpiry(ctx context.Context, key string, value []byte, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		// 期限が既に過ぎているので書き込まずに消す
		m.st.Delete(key)
		return nil
	}
	m.st.SetWithTTL(key, value, d)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.st.Delete(key)
	return nil
}

func (m *Memory) FlushAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.st.Flush()
	return nil
}

func (m *Memory) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	match, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	keys := m.st.Keys(match)
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (m *Memory) Close() error {
	m.st.Close()
	return nil
}
