// Package cache はキーごとの順序と TTL の扱いを保証するキャッシュです。
//
// 同じキーへの get / put / del は呼び出し順に 1 つずつバックエンドへ発行されます。
// バックエンドのエラーは呼び出し元には返さず、get は「値なし」、put と del は「完了」として扱います。
package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/amakane-hakari/ordcache/internal/backend"
	"github.com/amakane-hakari/ordcache/internal/metrics"
	"github.com/amakane-hakari/ordcache/internal/sequencer"
	"github.com/amakane-hakari/ordcache/internal/ttl"
)

// Lookup は get の結果です。
type Lookup[V any] struct {
	Value V
	Found bool
}

// Cache は Backend の前段に置く順序保証付きキャッシュです。
type Cache[V any] struct {
	b      backend.Backend
	seq    *sequencer.Sequencer
	ownSeq bool
	def    ttl.TTL
	opts   options
}

// New は b を使うキャッシュを作成します。
func New[V any](b backend.Backend, opts ...Option) (*Cache[V], error) {
	if b == nil {
		return nil, ErrNoBackend
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.codec == nil {
		return nil, errors.New("cache: codec is nil")
	}
	if o.metrics == nil {
		o.metrics = metrics.Noop{}
	}

	c := &Cache[V]{
		b:    b,
		seq:  o.seq,
		def:  ttl.NormalizeDefault(o.defaultTTL),
		opts: o,
	}
	if c.seq == nil {
		sopts := []sequencer.Option{
			sequencer.WithMaxEntries(o.maxEntries),
			sequencer.WithIdleTimeout(o.idle),
			sequencer.WithMetrics(o.metrics),
		}
		if o.logger != nil {
			sopts = append(sopts, sequencer.WithLogger(o.logger))
		}
		c.seq = sequencer.New(sopts...)
		c.ownSeq = true
	}
	return c, nil
}

// DefaultTTL は解決済みの既定 TTL を返します。
func (c *Cache[V]) DefaultTTL() ttl.TTL { return c.def }

// Get は key の値を返します。値がない場合やストアのエラーでは found が false です。
// err は ctx が操作の完了より先に終了した場合のみ返ります。その場合も操作は継続します。
func (c *Cache[V]) Get(ctx context.Context, key string) (v V, found bool, err error) {
	l, err := c.get(context.WithoutCancel(ctx), key).Wait(ctx)
	return l.Value, l.Found, err
}

// GetAsync は Get の非同期版です。
func (c *Cache[V]) GetAsync(key string) *sequencer.Future[Lookup[V]] {
	return c.get(context.Background(), key)
}

func (c *Cache[V]) get(ctx context.Context, key string) *sequencer.Future[Lookup[V]] {
	return sequencer.Submit(c.seq, key, func() Lookup[V] {
		data, err := c.b.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, backend.ErrNotFound) {
				c.storeError("get", key, err)
			}
			c.opts.metrics.IncGetMiss()
			return Lookup[V]{}
		}
		var v V
		if err := c.opts.codec.Unmarshal(data, &v); err != nil {
			c.storeError("decode", key, err)
			c.opts.metrics.IncGetMiss()
			return Lookup[V]{}
		}
		c.opts.metrics.IncGetHit()
		return Lookup[V]{Value: v, Found: true}
	})
}

// Put は既定 TTL で値を書き込みます。
func (c *Cache[V]) Put(ctx context.Context, key string, v V) error {
	return c.PutWithTTL(ctx, key, v, ttl.Unset())
}

// PutWithTTL は t に従って値を書き込みます。t が 0 なら書き込まず、+Inf なら期限なし、
// 不正な値なら既定 TTL を使います。
// 値のエンコードに失敗した場合はそのエラーを返し、何も登録しません。
func (c *Cache[V]) PutWithTTL(ctx context.Context, key string, v V, t ttl.TTL) error {
	f, err := c.put(context.WithoutCancel(ctx), key, v, t)
	if err != nil {
		return err
	}
	_, err = f.Wait(ctx)
	return err
}

// PutAsync は PutWithTTL の非同期版です。
func (c *Cache[V]) PutAsync(key string, v V, t ttl.TTL) (*sequencer.Future[struct{}], error) {
	return c.put(context.Background(), key, v, t)
}

func (c *Cache[V]) put(ctx context.Context, key string, v V, t ttl.TTL) (*sequencer.Future[struct{}], error) {
	data, err := c.opts.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache: encode %q: %w", key, err)
	}
	d := ttl.Resolve(t, c.def)
	c.opts.metrics.IncPut(d.Action.String())
	if c.opts.logger != nil {
		c.opts.logger.Debug("cache.put", "key", key, "ttl", t.String(), "decision", d.String())
	}

	return sequencer.Submit(c.seq, key, func() struct{} {
		var err error
		switch d.Action {
		case ttl.Skip:
			return struct{}{}
		case ttl.NoExpiry:
			err = c.b.Set(ctx, key, data)
		default:
			err = c.b.SetWithExpiry(ctx, key, data, d.Expiry)
		}
		if err != nil {
			c.storeError("put", key, err)
		}
		return struct{}{}
	}), nil
}

// Del は key を削除します。
func (c *Cache[V]) Del(ctx context.Context, key string) error {
	_, err := c.del(context.WithoutCancel(ctx), key).Wait(ctx)
	return err
}

// DelAsync は Del の非同期版です。
func (c *Cache[V]) DelAsync(key string) *sequencer.Future[struct{}] {
	return c.del(context.Background(), key)
}

func (c *Cache[V]) del(ctx context.Context, key string) *sequencer.Future[struct{}] {
	c.opts.metrics.IncDelete()
	return sequencer.Submit(c.seq, key, func() struct{} {
		if err := c.b.Delete(ctx, key); err != nil {
			c.storeError("del", key, err)
		}
		return struct{}{}
	})
}

// Clear はバックエンドの全てのキーを削除します。
// キーごとの順序には従わず、実行中や待機中の操作とは独立に発行されます。
func (c *Cache[V]) Clear(ctx context.Context) error {
	c.opts.metrics.IncClear()
	if err := c.b.FlushAll(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.storeError("clear", "", err)
	}
	return nil
}

// Keys はパターンに一致するキーを返します。診断用途で、ストアのエラーをそのまま返します。
func (c *Cache[V]) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := c.b.Keys(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("cache: list keys: %w", err)
	}
	return keys, nil
}

// Close は内部のシーケンサを停止します。バックエンドは閉じません。
func (c *Cache[V]) Close() {
	if c.ownSeq {
		c.seq.Close()
	}
}

// Shutdown は実行中の操作の完了を待ってから、シーケンサとバックエンドを閉じます。
func (c *Cache[V]) Shutdown(ctx context.Context) error {
	err := c.seq.Wait(ctx)
	c.Close()
	return multierr.Append(err, c.b.Close())
}

func (c *Cache[V]) storeError(op, key string, err error) {
	c.opts.metrics.IncStoreError(op)
	if c.opts.logger != nil {
		c.opts.logger.Error("cache.store_error", "op", op, "key", key, "err", err)
	}
	if c.opts.onErr != nil {
		c.opts.onErr(StoreError{Op: op, Key: key, Err: err})
	}
}
