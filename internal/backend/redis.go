package backend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis は単一ノードまたはクラスタの Redis を使うバックエンドです。
type Redis struct {
	c       redis.UniversalClient
	cluster *redis.ClusterClient
}

var _ Backend = (*Redis)(nil)

// NewRedis は cfg に従って Redis クライアントを作成します。接続は最初のコマンドで確立されます。
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if len(cfg.Addrs) == 0 || cfg.Addrs[0] == "" {
		return nil, ErrMissingAddr
	}
	if cfg.Cluster {
		cc := redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		return &Redis{c: cc, cluster: cc}, nil
	}
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addrs[0],
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{c: c}, nil
}

// NewRedisFromClient は既存のクライアントをバックエンドとして使います。
func NewRedisFromClient(c redis.UniversalClient) *Redis {
	r := &Redis{c: c}
	if cc, ok := c.(*redis.ClusterClient); ok {
		r.cluster = cc
	}
	return r
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.c.Set(ctx, key, value, 0).Err()
}

// SetWithExpiry は PX 付きの SET で書き込みます。
func (r *Redis) SetWithExpiry(ctx context.Context, key string, value []byte, d time.Duration) error {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return r.c.Set(ctx, key, value, d.Round(time.Millisecond)).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

// FlushAll は現在の DB を FLUSHDB で空にします。クラスタでは全マスターに送ります。
func (r *Redis) FlushAll(ctx context.Context) error {
	if r.cluster != nil {
		return r.cluster.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
			return c.FlushDB(ctx).Err()
		})
	}
	return r.c.FlushDB(ctx).Err()
}

// Keys は KEYS コマンドで一致するキーを返します。運用中の大きな DB では重い操作です。
func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if r.cluster == nil {
		keys, err := r.c.Keys(ctx, pattern).Result()
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = []string{}
		}
		return keys, nil
	}

	var (
		mu  sync.Mutex
		out = []string{}
	)
	err := r.cluster.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
		keys, err := c.Keys(ctx, pattern).Result()
		if err != nil {
			return err
		}
		mu.Lock()
		out = append(out, keys...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.c.Close()
}
