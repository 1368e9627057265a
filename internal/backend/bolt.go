package backend

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/jonboulle/clockwork"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("ordcache")

// Bolt は bbolt ファイルを使うバックエンドです。
// 各値の先頭 8 バイトに期限 (Unix ミリ秒、0 で期限なし) をビッグエンディアンで格納します。
type Bolt struct {
	db    *bolt.DB
	clock clockwork.Clock
}

var (
	_ Backend    = (*Bolt)(nil)
	_ Maintainer = (*Bolt)(nil)
)

// OpenBolt は path の bbolt ファイルを開きます。clk が nil なら実時間を使います。
func OpenBolt(path string, clk clockwork.Clock) (*Bolt, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Bolt{db: db, clock: clk}, nil
}

func (b *Bolt) expired(v []byte, nowMs int64) bool {
	if len(v) < 8 {
		return true
	}
	exp := int64(binary.BigEndian.Uint64(v[:8]))
	return exp > 0 && nowMs >= exp
}

func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	found := false
	now := b.clock.Now().UnixMilli()
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v == nil || b.expired(v, now) {
			return nil
		}
		found = true
		out = append([]byte{}, v[8:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return out, nil
}

func (b *Bolt) put(key string, value []byte, expMs int64) error {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expMs))
	copy(buf[8:], value)
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), buf)
	})
}

func (b *Bolt) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.put(key, value, 0)
}

func (b *Bolt) SetWithExpiry(ctx context.Context, key string, value []byte, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.put(key, value, b.clock.Now().Add(d).UnixMilli())
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

func (b *Bolt) FlushAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(boltBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(boltBucket)
		return err
	})
}

func (b *Bolt) Keys(ctx context.Context, pattern string) ([]string, error) {
	match, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	now := b.clock.Now().UnixMilli()
	out := []string{}
	err = b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if b.expired(v, now) {
				return nil
			}
			if s := string(k); match(s) {
				out = append(out, s)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Maintain は期限切れのレコードを削除します。
func (b *Bolt) Maintain(ctx context.Context) error {
	_, err := b.purge(ctx)
	return err
}

func (b *Bolt) purge(ctx context.Context) (int, error) {
	now := b.clock.Now().UnixMilli()
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.First(); k != nil; {
			if err := ctx.Err(); err != nil {
				return err
			}
			if b.expired(v, now) {
				key := append([]byte(nil), k...)
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
				k, v = c.Seek(key)
				continue
			}
			k, v = c.Next()
		}
		return nil
	})
	return removed, err
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
