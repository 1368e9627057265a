package backend

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Badger は組み込みの badger データベースを使うバックエンドです。
// badger の有効期限は秒単位なので、期限は次の秒境界まで切り上げられます。
type Badger struct {
	db *badger.DB
}

var (
	_ Backend    = (*Badger)(nil)
	_ Maintainer = (*Badger)(nil)
)

// OpenBadger は dir に badger データベースを開きます。dir が空ならインメモリです。
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return NewBadger(db), nil
}

// NewBadger は既に開かれた DB をバックエンドとして使います。
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func (b *Badger) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *Badger) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value))
	})
}

func (b *Badger) SetWithExpiry(ctx context.Context, key string, value []byte, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := badger.NewEntry([]byte(key), value)
	e.ExpiresAt = expiresAtSeconds(time.Now(), d)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

// expiresAtSeconds は now+d を秒に切り上げた Unix 時刻を返します。
func expiresAtSeconds(now time.Time, d time.Duration) uint64 {
	ns := now.Add(d).UnixNano()
	sec := ns / int64(time.Second)
	if ns%int64(time.Second) != 0 {
		sec++
	}
	return uint64(sec)
}

func (b *Badger) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *Badger) FlushAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.DropAll()
}

func (b *Badger) Keys(ctx context.Context, pattern string) ([]string, error) {
	match, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	out := []string{}
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := string(it.Item().Key())
			if match(k) {
				out = append(out, k)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Maintain は値ログの GC を 1 回実行します。回収対象がなければ nil を返します。
func (b *Badger) Maintain(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

func (b *Badger) Close() error {
	return b.db.Close()
}
