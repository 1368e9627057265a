package backend

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contract は全てのバックエンドに共通する振る舞いを検証します。
// advance は期限判定に使われる時計を d だけ進めます。
func contract(t *testing.T, b Backend, advance func(d time.Duration)) {
	t.Helper()
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		_, err := b.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "foo", []byte(`"bar"`)))
		v, err := b.Get(ctx, "foo")
		require.NoError(t, err)
		assert.Equal(t, `"bar"`, string(v))

		require.NoError(t, b.Delete(ctx, "foo"))
		_, err = b.Get(ctx, "foo")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, b.Delete(ctx, "never-existed"))
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, b.SetWithExpiry(ctx, "ttl", []byte("x"), 100*time.Millisecond))
		require.NoError(t, b.Set(ctx, "forever", []byte("y")))

		v, err := b.Get(ctx, "ttl")
		require.NoError(t, err)
		assert.Equal(t, "x", string(v))

		advance(2 * time.Second)

		_, err = b.Get(ctx, "ttl")
		assert.ErrorIs(t, err, ErrNotFound)
		v, err = b.Get(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, "y", string(v))
	})

	t.Run("keys and flush", func(t *testing.T) {
		require.NoError(t, b.FlushAll(ctx))
		for _, k := range []string{"user:1", "user:2", "post:1"} {
			require.NoError(t, b.Set(ctx, k, []byte(k)))
		}

		keys, err := b.Keys(ctx, "user:*")
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"user:1", "user:2"}, keys)

		all, err := b.Keys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		require.NoError(t, b.FlushAll(ctx))
		all, err = b.Keys(ctx, "*")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestMemory(t *testing.T) {
	fc := clockwork.NewFakeClock()
	b := NewMemory(Config{Clock: fc, MemoryShards: 4})
	defer func() { _ = b.Close() }()
	contract(t, b, fc.Advance)
}

func TestRedis(t *testing.T) {
	m := miniredis.RunT(t)
	b, err := NewRedis(RedisConfig{Addrs: []string{m.Addr()}})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	contract(t, b, m.FastForward)
}

func TestRedis_ExpiryUsesMilliseconds(t *testing.T) {
	m := miniredis.RunT(t)
	b, err := NewRedis(RedisConfig{Addrs: []string{m.Addr()}})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	ctx := context.Background()
	require.NoError(t, b.SetWithExpiry(ctx, "k", []byte("v"), 1500*time.Millisecond))
	assert.Equal(t, 1500*time.Millisecond, m.TTL("k"))

	m.FastForward(1499 * time.Millisecond)
	assert.True(t, m.Exists("k"))
	m.FastForward(time.Millisecond)
	assert.False(t, m.Exists("k"))
}

func TestRedis_StoreFailure(t *testing.T) {
	m := miniredis.RunT(t)
	b, err := NewRedis(RedisConfig{Addrs: []string{m.Addr()}})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	m.SetError("ERR boom")
	_, err = b.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedis_Config(t *testing.T) {
	_, err := NewRedis(RedisConfig{})
	assert.ErrorIs(t, err, ErrMissingAddr)

	b, err := NewRedis(RedisConfig{Addrs: []string{"127.0.0.1:7000", "127.0.0.1:7001"}, Cluster: true})
	require.NoError(t, err)
	assert.NotNil(t, b.cluster)
	assert.NoError(t, b.Close())
}

func TestBolt(t *testing.T) {
	fc := clockwork.NewFakeClock()
	b, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"), fc)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	contract(t, b, fc.Advance)
}

func TestBolt_Maintain(t *testing.T) {
	fc := clockwork.NewFakeClock()
	b, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"), fc)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, b.SetWithExpiry(ctx, k, []byte(k), time.Second))
	}
	require.NoError(t, b.Set(ctx, "keep", []byte("v")))
	fc.Advance(time.Second)

	n, err := b.purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, b.Maintain(ctx))
	v, err := b.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}

func TestOpenBolt_MissingPath(t *testing.T) {
	_, err := OpenBolt("", nil)
	assert.ErrorIs(t, err, ErrMissingPath)
}

func TestBadger(t *testing.T) {
	if testing.Short() {
		t.Skip("badger expiry has second granularity")
	}
	b, err := OpenBadger("")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	contract(t, b, func(d time.Duration) { time.Sleep(d) })
	assert.NoError(t, b.Maintain(context.Background()))
}

func TestExpiresAtSeconds(t *testing.T) {
	base := time.Unix(100, 0)
	assert.Equal(t, uint64(101), expiresAtSeconds(base, time.Millisecond))
	assert.Equal(t, uint64(101), expiresAtSeconds(base, time.Second))
	assert.Equal(t, uint64(102), expiresAtSeconds(base.Add(500*time.Millisecond), time.Second))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)
	require.NoError(t, b.Close())

	_, err = Open(ctx, Config{Kind: KindRedis})
	assert.ErrorIs(t, err, ErrMissingAddr)

	_, err = Open(ctx, Config{Kind: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	b, err = Open(ctx, Config{Kind: KindBolt, BoltPath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &Bolt{}, b)
	require.NoError(t, b.Close())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Redis ")
	require.NoError(t, err)
	assert.Equal(t, KindRedis, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindMemory, k)

	_, err = ParseKind("mongo")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
