// Package config はサーバーの設定を環境変数とフラグから読み込みます。
// フラグは環境変数より優先されます。
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amakane-hakari/ordcache/internal/backend"
)

// Config はサーバーの設定です。
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	Backend          backend.Config
	MaintainInterval time.Duration // badger / bolt の保守間隔。0 で無効

	DefaultTTLMillis float64
	Codec            string
	SeqMaxKeys       int
	SeqIdle          time.Duration
}

// env は環境変数の読み取りとその解析エラーを対応するフラグ名ごとに保持します。
type env struct {
	lookup func(string) string
	errs   map[string]error
}

func (e *env) fail(name, key string, err error) {
	e.errs[name] = fmt.Errorf("%s: %w", key, err)
}

// err はフラグで上書きされなかった環境変数のエラーをまとめて返します。
func (e *env) err(fs *flag.FlagSet) error {
	fs.Visit(func(f *flag.Flag) { delete(e.errs, f.Name) })
	if len(e.errs) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.errs))
	for n := range e.errs {
		names = append(names, n)
	}
	sort.Strings(names)
	errs := make([]error, 0, len(names))
	for _, n := range names {
		errs = append(errs, e.errs[n])
	}
	return errors.Join(errs...)
}

func (e *env) getString(_, key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

func (e *env) getInt(name, key string, def int) int {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, key, err)
		return def
	}
	return i
}

func (e *env) getFloat(name, key string, def float64) float64 {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, key, err)
		return def
	}
	return f
}

func (e *env) getDuration(name, key string, def time.Duration) time.Duration {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, key, err)
		return def
	}
	return d
}

func (e *env) getBool(name, key string, def bool) bool {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, key, err)
		return def
	}
	return b
}

// Load は os.Getenv と os.Args からの設定を読み込みます。
func Load() (*Config, error) {
	return Parse(os.Args[1:], os.Getenv)
}

// Parse は args と getenv から設定を読み込みます。
func Parse(args []string, getenv func(string) string) (*Config, error) {
	e := &env{lookup: getenv, errs: map[string]error{}}
	var (
		c          Config
		kind       string
		redisAddrs string
	)

	fs := flag.NewFlagSet("ordcache", flag.ContinueOnError)
	fs.StringVar(&c.HTTPAddr, "addr", e.getString("addr", "ORDCACHE_HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", e.getDuration("shutdown-timeout", "ORDCACHE_SHUTDOWN_TIMEOUT", 5*time.Second), "Graceful shutdown timeout")
	fs.StringVar(&kind, "backend", e.getString("backend", "ORDCACHE_BACKEND", string(backend.KindMemory)), "Backend kind (memory|redis|badger|bolt)")
	fs.StringVar(&redisAddrs, "redis-addrs", e.getString("redis-addrs", "ORDCACHE_REDIS_ADDRS", ""), "Comma separated Redis addresses")
	fs.BoolVar(&c.Backend.Redis.Cluster, "redis-cluster", e.getBool("redis-cluster", "ORDCACHE_REDIS_CLUSTER", false), "Connect to Redis as a cluster")
	fs.StringVar(&c.Backend.Redis.Password, "redis-password", e.getString("redis-password", "ORDCACHE_REDIS_PASSWORD", ""), "Redis password")
	fs.IntVar(&c.Backend.Redis.DB, "redis-db", e.getInt("redis-db", "ORDCACHE_REDIS_DB", 0), "Redis database number")
	fs.StringVar(&c.Backend.BadgerDir, "badger-dir", e.getString("badger-dir", "ORDCACHE_BADGER_DIR", ""), "Badger directory (empty for in-memory)")
	fs.StringVar(&c.Backend.BoltPath, "bolt-path", e.getString("bolt-path", "ORDCACHE_BOLT_PATH", "ordcache.db"), "Bolt database file")
	fs.DurationVar(&c.Backend.CleanupInterval, "memory-cleanup", e.getDuration("memory-cleanup", "ORDCACHE_MEMORY_CLEANUP", time.Second), "Expired entry cleanup interval for the memory backend")
	fs.DurationVar(&c.MaintainInterval, "maintain-interval", e.getDuration("maintain-interval", "ORDCACHE_MAINTAIN_INTERVAL", 5*time.Minute), "Maintenance interval for badger and bolt")
	fs.Float64Var(&c.DefaultTTLMillis, "default-ttl-ms", e.getFloat("default-ttl-ms", "ORDCACHE_DEFAULT_TTL_MS", 30000), "Default TTL in milliseconds")
	fs.StringVar(&c.Codec, "codec", e.getString("codec", "ORDCACHE_CODEC", "json"), "Value codec (json|msgpack)")
	fs.IntVar(&c.SeqMaxKeys, "seq-max-keys", e.getInt("seq-max-keys", "ORDCACHE_SEQ_MAX_KEYS", 1000), "Maximum keys tracked by the sequencer")
	fs.DurationVar(&c.SeqIdle, "seq-idle", e.getDuration("seq-idle", "ORDCACHE_SEQ_IDLE", 60*time.Second), "Idle time before the sequencer forgets a key")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := e.err(fs); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	k, err := backend.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.Backend.Kind = k
	c.Backend.Redis.Addrs = splitList(redisAddrs)
	if k == backend.KindRedis && len(c.Backend.Redis.Addrs) == 0 {
		return nil, fmt.Errorf("config: %w", backend.ErrMissingAddr)
	}
	return &c, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
