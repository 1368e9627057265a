// Package backend はキャッシュの下にあるキーバリューストアを抽象化します。
//
// どの実装も値をバイト列として扱い、有効期限はミリ秒単位で受け取ります。
// 値が見つからない場合 Get は ErrNotFound を返します。
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrNotFound はキーが存在しないか期限切れであることを表します。
	ErrNotFound = errors.New("backend: not found")
	// ErrMissingAddr は Redis の接続先が指定されていないことを表します。
	ErrMissingAddr = errors.New("backend: redis address is required")
	// ErrMissingPath は bolt のファイルパスが指定されていないことを表します。
	ErrMissingPath = errors.New("backend: bolt path is required")
	// ErrUnknownKind は未知のバックエンド種別を表します。
	ErrUnknownKind = errors.New("backend: unknown kind")
)

// Backend はキャッシュが利用するストアの操作です。
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithExpiry(ctx context.Context, key string, value []byte, d time.Duration) error
	Delete(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// Maintainer は定期的な保守 (期限切れの回収など) が必要なバックエンドが実装します。
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Kind はバックエンドの種別です。
type Kind string

const (
	KindMemory Kind = "memory"
	KindRedis  Kind = "redis"
	KindBadger Kind = "badger"
	KindBolt   Kind = "bolt"
)

// ParseKind は文字列を Kind に変換します。大文字小文字は区別しません。
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindMemory, nil
	case KindMemory, KindRedis, KindBadger, KindBolt:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

type logLike interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// RedisConfig は Redis バックエンドの接続設定です。
type RedisConfig struct {
	Addrs    []string
	Cluster  bool // 複数ノードのクラスタとして接続する
	Password string
	DB       int // クラスタでは無視されます
}

// Config は Open に渡すバックエンドの設定です。
type Config struct {
	Kind Kind

	Redis RedisConfig

	// BadgerDir が空ならインメモリで動作します。
	BadgerDir string
	BoltPath  string

	MemoryShards    int
	CleanupInterval time.Duration // memory バックエンドの期限切れ掃除間隔

	Clock  clockwork.Clock // memory と bolt の期限判定に使います
	Logger logLike
}

// Open は cfg.Kind に応じたバックエンドを作成します。
func Open(ctx context.Context, cfg Config) (Backend, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = KindMemory
	}
	var (
		b   Backend
		err error
	)
	switch kind {
	case KindMemory:
		b = NewMemory(cfg)
	case KindRedis:
		b, err = NewRedis(cfg.Redis)
	case KindBadger:
		b, err = OpenBadger(cfg.BadgerDir)
	case KindBolt:
		b, err = OpenBolt(cfg.BoltPath, cfg.Clock)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", kind, err)
	}
	if ctx.Err() != nil {
		_ = b.Close()
		return nil, ctx.Err()
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("backend.open", "kind", string(kind))
	}
	return b, nil
}
