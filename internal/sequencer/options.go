package sequencer

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/amakane-hakari/ordcache/internal/metrics"
)

const (
	// DefaultMaxEntries は追跡するキー数の既定上限です。
	DefaultMaxEntries = 1000
	// DefaultIdleTimeout は未使用キーを忘れるまでの既定時間です。
	DefaultIdleTimeout = 60 * time.Second
)

type logLike interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config はシーケンサの設定を表します。
type Config struct {
	MaxEntries      int           // 0 以下なら DefaultMaxEntries
	IdleTimeout     time.Duration // 0 以下なら DefaultIdleTimeout
	CleanupInterval time.Duration // 負なら IdleTimeout/2、0 でバックグラウンド掃除なし
	Clock           clockwork.Clock
	Logger          logLike
	Metrics         metrics.Interface
}

// Option はシーケンサのオプションを設定する関数です。
type Option func(*Config)

// WithMaxEntries は追跡するキー数の上限を設定します。
func WithMaxEntries(n int) Option {
	return func(c *Config) { c.MaxEntries = n }
}

// WithIdleTimeout は未使用キーを忘れるまでの時間を設定します。
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) { c.IdleTimeout = d }
}

// WithCleanupInterval はアイドルキー掃除の間隔を設定します。0 で無効です。
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Config) { c.CleanupInterval = d }
}

// WithClock は時刻の取得元を設定します。テストでは clockwork.NewFakeClock を使います。
func WithClock(clk clockwork.Clock) Option {
	return func(c *Config) { c.Clock = clk }
}

// WithLogger はシーケンサのロガーを設定します。
func WithLogger(l logLike) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics はシーケンサのメトリクスを設定します。
func WithMetrics(m metrics.Interface) Option {
	return func(c *Config) { c.Metrics = m }
}
