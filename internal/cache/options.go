package cache

import (
	"time"

	"github.com/amakane-hakari/ordcache/internal/codec"
	"github.com/amakane-hakari/ordcache/internal/metrics"
	"github.com/amakane-hakari/ordcache/internal/sequencer"
	"github.com/amakane-hakari/ordcache/internal/ttl"
)

type logLike interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type options struct {
	defaultTTL float64
	seq        *sequencer.Sequencer
	maxEntries int
	idle       time.Duration
	codec      codec.Codec
	logger     logLike
	metrics    metrics.Interface
	onErr      func(StoreError)
}

// Option はキャッシュのオプションを設定する関数です。
type Option func(*options)

// WithDefaultTTL は TTL を指定しない put や不正な TTL の put に使う既定値 (ミリ秒) を設定します。
// 正の数でない値は ttl.DefaultMillis になります。
func WithDefaultTTL(ms float64) Option {
	return func(o *options) { o.defaultTTL = ms }
}

// WithSequencer は外部で作成したシーケンサを使います。Close ではこのシーケンサを停止しません。
func WithSequencer(s *sequencer.Sequencer) Option {
	return func(o *options) { o.seq = s }
}

// WithSequencerLimits は内部で作成するシーケンサの容量とアイドル期限を設定します。
func WithSequencerLimits(maxEntries int, idle time.Duration) Option {
	return func(o *options) {
		o.maxEntries = maxEntries
		o.idle = idle
	}
}

// WithCodec は値の変換方式を設定します。既定は codec.JSON です。
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger はキャッシュのロガーを設定します。
func WithLogger(l logLike) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics はキャッシュのメトリクスを設定します。
func WithMetrics(m metrics.Interface) Option {
	return func(o *options) { o.metrics = m }
}

// WithErrorHandler は吸収されたストアエラーの通知先を設定します。
// ハンドラは操作を実行するゴルーチンから同期的に呼ばれます。
func WithErrorHandler(fn func(StoreError)) Option {
	return func(o *options) { o.onErr = fn }
}

func defaultOptions() options {
	return options{
		defaultTTL: ttl.DefaultMillis,
		codec:      codec.JSON{},
		metrics:    metrics.Noop{},
	}
}
