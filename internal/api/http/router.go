package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amakane-hakari/ordcache/internal/cache"
	ilog "github.com/amakane-hakari/ordcache/internal/log"
)

type routerConfig struct {
	logger  ilog.Logger
	metrics http.Handler
	backend string
	maxBody int64
}

// RouterOption はルーターのオプションを設定する関数です。
type RouterOption func(*routerConfig)

// WithLogger はアクセスログと panic の記録に使うロガーを設定します。
func WithLogger(l ilog.Logger) RouterOption {
	return func(c *routerConfig) { c.logger = l }
}

// WithMetricsHandler は /metrics で公開するハンドラを設定します。
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(c *routerConfig) { c.metrics = h }
}

// WithBackendName は /health に表示するバックエンド名を設定します。
func WithBackendName(name string) RouterOption {
	return func(c *routerConfig) { c.backend = name }
}

// WithMaxBodyBytes は PUT のボディ上限を設定します。0 以下なら DefaultMaxBodyBytes です。
func WithMaxBodyBytes(n int64) RouterOption {
	return func(c *routerConfig) { c.maxBody = n }
}

// NewRouter はキャッシュ API のルーターを作成します。
func NewRouter(c *cache.Cache[json.RawMessage], opts ...RouterOption) http.Handler {
	var cfg routerConfig
	for _, o := range opts {
		o(&cfg)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(AccessLog(cfg.logger))
	r.Use(RecoverMiddleware(cfg.logger))

	r.Get("/health", healthHandler(cfg.backend))
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	h := &cacheHandler{c: c, maxBody: cfg.maxBody}
	h.mount(r)
	return r
}
