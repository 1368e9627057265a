package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphttp "github.com/amakane-hakari/ordcache/internal/api/http"
	"github.com/amakane-hakari/ordcache/internal/backend"
	"github.com/amakane-hakari/ordcache/internal/cache"
	"github.com/amakane-hakari/ordcache/internal/codec"
	"github.com/amakane-hakari/ordcache/internal/config"
	ilog "github.com/amakane-hakari/ordcache/internal/log"
	"github.com/amakane-hakari/ordcache/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := ilog.FromEnv()
	if err != nil {
		return err
	}
	if z, ok := logger.(*ilog.Zap); ok {
		defer func() { _ = z.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Backend.Logger = logger
	b, err := backend.Open(ctx, cfg.Backend)
	if err != nil {
		return err
	}
	cd, err := codec.ByName(cfg.Codec)
	if err != nil {
		_ = b.Close()
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c, err := cache.New[json.RawMessage](b,
		cache.WithDefaultTTL(cfg.DefaultTTLMillis),
		cache.WithSequencerLimits(cfg.SeqMaxKeys, cfg.SeqIdle),
		cache.WithCodec(cd),
		cache.WithLogger(logger),
		cache.WithMetrics(metrics.NewProm("ordcache", reg)),
	)
	if err != nil {
		_ = b.Close()
		return err
	}

	if m, ok := b.(backend.Maintainer); ok && cfg.MaintainInterval > 0 {
		go maintainLoop(ctx, m, cfg.MaintainInterval, logger)
	}

	router := apphttp.NewRouter(c,
		apphttp.WithLogger(logger),
		apphttp.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		apphttp.WithBackendName(string(cfg.Backend.Kind)),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("server.start",
		"addr", cfg.HTTPAddr,
		"backend", string(cfg.Backend.Kind),
		"default_ttl", c.DefaultTTL().String(),
		"codec", cd.Name(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("server.shutdown.signal")
	case serveErr = <-errCh:
		logger.Error("server.error", "err", serveErr)
	}

	apphttp.SetDraining(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown", "err", err)
	}
	if err := c.Shutdown(shutdownCtx); err != nil {
		logger.Error("cache.shutdown", "err", err)
	} else {
		logger.Info("server.stopped")
	}
	return serveErr
}

func maintainLoop(ctx context.Context, m backend.Maintainer, every time.Duration, l ilog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := m.Maintain(ctx); err != nil && ctx.Err() == nil {
				l.Error("backend.maintain", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
