// Package main は 負荷試験ツールのエントリーポイントを提供します。
package main

import (
	"fmt"
	"os"

	"github.com/amakane-hakari/ordcache/loadtest/attacker"
	"github.com/amakane-hakari/ordcache/loadtest/config"
	"github.com/amakane-hakari/ordcache/loadtest/scenario"
)

func main() {
	cfg := config.Load()

	fmt.Printf("[INFO] base-url=%s rate=%d duration=%s read-ratio=%.2f delete-ratio=%.2f keys=%d value-size=%d ttl-ratio=%.2f ttl-ms=%d edge-ttl-ratio=%.2f read-only=%v\n",
		cfg.BaseURL, cfg.Rate, cfg.Duration, cfg.ReadRatio, cfg.DelRatio, cfg.Keys, cfg.ValueSize, cfg.TTLRatio, cfg.TTLMillis, cfg.EdgeRatio, cfg.DisablePUT)

	gen := scenario.NewGenerator(scenario.Options{
		BaseURL:     cfg.BaseURL,
		Keys:        cfg.Keys,
		ReadRatio:   cfg.ReadRatio,
		DeleteRatio: cfg.DelRatio,
		ValueSize:   cfg.ValueSize,
		TTLRatio:    cfg.TTLRatio,
		TTLms:       cfg.TTLMillis,
		EdgeRatio:   cfg.EdgeRatio,
		ReadOnly:    cfg.DisablePUT,
	})

	r := attacker.Runner{
		Rate:     cfg.Rate,
		Duration: cfg.Duration,
		Timeout:  cfg.Timeout,
		Name:     cfg.Name,
		Output:   cfg.Output,
	}

	s, err := r.Run(gen.Targeter())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	// 404 はキャッシュミスなので失敗には数えない
	if s.ServerErrors() > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: %d server errors\n", s.ServerErrors())
		os.Exit(2)
	}
}
