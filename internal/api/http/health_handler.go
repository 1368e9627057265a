package http

import (
	"net/http"
	"sync/atomic"
)

var draining atomic.Bool

// SetDraining はドレイニング状態を設定します。
func SetDraining(v bool) {
	draining.Store(v)
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
}

func healthHandler(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if draining.Load() {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "draining", Backend: backend})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Backend: backend})
	}
}
