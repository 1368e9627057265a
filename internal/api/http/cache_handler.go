package http

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amakane-hakari/ordcache/internal/cache"
	"github.com/amakane-hakari/ordcache/internal/ttl"
)

type cacheHandler struct {
	c       *cache.Cache[json.RawMessage]
	maxBody int64
}

func (h *cacheHandler) mount(r chi.Router) {
	r.Route("/cache", func(r chi.Router) {
		r.Method(http.MethodGet, "/", HandlerFunc(h.keys))
		r.Method(http.MethodDelete, "/", HandlerFunc(h.clear))
		r.Method(http.MethodPut, "/{key}", HandlerFunc(h.put))
		r.Method(http.MethodGet, "/{key}", HandlerFunc(h.get))
		r.Method(http.MethodDelete, "/{key}", HandlerFunc(h.del))
	})
}

// putRequest の ttl_ms は数値、"Infinity"、それ以外 (既定 TTL) のいずれかです。
type putRequest struct {
	Value json.RawMessage `json:"value"`
	TTL   json.RawMessage `json:"ttl_ms,omitempty"`
}

type valueDTO struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
}

type keysDTO struct {
	Keys []string `json:"keys"`
}

// parseTTL は JSON の ttl_ms を TTL に変換します。解釈できない値は Unset です。
func parseTTL(raw json.RawMessage) ttl.TTL {
	if len(raw) == 0 {
		return ttl.Unset()
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ttl.Unset()
	}
	if s, ok := v.(string); ok {
		switch s {
		case "Infinity", "+Infinity":
			return ttl.Forever()
		case "-Infinity":
			return ttl.Millis(math.Inf(-1))
		}
	}
	return ttl.FromAny(v)
}

func (h *cacheHandler) put(w http.ResponseWriter, r *http.Request) error {
	key := chi.URLParam(r, "key")
	if key == "" {
		return BadRequest("empty key")
	}
	var req putRequest
	if err := DecodeJSON(w, r, &req, h.maxBody); err != nil {
		return err
	}
	if len(bytes.TrimSpace(req.Value)) == 0 {
		return BadRequest("value is required")
	}
	if err := h.c.PutWithTTL(r.Context(), key, req.Value, parseTTL(req.TTL)); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: req.Value})
	return nil
}

func (h *cacheHandler) get(w http.ResponseWriter, r *http.Request) error {
	key := chi.URLParam(r, "key")
	if key == "" {
		return BadRequest("empty key")
	}
	v, ok, err := h.c.Get(r.Context(), key)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound("key not found")
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: v})
	return nil
}

func (h *cacheHandler) del(w http.ResponseWriter, r *http.Request) error {
	key := chi.URLParam(r, "key")
	if key == "" {
		return BadRequest("empty key")
	}
	if err := h.c.Del(r.Context(), key); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key})
	return nil
}

func (h *cacheHandler) clear(w http.ResponseWriter, r *http.Request) error {
	if err := h.c.Clear(r.Context()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *cacheHandler) keys(w http.ResponseWriter, r *http.Request) error {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	keys, err := h.c.Keys(r.Context(), pattern)
	if err != nil {
		if r.Context().Err() != nil {
			return r.Context().Err()
		}
		return StoreUnavailable(err.Error())
	}
	writeSuccess(w, http.StatusOK, keysDTO{Keys: keys})
	return nil
}
