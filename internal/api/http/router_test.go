package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amakane-hakari/ordcache/internal/backend"
	"github.com/amakane-hakari/ordcache/internal/cache"
	"github.com/amakane-hakari/ordcache/internal/metrics"
)

func newTestServer(t *testing.T, opts ...cache.Option) *httptest.Server {
	return newTestServerWith(t, nil, opts...)
}

func newTestServerWith(t *testing.T, ropts []RouterOption, opts ...cache.Option) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewProm("ordcache", reg)
	b := backend.NewMemory(backend.Config{})
	c, err := cache.New[json.RawMessage](b, append([]cache.Option{cache.WithMetrics(m)}, opts...)...)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(c.Close)

	ts := httptest.NewServer(NewRouter(c, append([]RouterOption{
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		WithBackendName("memory"),
	}, ropts...)...))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req, _ := http.NewRequest(method, url, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error: %v", method, url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

type valueResponse struct {
	Data valueDTO `json:"data"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hr.Status != "ok" || hr.Backend != "memory" {
		t.Fatalf("unexpected health %+v", hr)
	}

	SetDraining(true)
	defer SetDraining(false)
	if resp := do(t, http.MethodGet, ts.URL+"/health", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while draining, got %d", resp.StatusCode)
	}
}

func TestCache_CRUD(t *testing.T) {
	ts := newTestServer(t)

	// PUT
	res := do(t, http.MethodPut, ts.URL+"/cache/foo", `{"value":{"name":"bar"}}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("put status %d", res.StatusCode)
	}

	// GET
	getRes := do(t, http.MethodGet, ts.URL+"/cache/foo", "")
	if getRes.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", getRes.StatusCode)
	}
	var vr valueResponse
	if err := json.NewDecoder(getRes.Body).Decode(&vr); err != nil {
		t.Fatalf("get decode error: %v", err)
	}
	if string(vr.Data.Value) != `{"name":"bar"}` {
		t.Fatalf("expected value {\"name\":\"bar\"}, got '%s'", vr.Data.Value)
	}

	// DELETE
	if delRes := do(t, http.MethodDelete, ts.URL+"/cache/foo", ""); delRes.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", delRes.StatusCode)
	}

	// GET again (not found)
	if getRes2 := do(t, http.MethodGet, ts.URL+"/cache/foo", ""); getRes2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", getRes2.StatusCode)
	}
}

func TestCache_PutTTL(t *testing.T) {
	ts := newTestServer(t, cache.WithDefaultTTL(50))

	do(t, http.MethodPut, ts.URL+"/cache/zero", `{"value":"v","ttl_ms":0}`)
	do(t, http.MethodPut, ts.URL+"/cache/inf", `{"value":"v","ttl_ms":"Infinity"}`)
	do(t, http.MethodPut, ts.URL+"/cache/bogus", `{"value":"v","ttl_ms":"soon"}`)
	do(t, http.MethodPut, ts.URL+"/cache/long", `{"value":"v","ttl_ms":60000}`)

	if res := do(t, http.MethodGet, ts.URL+"/cache/zero", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("ttl 0 must not be stored, got %d", res.StatusCode)
	}
	if res := do(t, http.MethodGet, ts.URL+"/cache/bogus", ""); res.StatusCode != http.StatusOK {
		t.Fatalf("invalid ttl uses default, got %d", res.StatusCode)
	}

	time.Sleep(80 * time.Millisecond)

	if res := do(t, http.MethodGet, ts.URL+"/cache/bogus", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("default ttl should have expired, got %d", res.StatusCode)
	}
	for _, k := range []string{"inf", "long"} {
		if res := do(t, http.MethodGet, ts.URL+"/cache/"+k, ""); res.StatusCode != http.StatusOK {
			t.Fatalf("%s should persist, got %d", k, res.StatusCode)
		}
	}
}

func TestCache_PutBadRequest(t *testing.T) {
	ts := newTestServer(t)

	cases := map[string]string{
		"malformed":     `{"value":`,
		"missing value": `{"ttl_ms":10}`,
		"unknown field": `{"value":1,"extra":true}`,
		"two values":    `{"value":1}{"value":2}`,
		"empty":         ` `,
	}
	for name, body := range cases {
		res := do(t, http.MethodPut, ts.URL+"/cache/k", body)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, res.StatusCode)
		}
		var env struct {
			Err *AppError `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&env); err != nil || env.Err == nil {
			t.Fatalf("%s: expected error envelope, err=%v", name, err)
		}
	}
}

func TestCache_KeysAndClear(t *testing.T) {
	ts := newTestServer(t)
	for _, k := range []string{"user:1", "user:2", "post:1"} {
		do(t, http.MethodPut, ts.URL+"/cache/"+k, `{"value":1,"ttl_ms":"Infinity"}`)
	}

	res := do(t, http.MethodGet, ts.URL+"/cache?pattern=user:*", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("keys status %d", res.StatusCode)
	}
	var kr struct {
		Data keysDTO `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&kr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	sort.Strings(kr.Data.Keys)
	if strings.Join(kr.Data.Keys, ",") != "user:1,user:2" {
		t.Fatalf("unexpected keys %v", kr.Data.Keys)
	}

	if res := do(t, http.MethodDelete, ts.URL+"/cache", ""); res.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status %d", res.StatusCode)
	}
	if res := do(t, http.MethodGet, ts.URL+"/cache/post:1", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected cleared, got %d", res.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	do(t, http.MethodPut, ts.URL+"/cache/a", `{"value":1}`)
	do(t, http.MethodGet, ts.URL+"/cache/a", "")

	res := do(t, http.MethodGet, ts.URL+"/metrics", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	for _, want := range []string{"ordcache_get_hit_total 1", `ordcache_put_total{action="expire"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestParseTTL(t *testing.T) {
	cases := map[string]string{
		``:            "unset",
		`null`:        "unset",
		`0`:           "0ms",
		`"Infinity"`:  "+Infms",
		`"-Infinity"`: "-Infms",
		`"100"`:       "unset",
		`true`:        "unset",
		`250.5`:       "250.5ms",
		`1e400`:       "unset",
	}
	for in, want := range cases {
		if got := parseTTL(json.RawMessage(in)).String(); got != want {
			t.Fatalf("parseTTL(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestCache_PutBodyLimit(t *testing.T) {
	ts := newTestServerWith(t, []RouterOption{WithMaxBodyBytes(64)})

	big := `{"value":"` + strings.Repeat("x", 100) + `"}`
	res := do(t, http.MethodPut, ts.URL+"/cache/big", big)
	if res.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.StatusCode)
	}
	var env struct {
		Err *AppError `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil || env.Err == nil {
		t.Fatalf("expected error envelope, err=%v", err)
	}
	if env.Err.Code != CodePayloadTooLarge {
		t.Fatalf("unexpected code %q", env.Err.Code)
	}
	meta, _ := env.Err.Meta.(map[string]any)
	if meta["request_id"] != res.Header.Get("X-Request-ID") {
		t.Fatalf("error should carry request id, got %v", env.Err.Meta)
	}

	if res := do(t, http.MethodPut, ts.URL+"/cache/small", `{"value":"ok"}`); res.StatusCode != http.StatusOK {
		t.Fatalf("small body should pass, got %d", res.StatusCode)
	}
}
