package scenario

import (
	"encoding/json"
	"strings"
	"testing"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

func TestGenerator_ReadOnly(t *testing.T) {
	g := NewGenerator(Options{BaseURL: "http://x", Keys: 10, ReadOnly: true, Seed: 1})
	tr := g.Targeter()
	for i := 0; i < 50; i++ {
		var tgt vegeta.Target
		if err := tr(&tgt); err != nil {
			t.Fatalf("targeter: %v", err)
		}
		if tgt.Method != "GET" || !strings.HasPrefix(tgt.URL, "http://x/cache/k") {
			t.Fatalf("unexpected target %s %s", tgt.Method, tgt.URL)
		}
	}
}

func TestGenerator_EdgeTTLs(t *testing.T) {
	g := NewGenerator(Options{BaseURL: "http://x", Keys: 1, ValueSize: 4, TTLRatio: 1, TTLms: 500, EdgeRatio: 1, Seed: 7})
	tr := g.Targeter()
	for i := 0; i < 50; i++ {
		var tgt vegeta.Target
		if err := tr(&tgt); err != nil {
			t.Fatalf("targeter: %v", err)
		}
		if tgt.Method != "PUT" {
			t.Fatalf("expected PUT, got %s", tgt.Method)
		}
		var body map[string]any
		if err := json.Unmarshal(tgt.Body, &body); err != nil {
			t.Fatalf("body: %v", err)
		}
		if _, ok := body["ttl_ms"]; !ok {
			t.Fatalf("ttl_ms missing in %s", tgt.Body)
		}
		if v, ok := body["ttl_ms"].(float64); ok && v == 500 {
			t.Fatalf("edge ratio 1 must not send the regular ttl")
		}
	}
}
