package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Options は Generator の設定です。
type Options struct {
	BaseURL     string
	Keys        int
	ReadRatio   float64
	DeleteRatio float64 // 書き込みのうち DELETE にする割合
	ValueSize   int
	TTLRatio    float64
	TTLms       int
	EdgeRatio   float64 // ttl_ms 付き PUT のうち 0 / "Infinity" / 不正値を送る割合
	ReadOnly    bool
	Seed        int64 // 0 なら現在時刻
}

// Generator は 負荷試験のターゲットを生成する構造体です。
type Generator struct {
	opts Options

	rnd *rand.Rand
	mu  sync.Mutex
	buf []byte
}

// NewGenerator は 指定されたパラメータに基づいて新しい Generator を作成します。
func NewGenerator(o Options) *Generator {
	if o.Keys < 1 {
		o.Keys = 1
	}
	o.ReadRatio = clamp(o.ReadRatio, 0, 1)
	o.DeleteRatio = clamp(o.DeleteRatio, 0, 1)
	o.TTLRatio = clamp(o.TTLRatio, 0, 1)
	o.EdgeRatio = clamp(o.EdgeRatio, 0, 1)
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		opts: o,
		rnd:  rand.New(rand.NewSource(seed)),
		buf:  make([]byte, o.ValueSize),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// edgeTTLs は境界値として送る ttl_ms です。
var edgeTTLs = []any{0, "Infinity", -100, "not number", nil, true}

func (g *Generator) ttlValue() (any, bool) {
	if g.opts.TTLms <= 0 || g.rnd.Float64() >= g.opts.TTLRatio {
		return nil, false
	}
	if g.rnd.Float64() < g.opts.EdgeRatio {
		return edgeTTLs[g.rnd.Intn(len(edgeTTLs))], true
	}
	return g.opts.TTLms, true
}

// Targeter は vegeta.Targeter インターフェースを実装し、負荷試験のターゲットを生成します。
func (g *Generator) Targeter() vegeta.Targeter {
	return func(t *vegeta.Target) error {
		g.mu.Lock()
		defer g.mu.Unlock()

		k := g.rnd.Intn(g.opts.Keys)
		url := fmt.Sprintf("%s/cache/k%06d", g.opts.BaseURL, k)

		isGet := g.opts.ReadOnly
		if !g.opts.ReadOnly && g.rnd.Float64() < g.opts.ReadRatio {
			isGet = true
		}

		if isGet {
			t.Method = "GET"
			t.URL = url
			t.Body = nil
			t.Header = nil
			return nil
		}

		if g.rnd.Float64() < g.opts.DeleteRatio {
			t.Method = "DELETE"
			t.URL = url
			t.Body = nil
			t.Header = nil
			return nil
		}

		fillRandomLetters(g.rnd, g.buf)
		bodyObj := map[string]any{
			"value": string(g.buf),
		}
		if v, ok := g.ttlValue(); ok {
			bodyObj["ttl_ms"] = v
		}
		b, err := json.Marshal(bodyObj)
		if err != nil {
			return err
		}
		t.Method = "PUT"
		t.URL = url
		t.Body = b
		if t.Header == nil {
			t.Header = make(map[string][]string, 1)
		}
		t.Header["Content-Type"] = []string{"application/json"}
		return nil
	}
}

func fillRandomLetters(r *rand.Rand, buf []byte) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	for i := range buf {
		buf[i] = letters[r.Intn(len(letters))]
	}
}
