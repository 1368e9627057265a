package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProm_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm("ordcache", reg)

	p.IncGetHit()
	p.IncGetMiss()
	p.IncGetMiss()
	p.IncPut("expire")
	p.IncPut("skip")
	p.IncStoreError("get")
	p.AddSequencerEvicted(3)
	p.AddSequencerEvicted(-1)
	p.SetSequencerSize(7)

	if got := testutil.ToFloat64(p.getMiss); got != 2 {
		t.Fatalf("get_miss want 2 got %v", got)
	}
	if got := testutil.ToFloat64(p.puts.WithLabelValues("skip")); got != 1 {
		t.Fatalf("put skip want 1 got %v", got)
	}
	if got := testutil.ToFloat64(p.seqEvicted); got != 3 {
		t.Fatalf("evicted want 3 got %v", got)
	}
	if got := testutil.ToFloat64(p.seqKeysGauge); got != 7 {
		t.Fatalf("keys gauge want 7 got %v", got)
	}
}

func TestSimple_PutActions(t *testing.T) {
	s := NewSimple()
	s.IncPut("skip")
	s.IncPut("no-expiry")
	s.IncPut("expire")
	s.IncPut("expire")
	if s.PutSkip.Load() != 1 || s.PutNoExpiry.Load() != 1 || s.PutExpire.Load() != 2 {
		t.Fatalf("unexpected counts skip=%d noexp=%d exp=%d", s.PutSkip.Load(), s.PutNoExpiry.Load(), s.PutExpire.Load())
	}
}
