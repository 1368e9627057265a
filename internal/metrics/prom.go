package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prom は Prometheus を使ったメトリクス実装です。
type Prom struct {
	getHit       prometheus.Counter
	getMiss      prometheus.Counter
	puts         *prometheus.CounterVec
	deletes      prometheus.Counter
	clears       prometheus.Counter
	storeErrors  *prometheus.CounterVec
	seqEvicted   prometheus.Counter
	seqExpired   prometheus.Counter
	seqKeysGauge prometheus.Gauge
}

// NewProm は Prometheus を使ったメトリクス実装を初期化し、reg に登録します。
// reg が nil の場合は prometheus.DefaultRegisterer を使います。
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	makeC := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}
	makeG := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	p := &Prom{
		getHit:  makeC("get_hit_total", "Number of cache hits"),
		getMiss: makeC("get_miss_total", "Number of cache misses (including absorbed store errors)"),
		puts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "put_total",
			Help:      "Number of puts by resolved TTL action",
		}, []string{"action"}),
		deletes: makeC("delete_total", "Number of deletes"),
		clears:  makeC("clear_total", "Number of clears"),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Number of backing store errors absorbed by the adapter",
		}, []string{"op"}),
		seqEvicted:   makeC("sequencer_evicted_total", "Number of keys evicted from the sequencer table by LRU"),
		seqExpired:   makeC("sequencer_expired_total", "Number of idle keys expired from the sequencer table"),
		seqKeysGauge: makeG("sequencer_keys", "Current number of keys tracked by the sequencer"),
	}

	reg.MustRegister(
		p.getHit, p.getMiss, p.puts, p.deletes, p.clears, p.storeErrors,
		p.seqEvicted, p.seqExpired, p.seqKeysGauge,
	)
	return p
}

// IncGetHit はキャッシュヒットをカウントします。
func (p *Prom) IncGetHit() { p.getHit.Inc() }

// IncGetMiss はキャッシュミスをカウントします。
func (p *Prom) IncGetMiss() { p.getMiss.Inc() }

// IncPut は put を TTL の種類ごとにカウントします。
func (p *Prom) IncPut(action string) { p.puts.WithLabelValues(action).Inc() }

// IncDelete は削除をカウントします。
func (p *Prom) IncDelete() { p.deletes.Inc() }

// IncClear は全削除をカウントします。
func (p *Prom) IncClear() { p.clears.Inc() }

// IncStoreError は吸収したストアエラーを操作ごとにカウントします。
func (p *Prom) IncStoreError(op string) { p.storeErrors.WithLabelValues(op).Inc() }

// AddSequencerEvicted は LRU で追い出されたキー数を加算します。
func (p *Prom) AddSequencerEvicted(n int) {
	if n > 0 {
		p.seqEvicted.Add(float64(n))
	}
}

// AddSequencerExpired はアイドル期限切れのキー数を加算します。
func (p *Prom) AddSequencerExpired(n int) {
	if n > 0 {
		p.seqExpired.Add(float64(n))
	}
}

// SetSequencerSize は追跡中のキー数を設定します。
func (p *Prom) SetSequencerSize(n int) {
	if n >= 0 {
		p.seqKeysGauge.Set(float64(n))
	}
}
