// Package sequencer はキーごとに操作を直列化します。
//
// 同じキーの操作は登録順に 1 つずつ実行され、異なるキーの操作は並行に実行されます。
// 後続の操作は先行操作の成否ではなく完了を待ちます。
// キーごとの末尾は容量付き LRU とアイドル期限で管理され、追い出されたキーの
// 次の操作は新しいチェーンを始めます (実行中の操作は取り消されません)。
package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/amakane-hakari/ordcache/internal/metrics"
)

// Sequencer はキーごとの操作キューです。
type Sequencer struct {
	cfg   Config
	clock clockwork.Clock

	mu      sync.Mutex
	tbl     *table
	pending int           // 未完了の操作数
	idleCh  chan struct{} // pending が 0 になったときに閉じられる

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New は新しい Sequencer を作成します。
func New(opts ...Option) *Sequencer {
	cfg := Config{CleanupInterval: -1}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.CleanupInterval < 0 {
		cfg.CleanupInterval = cfg.IdleTimeout / 2
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop{}
	}

	s := &Sequencer{
		cfg:    cfg,
		clock:  cfg.Clock,
		tbl:    newTable(cfg.MaxEntries, cfg.IdleTimeout),
		stopCh: make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		s.wg.Add(1)
		go s.cleanupLoop()
	}
	return s
}

// Do は key の末尾に op を登録し、op が完了したときに閉じられるチャネルを返します。
// op は同じ key に先に登録された全ての操作が完了してから実行されます。
// op が panic しても完了として扱われ、後続の操作は実行されます。
func (s *Sequencer) Do(key string, op func()) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	now := s.clock.Now()
	prev, expired := s.tbl.get(key, now)
	evicted := s.tbl.set(key, done, now)
	size := s.tbl.len()
	if s.pending == 0 {
		s.idleCh = make(chan struct{})
	}
	s.pending++
	s.cfg.Metrics.SetSequencerSize(size)
	s.mu.Unlock()

	if expired {
		s.cfg.Metrics.AddSequencerExpired(1)
	}
	if evicted > 0 {
		s.cfg.Metrics.AddSequencerEvicted(evicted)
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("sequencer.evict", "count", evicted, "size", size)
		}
	}

	go s.run(key, prev, op, done)
	return done
}

func (s *Sequencer) run(key string, prev <-chan struct{}, op func(), done chan struct{}) {
	defer s.settle()
	defer close(done)
	if prev != nil {
		<-prev
	}
	defer func() {
		if rec := recover(); rec != nil && s.cfg.Logger != nil {
			s.cfg.Logger.Error("sequencer.op.panic", "key", key, "panic", rec)
		}
	}()
	op()
}

func (s *Sequencer) settle() {
	s.mu.Lock()
	s.pending--
	if s.pending == 0 {
		close(s.idleCh)
	}
	s.mu.Unlock()
}

// Len は現在追跡しているキー数を返します。
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tbl.len()
}

// Wait は登録済みの全ての操作が完了するか ctx が終了するまで待ちます。
// 待機中に登録された操作も、未完了の操作が残っている間は待つ対象に含まれます。
func (s *Sequencer) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()
		return nil
	}
	ch := s.idleCh
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close はバックグラウンドの掃除を停止します。実行中の操作は待ちません。
func (s *Sequencer) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Sequencer) cleanupLoop() {
	defer s.wg.Done()
	t := s.clock.NewTicker(s.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.Chan():
			s.pruneIdle()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Sequencer) pruneIdle() int {
	s.mu.Lock()
	removed := s.tbl.pruneIdle(s.clock.Now())
	size := s.tbl.len()
	if removed > 0 {
		s.cfg.Metrics.SetSequencerSize(size)
	}
	s.mu.Unlock()

	if removed > 0 {
		s.cfg.Metrics.AddSequencerExpired(removed)
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("sequencer.idle.cleanup", "removed", removed, "size", size)
		}
	}
	return removed
}

// IdleTimeout は設定されたアイドル期限を返します。
func (s *Sequencer) IdleTimeout() time.Duration { return s.cfg.IdleTimeout }

// MaxEntries は設定された容量を返します。
func (s *Sequencer) MaxEntries() int { return s.cfg.MaxEntries }
