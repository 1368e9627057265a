package metrics

import (
	"sync/atomic"
)

// Interface はメトリクス更新用抽象
type Interface interface {
	IncGetHit()
	IncGetMiss()
	IncPut(action string)
	IncDelete()
	IncClear()
	IncStoreError(op string)
	AddSequencerEvicted(n int)
	AddSequencerExpired(n int)
	SetSequencerSize(n int)
}

// Noop は何もしないメトリクス実装
type Noop struct{}

// IncGetHit は何もしないメトリクス実装
func (Noop) IncGetHit() {}

// IncGetMiss は何もしないメトリクス実装
func (Noop) IncGetMiss() {}

// IncPut は何もしないメトリクス実装
func (Noop) IncPut(_ string) {}

// IncDelete は何もしないメトリクス実装
func (Noop) IncDelete() {}

// IncClear は何もしないメトリクス実装
func (Noop) IncClear() {}

// IncStoreError は何もしないメトリクス実装
func (Noop) IncStoreError(_ string) {}

// AddSequencerEvicted は何もしないメトリクス実装
func (Noop) AddSequencerEvicted(_ int) {}

// AddSequencerExpired は何もしないメトリクス実装
func (Noop) AddSequencerExpired(_ int) {}

// SetSequencerSize は何もしないメトリクス実装
func (Noop) SetSequencerSize(_ int) {}

// Simple はシンプルなメトリクス実装です。
type Simple struct {
	GetHit           atomic.Uint64
	GetMiss          atomic.Uint64
	PutSkip          atomic.Uint64
	PutNoExpiry      atomic.Uint64
	PutExpire        atomic.Uint64
	Delete           atomic.Uint64
	Clear            atomic.Uint64
	StoreErrors      atomic.Uint64
	SequencerEvicted atomic.Uint64
	SequencerExpired atomic.Uint64
	SequencerSize    atomic.Uint64
}

// NewSimple は新しい Simple メトリクスを作成します。
func NewSimple() *Simple { return &Simple{} }

// IncGetHit はキャッシュヒットをカウントします。
func (m *Simple) IncGetHit() { m.GetHit.Add(1) }

// IncGetMiss はキャッシュミスをカウントします。
func (m *Simple) IncGetMiss() { m.GetMiss.Add(1) }

// IncPut は解決された TTL の種類ごとに put をカウントします。
func (m *Simple) IncPut(action string) {
	switch action {
	case "skip":
		m.PutSkip.Add(1)
	case "no-expiry":
		m.PutNoExpiry.Add(1)
	default:
		m.PutExpire.Add(1)
	}
}

// IncDelete は削除をカウントします。
func (m *Simple) IncDelete() { m.Delete.Add(1) }

// IncClear は全削除をカウントします。
func (m *Simple) IncClear() { m.Clear.Add(1) }

// IncStoreError は吸収したストアエラーをカウントします。
func (m *Simple) IncStoreError(_ string) { m.StoreErrors.Add(1) }

// AddSequencerEvicted は LRU で追い出されたキー数を加算します。
func (m *Simple) AddSequencerEvicted(n int) {
	if n > 0 {
		m.SequencerEvicted.Add(uint64(n))
	}
}

// AddSequencerExpired はアイドル期限切れで削除されたキー数を加算します。
func (m *Simple) AddSequencerExpired(n int) {
	if n > 0 {
		m.SequencerExpired.Add(uint64(n))
	}
}

// SetSequencerSize は追跡中のキー数を設定します。
func (m *Simple) SetSequencerSize(n int) {
	if n >= 0 {
		m.SequencerSize.Store(uint64(n))
	}
}
