package ttl

import (
	"math"
	"time"
)

// Action はストアへ発行する書き込みの種類です。
type Action uint8

const (
	// Skip は値を書き込みません。
	Skip Action = iota
	// NoExpiry は期限なしで書き込みます。
	NoExpiry
	// Expire はミリ秒の期限付きで書き込みます。
	Expire
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case NoExpiry:
		return "no-expiry"
	case Expire:
		return "expire"
	default:
		return "unknown"
	}
}

// Decision は TTL を解決した結果です。Expiry は Action が Expire のときのみ有効です。
type Decision struct {
	Action Action
	Expiry time.Duration
}

func (d Decision) String() string {
	if d.Action == Expire {
		return "expire=" + d.Expiry.String()
	}
	return d.Action.String()
}

const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// Resolve は要求された TTL と既定 TTL から書き込み指示を決定します。
// 判定は 0 → Skip, +Inf → NoExpiry, 有限の正数 → Expire の順で行い、
// それ以外は既定 TTL に一度だけ同じ表を適用します。既定 TTL も不正なら DefaultMillis を使います。
func Resolve(requested, def TTL) Decision {
	if d, ok := decide(requested); ok {
		return d
	}
	if d, ok := decide(def); ok {
		return d
	}
	return expireAfter(DefaultMillis)
}

func decide(t TTL) (Decision, bool) {
	if t.kind != kindNumber {
		return Decision{}, false
	}
	switch {
	case t.ms == 0:
		return Decision{Action: Skip}, true
	case math.IsInf(t.ms, 1):
		return Decision{Action: NoExpiry}, true
	case t.ms > 0: // NaN は比較が常に false
		return expireAfter(t.ms), true
	}
	return Decision{}, false
}

// expireAfter はミリ秒を切り上げて Expire にします。Duration に収まらない値は期限なし扱いです。
func expireAfter(ms float64) Decision {
	ms = math.Ceil(ms)
	if ms >= maxMillis {
		return Decision{Action: NoExpiry}
	}
	return Decision{Action: Expire, Expiry: time.Duration(ms) * time.Millisecond}
}
