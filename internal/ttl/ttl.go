// Package ttl は put 時に指定された TTL をストアへの具体的な書き込み指示へ正規化します。
package ttl

import (
	"math"
	"reflect"
	"strconv"
	"time"
)

// DefaultMillis は既定 TTL が不正な場合に使われる値 (ミリ秒) です。
const DefaultMillis = 30_000

type kind uint8

const (
	kindNaN kind = iota // 数値ではない (未指定含む)
	kindNumber
)

// TTL は呼び出し側から渡された生の TTL 値です。
// ゼロ値は「未指定」を表し、既定 TTL にフォールバックします。
type TTL struct {
	kind kind
	ms   float64
}

// Unset は未指定の TTL を返します。
func Unset() TTL { return TTL{} }

// Millis はミリ秒単位の数値 TTL を返します。NaN や負値もそのまま保持します。
func Millis(ms float64) TTL { return TTL{kind: kindNumber, ms: ms} }

// Duration は time.Duration から TTL を作成します。
func Duration(d time.Duration) TTL {
	return Millis(float64(d) / float64(time.Millisecond))
}

// Forever は期限なしを表す TTL (+Inf) を返します。
func Forever() TTL { return Millis(math.Inf(1)) }

// FromAny は型の緩い入力から TTL を作成します。
// 数値型のみ Number として扱い、文字列などは変換せず NotANumber とします。
func FromAny(v any) TTL {
	switch x := v.(type) {
	case nil:
		return Unset()
	case TTL:
		return x
	case time.Duration:
		return Duration(x)
	case float64:
		return Millis(x)
	case float32:
		return Millis(float64(x))
	case int:
		return Millis(float64(x))
	case int64:
		return Millis(float64(x))
	case int32:
		return Millis(float64(x))
	case uint:
		return Millis(float64(x))
	case uint64:
		return Millis(float64(x))
	case uint32:
		return Millis(float64(x))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Millis(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Millis(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Millis(rv.Float())
	}
	return Unset()
}

// IsNumber は TTL が数値として指定されているかを返します。
func (t TTL) IsNumber() bool { return t.kind == kindNumber }

// Value は数値 TTL のミリ秒値を返します。数値でない場合は NaN です。
func (t TTL) Value() float64 {
	if t.kind != kindNumber {
		return math.NaN()
	}
	return t.ms
}

func (t TTL) String() string {
	if t.kind != kindNumber {
		return "unset"
	}
	return strconv.FormatFloat(t.ms, 'g', -1, 64) + "ms"
}

// valid は TTL が正の数値かどうかを返します (+Inf を含む)。
func (t TTL) valid() bool {
	return t.kind == kindNumber && t.ms > 0
}

// NormalizeDefault は構築時の既定 TTL を正規化します。
// 正の数値以外 (0 を含む) は DefaultMillis になります。
func NormalizeDefault(ms float64) TTL {
	t := Millis(ms)
	if !t.valid() {
		return Millis(DefaultMillis)
	}
	return t
}
