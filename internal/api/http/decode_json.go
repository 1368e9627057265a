package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// DefaultMaxBodyBytes は PUT /cache/{key} のボディ上限の既定値です。
const DefaultMaxBodyBytes int64 = 1 << 20

// DecodeJSON はリクエストボディの JSON を 1 つだけ dst にデコードします。
// ボディが maxBytes を超えた場合は 413 の AppError を返します。未知のフィールドは拒否します。
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	if r.Body == nil || r.Body == http.NoBody {
		return InvalidJSON("empty body")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer func() {
		_ = body.Close()
	}()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	// 余分なトークンがないか確認(多重JSON防止)
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return decodeError(err)
		}
		return InvalidJSON("multiple JSON values")
	}
	return nil
}

func decodeError(err error) error {
	var (
		se  *json.SyntaxError
		ute *json.UnmarshalTypeError
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &mbe):
		return PayloadTooLarge("request body too large")
	case errors.Is(err, io.EOF):
		return InvalidJSON("empty body")
	case errors.As(err, &se):
		return InvalidJSON("malformed JSON")
	case errors.As(err, &ute):
		return InvalidJSON("type mismatch in JSON")
	default:
		return InvalidJSON("invalid JSON")
	}
}
