package http

import "net/http"

// HandlerFunc はエラーを返す HTTP ハンドラの型です。
// 返されたエラーは AppError に変換され、リクエスト ID を付けてエラー応答として書き出されます。
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP は http.Handler の実装です。
func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err == nil {
		return
	}
	app := *FromStdError(err)
	if rid := GetRequestID(r.Context()); rid != "" && app.Meta == nil {
		app.Meta = map[string]string{"request_id": rid}
	}
	writeError(w, &app)
}
