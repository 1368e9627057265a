// Package codec はキャッシュ値とバイト列の変換方式を提供します。
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v4"
)

// Codec は値のエンコードとデコードを行います。
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON は encoding/json による Codec です。既定の形式です。
type JSON struct{}

func (JSON) Name() string                       { return "json" }
func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// MsgPack は MessagePack による Codec です。
type MsgPack struct{}

func (MsgPack) Name() string                       { return "msgpack" }
func (MsgPack) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (MsgPack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// ByName は名前から Codec を返します。空文字は JSON です。
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
