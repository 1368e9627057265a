package cache

import (
	"errors"
	"fmt"
)

// ErrNoBackend はバックエンドが指定されていないことを表します。
var ErrNoBackend = errors.New("cache: backend is required")

// StoreError は操作の内部で吸収されたストアのエラーです。
type StoreError struct {
	Op  string // get | put | del | clear | decode
	Key string
	Err error
}

func (e StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }
