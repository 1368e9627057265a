package backend

import (
	"fmt"

	"github.com/gobwas/glob"
)

// compilePattern は Redis の KEYS と同じ glob 形式のパターンを照合関数に変換します。
// 空のパターンは全てのキーに一致します。
func compilePattern(pattern string) (func(string) bool, error) {
	if pattern == "" || pattern == "*" {
		return func(string) bool { return true }, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, err)
	}
	return g.Match, nil
}
