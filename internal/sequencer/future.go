package sequencer

import "context"

// Future は Submit で登録した操作の結果です。
type Future[T any] struct {
	done <-chan struct{}
	val  T
}

// Submit は key の末尾に op を登録し、その結果を受け取る Future を返します。
// op が panic した場合、結果は T のゼロ値になります。
func Submit[T any](s *Sequencer, key string, op func() T) *Future[T] {
	f := &Future[T]{}
	f.done = s.Do(key, func() { f.val = op() })
	return f
}

// Resolved は既に完了した Future を返します。
func Resolved[T any](v T) *Future[T] {
	ch := make(chan struct{})
	close(ch)
	return &Future[T]{done: ch, val: v}
}

// Done は操作の完了時に閉じられるチャネルを返します。
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait は操作の完了を待って結果を返します。
// ctx が先に終了した場合は ctx のエラーを返しますが、操作自体は継続します。
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Value は操作の完了を待って結果を返します。
func (f *Future[T]) Value() T {
	<-f.done
	return f.val
}
