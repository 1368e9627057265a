package sequencer

import (
	"container/list"
	"time"
)

// table はキーごとの末尾 (最後に登録された操作の完了通知) を保持する LRU です。
// ロックは Sequencer 側で取ります。
type table struct {
	cap  int
	idle time.Duration
	ll   *list.List               // Front = 最も古い（victim）, Back = 最近使用
	idx  map[string]*list.Element // key -> *Element
}

type tableItem struct {
	key      string
	tail     <-chan struct{}
	lastUsed time.Time
}

func newTable(capacity int, idle time.Duration) *table {
	return &table{
		cap:  capacity,
		idle: idle,
		ll:   list.New(),
		idx:  make(map[string]*list.Element),
	}
}

func (t *table) len() int { return t.ll.Len() }

func (t *table) expired(it *tableItem, now time.Time) bool {
	return now.Sub(it.lastUsed) > t.idle
}

// get は key の末尾を返し、参照時刻を更新します。
// アイドル期限切れのエントリは削除され、expired=true を返します。
func (t *table) get(key string, now time.Time) (tail <-chan struct{}, expired bool) {
	el, ok := t.idx[key]
	if !ok {
		return nil, false
	}
	it := el.Value.(*tableItem)
	if t.expired(it, now) {
		t.remove(el)
		return nil, true
	}
	it.lastUsed = now
	t.ll.MoveToBack(el)
	return it.tail, false
}

// set は key の末尾を置き換えます。容量を超えた分は古い順に追い出し、その数を返します。
func (t *table) set(key string, tail <-chan struct{}, now time.Time) (evicted int) {
	if el, ok := t.idx[key]; ok {
		it := el.Value.(*tableItem)
		it.tail = tail
		it.lastUsed = now
		t.ll.MoveToBack(el)
		return 0
	}

	el := t.ll.PushBack(&tableItem{key: key, tail: tail, lastUsed: now})
	t.idx[key] = el

	for t.ll.Len() > t.cap {
		t.remove(t.ll.Front())
		evicted++
	}
	return evicted
}

// pruneIdle はアイドル期限切れのエントリを古い順に削除します。
// 参照時刻の順に並んでいるので、期限内のエントリに達した時点で止めます。
func (t *table) pruneIdle(now time.Time) (removed int) {
	for el := t.ll.Front(); el != nil; el = t.ll.Front() {
		if !t.expired(el.Value.(*tableItem), now) {
			break
		}
		t.remove(el)
		removed++
	}
	return removed
}

func (t *table) remove(el *list.Element) {
	it := el.Value.(*tableItem)
	delete(t.idx, it.key)
	t.ll.Remove(el)
}

// keys は古い順にキーを返します。テスト用です。
func (t *table) keys() []string {
	out := make([]string, 0, t.ll.Len())
	for el := t.ll.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*tableItem).key)
	}
	return out
}
