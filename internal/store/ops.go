package store

import "time"

// Set はキーと値を期限なしでストアにセットします。
func (s *Store) Set(key string, value []byte) {
	s.SetWithTTL(key, value, 0)
}

// SetWithTTL はキーと値をストアにセットします。ttl が 0 以下なら期限なしです。
func (s *Store) SetWithTTL(key string, value []byte, ttl time.Duration) {
	var exp int64
	if ttl > 0 {
		exp = s.clock.Now().Add(ttl).UnixNano()
	}
	v := append([]byte(nil), value...)

	sh := s.getShard(key)
	sh.mu.Lock()
	_, existed := sh.m[key]
	sh.m[key] = entry{val: v, expireAt: exp}
	sh.mu.Unlock()

	if s.cfg.Logger != nil {
		if existed {
			s.cfg.Logger.Debug("store.update", "key", key)
		} else {
			s.cfg.Logger.Debug("store.set", "key", key, "ttl", ttl.String())
		}
	}
}

// Get はキーに対応する値を取得します。
func (s *Store) Get(key string) ([]byte, bool) {
	sh := s.getShard(key)
	sh.mu.RLock()
	e, exists := sh.m[key]
	sh.mu.RUnlock()
	if !exists {
		return nil, false
	}
	if e.expired(s.clock.Now().UnixNano()) {
		// 遅延削除
		sh.mu.Lock()
		// 期限内に他ゴルーチンが更新しているか再確認
		cur, still := sh.m[key]
		if still && cur.expireAt == e.expireAt {
			delete(sh.m, key)
		}
		sh.mu.Unlock()
		if s.cfg.Logger != nil {
			s.cfg.Logger.Debug("store.ttl.expired", "key", key)
		}
		return nil, false
	}
	return append([]byte(nil), e.val...), true
}

// Delete はキーに対応する値を削除します。
func (s *Store) Delete(key string) {
	sh := s.getShard(key)
	sh.mu.Lock()
	delete(sh.m, key)
	sh.mu.Unlock()
}

// Flush は全てのキーを削除します。
func (s *Store) Flush() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		sh.m = make(map[string]entry)
		sh.mu.Unlock()
	}
}

// Keys は match が true を返す期限内のキーを返します。match が nil なら全てのキーです。
func (s *Store) Keys(match func(key string) bool) []string {
	now := s.clock.Now().UnixNano()
	var out []string
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k, e := range sh.m {
			if e.expired(now) {
				continue
			}
			if match == nil || match(k) {
				out = append(out, k)
			}
		}
		sh.mu.RUnlock()
	}
	return out
}

// Len はストア内のアイテム数を返します。
func (s *Store) Len() int {
	now := s.clock.Now().UnixNano()
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for _, e := range sh.m {
			if !e.expired(now) {
				total++
			}
		}
		sh.mu.RUnlock()
	}
	return total
}
