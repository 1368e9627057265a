package store

func (s *Store) cleanupLoop() {
	defer s.wg.Done()
	t := s.clock.NewTicker(s.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.Chan():
			s.scanExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) scanExpired() int {
	now := s.clock.Now().UnixNano()
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		removed := 0
		sh.mu.Lock()
		for k, e := range sh.m {
			if e.expired(now) {
				delete(sh.m, k)
				removed++
			}
		}
		sh.mu.Unlock()
		if removed > 0 {
			total += removed
			if s.cfg.Logger != nil {
				s.cfg.Logger.Info("store.ttl.cleanup", "shard", i, "removed", removed)
			}
		}
	}
	return total
}
