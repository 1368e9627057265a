package store

type entry struct {
	val      []byte
	expireAt int64 // 0 = no expiry (UnixNano)
}

func (e entry) expired(now int64) bool {
	return e.expireAt > 0 && e.expireAt <= now
}
