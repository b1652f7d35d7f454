package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL.
// Used for rendered chart images.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool)
	SetBytes(key string, value []byte, ttl time.Duration)
}
