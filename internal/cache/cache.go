package cache

import (
	"sync"
	"time"
)

// Slot is a single mutable cache entry holding a computed payload and the
// time it was produced. It sits in front of the rate-limited live fetch
// chain and is shared across concurrent read requests.
//
// Concurrent readers may race to refresh an expired slot; the last successful
// write wins. That only costs duplicate fetches, since every write is an
// idempotent full replacement.
type Slot struct {
	mu       sync.RWMutex
	payload  []byte
	lastSync time.Time

	ttl time.Duration
	now func() time.Time
}

// NewSlot creates a cache slot with the given TTL.
func NewSlot(ttl time.Duration) *Slot {
	return &Slot{ttl: ttl, now: time.Now}
}

// Get returns the cached payload if it is still fresh; otherwise it runs
// fetch and overwrites the slot on success. A fetch failure leaves the
// previous payload in place: stale-but-available beats an error.
func (s *Slot) Get(fetch func() ([]byte, error)) ([]byte, error) {
	s.mu.RLock()
	payload, fresh := s.payload, s.payload != nil && s.now().Sub(s.lastSync) < s.ttl
	s.mu.RUnlock()

	if fresh {
		return payload, nil
	}

	fetched, err := fetch()
	if err != nil {
		if payload != nil {
			return payload, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.payload = fetched
	s.lastSync = s.now()
	s.mu.Unlock()
	return fetched, nil
}

// LastSync reports when the slot was last successfully refreshed.
func (s *Slot) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}
