package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the backend of the response cache
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	body    []byte
	expires time.Time
}

func (e entry) live(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// MemoryStore keeps serialized responses in process memory.
// When full, the entry closest to expiry makes room for the new one.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewMemoryStore returns a store holding at most maxEntries responses
// (0 means unbounded). Expired entries are swept every sweepEvery, if positive.
func NewMemoryStore(maxEntries int, sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
		done:       make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.live(s.now()) {
		return nil, false, nil
	}
	return e.body, true, nil
}

// Set stores value under key. A non-positive ttl never expires.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := entry{body: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}

	if _, replacing := s.entries[key]; !replacing && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.makeRoom(now)
	}
	s.entries[key] = e
	return nil
}

// Len reports the stored entries, expired ones included until swept
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweeper
func (s *MemoryStore) Close() error {
	s.doneOnce.Do(func() { close(s.done) })
	return nil
}

// makeRoom drops expired entries, or the one expiring soonest if none are.
// Caller holds mu.
func (s *MemoryStore) makeRoom(now time.Time) {
	if s.dropExpired(now) > 0 {
		return
	}

	var victim string
	var soonest time.Time
	for k, e := range s.entries {
		if e.expires.IsZero() {
			continue
		}
		if victim == "" || e.expires.Before(soonest) {
			victim, soonest = k, e.expires
		}
	}
	if victim == "" {
		for k := range s.entries {
			victim = k
			break
		}
	}
	delete(s.entries, victim)
}

// dropExpired removes expired entries. Caller holds mu.
func (s *MemoryStore) dropExpired(now time.Time) int {
	dropped := 0
	for k, e := range s.entries {
		if !e.live(now) {
			delete(s.entries, k)
			dropped++
		}
	}
	return dropped
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.dropExpired(s.now())
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}
