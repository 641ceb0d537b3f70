package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("seat selection session not found")

// SeatSession is the persisted state of one seat-selection flow. The seat map
// itself is never stored; it is rebuilt from TotalSeats on every request.
type SeatSession struct {
	ID             string    `json:"session_id"`
	FlightID       uint64    `json:"flight_id"`
	TotalSeats     int       `json:"total_seats"`
	PassengerCount int       `json:"passenger_count"`
	Selected       []string  `json:"selected"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionStore persists seat sessions. Update applies fn atomically with
// respect to other updates of the same id.
type SessionStore interface {
	Create(ctx context.Context, s *SeatSession) error
	Get(ctx context.Context, id string) (*SeatSession, error)
	Update(ctx context.Context, id string, fn func(*SeatSession) error) (*SeatSession, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions as JSON strings with a sliding TTL.
type RedisSessionStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSessionStore returns a store using rdb. Every write refreshes ttl.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl, prefix: "fsb:seatsel:"}
}

func (r *RedisSessionStore) key(id string) string { return r.prefix + id }

func (r *RedisSessionStore) Create(ctx context.Context, s *SeatSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, r.key(s.ID), b, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("seat session %s already exists", s.ID)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*SeatSession, error) {
	return r.get(ctx, r.rdb, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisSessionStore) get(ctx context.Context, g getter, id string) (*SeatSession, error) {
	b, err := g.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s SeatSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode seat session: %w", err)
	}
	return &s, nil
}

// maxTxRetries bounds optimistic-lock retries when concurrent toggles race.
const maxTxRetries = 5

// Update runs fn under WATCH so a concurrent writer forces a retry instead
// of a lost update.
func (r *RedisSessionStore) Update(ctx context.Context, id string, fn func(*SeatSession) error) (*SeatSession, error) {
	key := r.key(id)
	var out *SeatSession
	txf := func(tx *redis.Tx) error {
		s, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		b, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			return nil
		})
		if err == nil {
			out = s
		}
		return err
	}
	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("seat session %s: too much contention", id)
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, r.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// MemorySessionStore is the fallback used when Redis is unavailable. Expired
// sessions are dropped lazily on access.
type MemorySessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memEntry
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemorySessionStore returns an empty in-process store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, now: time.Now, sessions: map[string]memEntry{}}
}

func (m *MemorySessionStore) Create(_ context.Context, s *SeatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.load(s.ID); ok {
		return fmt.Errorf("seat session %s already exists", s.ID)
	}
	return m.store(s)
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*SeatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) Update(_ context.Context, id string, fn func(*SeatSession) error) (*SeatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.store(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.load(id); !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// load decodes a copy so callers never share state with the map.
func (m *MemorySessionStore) load(id string) (*SeatSession, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return nil, false
	}
	var s SeatSession
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (m *MemorySessionStore) store(s *SeatSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.sessions[s.ID] = memEntry{data: b, expires: m.now().Add(m.ttl)}
	return nil
}
