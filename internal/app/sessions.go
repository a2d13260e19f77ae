package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/domain"
)

const DefaultSessionTTL = 15 * time.Minute

// Sessions keeps open edits addressable by id for remote callers. A session
// idle for longer than the TTL is discarded.
type Sessions struct {
	inv *Inventory
	ttl time.Duration

	mu    sync.Mutex
	edits map[uuid.UUID]*session
}

type session struct {
	edit     *Edit
	lastUsed time.Time
}

func NewSessions(inv *Inventory) *Sessions {
	return NewSessionsTTL(inv, DefaultSessionTTL)
}

// NewSessionsTTL is NewSessions with an explicit idle timeout; ttl <= 0 uses the default.
func NewSessionsTTL(inv *Inventory, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{inv: inv, ttl: ttl, edits: map[uuid.UUID]*session{}}
}

func (s *Sessions) Begin(number int) (uuid.UUID, *Edit, error) {
	e, err := s.inv.BeginEdit(number)
	if err != nil {
		return uuid.Nil, nil, err
	}
	id := uuid.New()
	s.mu.Lock()
	s.edits[id] = &session{edit: e, lastUsed: time.Now()}
	s.mu.Unlock()
	return id, e, nil
}

// Get returns the open edit and refreshes its idle timer.
func (s *Sessions) Get(id uuid.UUID) (*Edit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.liveLocked(id, time.Now())
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEditNotFound, id)
	}
	ss.lastUsed = time.Now()
	return ss.edit, nil
}

// Commit applies and forgets the session. A persistence failure is returned
// after the bookings have been applied.
func (s *Sessions) Commit(ctx context.Context, id uuid.UUID) error {
	e, err := s.take(id)
	if err != nil {
		return err
	}
	return s.inv.Commit(ctx, e)
}

func (s *Sessions) Discard(id uuid.UUID) error {
	e, err := s.take(id)
	if err != nil {
		return err
	}
	s.inv.Discard(e)
	return nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edits)
}

// Sweep discards every session idle since before now-ttl and returns how many.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*Edit
	for id, ss := range s.edits {
		if now.Sub(ss.lastUsed) > s.ttl {
			expired = append(expired, ss.edit)
			delete(s.edits, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		s.inv.Discard(e)
	}
	if len(expired) > 0 {
		log.Info().Int("expired", len(expired)).Msg("idle edit sessions discarded")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}

func (s *Sessions) take(id uuid.UUID) (*Edit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.liveLocked(id, time.Now())
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEditNotFound, id)
	}
	delete(s.edits, id)
	return ss.edit, nil
}

// liveLocked finds an unexpired session. An expired one is left for Sweep.
func (s *Sessions) liveLocked(id uuid.UUID, now time.Time) (*session, bool) {
	ss, ok := s.edits[id]
	if !ok || now.Sub(ss.lastUsed) > s.ttl {
		return nil, false
	}
	return ss, true
}
