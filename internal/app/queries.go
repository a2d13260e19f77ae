package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// Inventory is the process-wide room table keyed by room number. Reads run
// under the read lock and hand out clones; Commit is the single writer.
type Inventory struct {
	mu     sync.RWMutex
	rooms  []*domain.Room
	index  map[int]int // room number -> slot in rooms
	stamp  string      // content digest, see restampLocked
	store  domain.RoomStore
	cache  domain.Cache
	events domain.EventPublisher

	cacheTTL time.Duration
}

type Option func(*Inventory)

func WithCache(c domain.Cache, ttl time.Duration) Option {
	return func(i *Inventory) { i.cache, i.cacheTTL = c, ttl }
}

func WithEvents(p domain.EventPublisher) Option {
	return func(i *Inventory) { i.events = p }
}

func NewInventory(rooms *seq.List[*domain.Room], store domain.RoomStore, opts ...Option) *Inventory {
	inv := &Inventory{
		rooms: make([]*domain.Room, 0, rooms.Len()),
		index: make(map[int]int, rooms.Len()),
		store: store,
	}
	for r := range rooms.Values() {
		if _, dup := inv.index[r.Number]; dup {
			log.Warn().Int("room", r.Number).Msg("duplicate room number ignored")
			continue
		}
		inv.index[r.Number] = len(inv.rooms)
		inv.rooms = append(inv.rooms, r)
	}
	inv.restampLocked()
	for _, o := range opts {
		o(inv)
	}
	return inv
}

// Search validates the date window and runs the filter pipeline.
func (i *Inventory) Search(ctx context.Context, c domain.Criteria) (*seq.List[*domain.Room], error) {
	if err := ValidateWindow(c.From, c.To); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	key := fmt.Sprintf("rooms:search:%s:%s", i.stamp, criteriaKey(c))
	if i.cache != nil {
		var numbers []int
		if ok, err := i.cache.Get(ctx, key, &numbers); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("search cache read failed, recomputing")
		} else if ok {
			if out, ok := i.resolveLocked(numbers); ok {
				return out, nil
			}
		}
	}

	filtered, err := ApplyFilters(seq.From(i.rooms), c)
	if err != nil {
		return nil, err
	}

	out := seq.New[*domain.Room]()
	numbers := make([]int, 0, filtered.Len())
	for r := range filtered.Values() {
		out.Append(r.Clone())
		numbers = append(numbers, r.Number)
	}
	if i.cache != nil {
		_ = i.cache.Set(ctx, key, numbers, int(i.cacheTTL.Seconds()))
	}
	return out, nil
}

// Room returns a copy of the room with the given number.
func (i *Inventory) Room(number int) (*domain.Room, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	r, ok := i.lookupLocked(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRoomNotFound, number)
	}
	return r.Clone(), nil
}

// Snapshot copies the whole collection in load order.
func (i *Inventory) Snapshot() *seq.List[*domain.Room] {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := seq.New[*domain.Room]()
	for _, r := range i.rooms {
		out.Append(r.Clone())
	}
	return out
}

func (i *Inventory) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.rooms)
}

func (i *Inventory) lookupLocked(number int) (*domain.Room, bool) {
	slot, ok := i.index[number]
	if !ok {
		return nil, false
	}
	return i.rooms[slot], true
}

func (i *Inventory) resolveLocked(numbers []int) (*seq.List[*domain.Room], bool) {
	out := seq.New[*domain.Room]()
	for _, n := range numbers {
		r, ok := i.lookupLocked(n)
		if !ok {
			return nil, false
		}
		out.Append(r.Clone())
	}
	return out, true
}

// restampLocked digests every room's number, type and bookings. Search cache
// keys carry the digest: equal inventories map to equal keys in any process.
func (i *Inventory) restampLocked() {
	h := sha1.New()
	for _, r := range i.rooms {
		fmt.Fprintf(h, "%d|%s|", r.Number, r.Type)
		for b := range r.Bookings().Values() {
			fmt.Fprintf(h, "%s:%s,", b.Start.Format(time.DateOnly), b.End.Format(time.DateOnly))
		}
		h.Write([]byte{'\n'})
	}
	i.stamp = hex.EncodeToString(h.Sum(nil))
}

func criteriaKey(c domain.Criteria) string {
	day := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return domain.TruncateDay(*t).Format(time.DateOnly)
	}
	return strings.Join([]string{
		strings.ToLower(c.RoomType),
		strings.ToLower(c.Action),
		strings.TrimSpace(c.NumberText),
		day(c.From),
		day(c.To),
	}, "|")
}
