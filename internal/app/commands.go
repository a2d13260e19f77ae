package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/adapters/observability"
	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// BeginEdit opens a working copy of the room's bookings.
func (i *Inventory) BeginEdit(number int) (*Edit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.beginEditLocked(number)
}

func (i *Inventory) beginEditLocked(number int) (*Edit, error) {
	r, ok := i.lookupLocked(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRoomNotFound, number)
	}
	return newEdit(r), nil
}

// Commit replaces the room's live bookings with the edit's working copy and
// persists the whole collection. If the room changed after BeginEdit, the
// edit's additions and removals are replayed onto the current bookings; an
// addition that now overlaps leaves the room untouched and returns
// ErrEditStale. A failed save is returned but the in-memory change stays.
func (i *Inventory) Commit(ctx context.Context, e *Edit) error {
	i.mu.Lock()
	ev, err := i.commitLocked(ctx, e)
	i.mu.Unlock()
	if ev != nil {
		i.publish(ctx, *ev)
	}
	return err
}

// Discard closes the edit without touching the room.
func (i *Inventory) Discard(e *Edit) {
	e.discard()
	observability.ObserveCommit("discarded")
}

// Book adds [start, end] to the room and commits in one step.
func (i *Inventory) Book(ctx context.Context, number int, start, end time.Time) (domain.DateRange, error) {
	i.mu.Lock()
	e, err := i.beginEditLocked(number)
	if err != nil {
		i.mu.Unlock()
		return domain.DateRange{}, err
	}
	r, err := e.Add(start, end)
	if err != nil {
		i.mu.Unlock()
		return domain.DateRange{}, err
	}
	ev, err := i.commitLocked(ctx, e)
	i.mu.Unlock()
	if ev != nil {
		i.publish(ctx, *ev)
	}
	return r, err
}

// Cancel removes the booking equal to r from the room and commits in one step.
func (i *Inventory) Cancel(ctx context.Context, number int, r domain.DateRange) error {
	i.mu.Lock()
	e, err := i.beginEditLocked(number)
	if err != nil {
		i.mu.Unlock()
		return err
	}
	if err := e.Remove(r); err != nil {
		i.mu.Unlock()
		return err
	}
	ev, err := i.commitLocked(ctx, e)
	i.mu.Unlock()
	if ev != nil {
		i.publish(ctx, *ev)
	}
	return err
}

// commitLocked must run under the write lock: save serializes every room.
func (i *Inventory) commitLocked(ctx context.Context, e *Edit) (*domain.BookingsChanged, error) {
	room, ok := i.lookupLocked(e.RoomNumber)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRoomNotFound, e.RoomNumber)
	}
	original, working, added, removed, err := e.close()
	if err != nil {
		return nil, err
	}
	if !sameBookings(original, room.Bookings()) {
		if working, err = rebase(room.Bookings(), added, removed); err != nil {
			observability.ObserveCommit("stale")
			log.Warn().Err(err).Int("room", room.Number).Msg("edit rejected, room changed since begin")
			return nil, err
		}
	}

	room.ReplaceBookings(working)
	i.restampLocked()

	saveErr := SaveRooms(ctx, i.store, seq.From(i.rooms))
	if saveErr != nil {
		observability.ObserveCommit("save_failed")
	} else {
		observability.ObserveCommit("ok")
	}
	log.Info().
		Int("room", room.Number).
		Int("added", len(added)).
		Int("removed", len(removed)).
		Bool("persisted", saveErr == nil).
		Msg("bookings committed")

	ev := &domain.BookingsChanged{
		RoomNumber:  room.Number,
		RoomType:    room.Type,
		Added:       deltas(room, added),
		Removed:     deltas(room, removed),
		Bookings:    working.Len(),
		Persisted:   saveErr == nil,
		CommittedAt: time.Now().UTC(),
	}
	return ev, saveErr
}

// rebase replays an edit's removals and additions onto the room's current
// bookings. An addition that now overlaps fails with ErrEditStale.
func rebase(live *seq.List[domain.DateRange], added, removed []domain.DateRange) (*seq.List[domain.DateRange], error) {
	out := live.Clone()
	for _, r := range removed {
		// already gone is fine: the outcome the edit asked for holds
		out.RemoveFirstFunc(r.Equal)
	}
	for _, r := range added {
		for b := range out.Values() {
			if b.Overlaps(r.Start, r.End) {
				return nil, fmt.Errorf("%w: %w: %s", domain.ErrEditStale, domain.ErrBookingOverlap, r)
			}
		}
		out.Append(r)
	}
	return out, nil
}

func sameBookings(a, b *seq.List[domain.DateRange]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, r := range a.All() {
		o, _ := b.Get(i)
		if !r.Equal(o) {
			return false
		}
	}
	return true
}

func (i *Inventory) publish(ctx context.Context, ev domain.BookingsChanged) {
	if i.events == nil {
		return
	}
	if err := i.events.PublishBookingsChanged(ctx, ev); err != nil {
		log.Warn().Err(err).Int("room", ev.RoomNumber).Msg("publish bookings changed failed")
	}
}

func deltas(room *domain.Room, rs []domain.DateRange) []domain.BookingDelta {
	out := make([]domain.BookingDelta, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.BookingDelta{
			StartDate: r.Start.Format(time.DateOnly),
			EndDate:   r.End.Format(time.DateOnly),
			Total:     room.Quote(r),
		})
	}
	return out
}
