package app

import (
	"sync"
	"time"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// Edit is a private working copy of one room's bookings. Changes reach the
// room only through Inventory.Commit; Inventory.Discard drops them.
type Edit struct {
	RoomNumber int

	mu       sync.Mutex
	room     *domain.Room // snapshot used for quotes
	original *seq.List[domain.DateRange]
	working  *seq.List[domain.DateRange]
	closed   bool
}

func newEdit(r *domain.Room) *Edit {
	snap := r.Clone()
	return &Edit{
		RoomNumber: r.Number,
		room:       snap,
		original:   snap.Bookings().Clone(),
		working:    snap.Bookings().Clone(),
	}
}

// Add books [start, end] on the working copy. Zero times count as missing.
func (e *Edit) Add(start, end time.Time) (domain.DateRange, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.DateRange{}, domain.ErrEditClosed
	}
	if start.IsZero() || end.IsZero() {
		return domain.DateRange{}, domain.ErrBothDatesRequired
	}
	r, err := domain.NewDateRange(start, end)
	if err != nil {
		return domain.DateRange{}, err
	}
	for b := range e.working.Values() {
		if b.Overlaps(r.Start, r.End) {
			return domain.DateRange{}, domain.ErrBookingOverlap
		}
	}
	e.working.Append(r)
	return r, nil
}

// Remove cancels the first booking equal to r.
func (e *Edit) Remove(r domain.DateRange) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEditClosed
	}
	if !e.working.RemoveFirstFunc(r.Equal) {
		return domain.ErrBookingNotFound
	}
	return nil
}

// Bookings returns the working copy in booking order.
func (e *Edit) Bookings() []domain.DateRange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working.Slice()
}

func (e *Edit) IsDateBooked(day time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for b := range e.working.Values() {
		if b.Overlaps(day, day) {
			return true
		}
	}
	return false
}

func (e *Edit) Quote(r domain.DateRange) int { return e.room.Quote(r) }

func (e *Edit) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// close marks the edit finished and returns the bookings it started from, its
// final working copy, and the added/removed ranges between the two.
func (e *Edit) close() (original, working *seq.List[domain.DateRange], added, removed []domain.DateRange, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, nil, nil, nil, domain.ErrEditClosed
	}
	e.closed = true
	added = difference(e.working, e.original)
	removed = difference(e.original, e.working)
	return e.original.Clone(), e.working.Clone(), added, removed, nil
}

func (e *Edit) discard() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// difference returns the ranges of a not matched by a range of b, counting duplicates.
func difference(a, b *seq.List[domain.DateRange]) []domain.DateRange {
	rest := b.Clone()
	var out []domain.DateRange
	for r := range a.Values() {
		if !rest.RemoveFirstFunc(r.Equal) {
			out = append(out, r)
		}
	}
	return out
}
