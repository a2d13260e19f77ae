package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// ValidateWindow checks a search date window before ApplyFilters runs.
// Both dates absent is valid and disables date filtering.
func ValidateWindow(from, to *time.Time) error {
	switch {
	case from == nil && to == nil:
		return nil
	case from == nil || to == nil:
		return domain.ErrBothDatesRequired
	case domain.TruncateDay(*from).After(domain.TruncateDay(*to)):
		return domain.ErrStartAfterEnd
	}
	return nil
}

// ApplyFilters narrows rooms by number, then type, then action/date window.
// The result is a new list in the source order; rooms is never modified.
func ApplyFilters(rooms *seq.List[*domain.Room], c domain.Criteria) (*seq.List[*domain.Room], error) {
	filtered := rooms.Clone()

	if c.HasRoomNumber() {
		var err error
		if filtered, err = FilterByNumber(filtered, c.NumberText); err != nil {
			return nil, err
		}
	}
	if c.ShouldFilterByType() {
		filtered = FilterByType(filtered, c.RoomType)
	}
	if c.ShouldFilterByAction() {
		filtered = FilterByDate(filtered, c.From, c.To, c.IsCancelAction())
	}
	return filtered, nil
}

func FilterByNumber(rooms *seq.List[*domain.Room], text string) (*seq.List[*domain.Room], error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return rooms, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomNumber, text)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrNonPositiveRoomNumber, n)
	}
	return rooms.Filter(func(r *domain.Room) bool { return r.Number == n }), nil
}

// FilterByType keeps rooms whose type equals roomType, ignoring case.
func FilterByType(rooms *seq.List[*domain.Room], roomType string) *seq.List[*domain.Room] {
	return rooms.Filter(func(r *domain.Room) bool { return strings.EqualFold(r.Type, roomType) })
}

// FilterByDate keeps, for cancel, rooms with at least one booking overlapping
// [from, to]; otherwise rooms with no overlapping booking. A missing or
// inverted window passes rooms through; ValidateWindow is the primary guard.
func FilterByDate(rooms *seq.List[*domain.Room], from, to *time.Time, cancel bool) *seq.List[*domain.Room] {
	if from == nil || to == nil || domain.TruncateDay(*from).After(domain.TruncateDay(*to)) {
		return rooms
	}
	return rooms.Filter(func(r *domain.Room) bool {
		for b := range r.Bookings().Values() {
			if b.Overlaps(*from, *to) {
				return cancel
			}
		}
		return !cancel
	})
}
