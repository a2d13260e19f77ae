package domain

import (
	"context"
	"time"

	"hotel_rooms/internal/seq"
)

type RoomStore interface {
	// Load returns ErrStoreEmpty when the store is absent or holds nothing,
	// and an error wrapping ErrPersistenceRead when it cannot be decoded.
	Load(ctx context.Context) (*seq.List[*Room], error)
	// Save overwrites the store with the full collection.
	Save(ctx context.Context, rooms *seq.List[*Room]) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishBookingsChanged(ctx context.Context, ev BookingsChanged) error
}

// BookingsChanged is emitted after a room's booking list is committed.
type BookingsChanged struct {
	RoomNumber  int            `json:"room_number"`
	RoomType    string         `json:"room_type"`
	Added       []BookingDelta `json:"added"`
	Removed     []BookingDelta `json:"removed"`
	Bookings    int            `json:"bookings"`
	Persisted   bool           `json:"persisted"`
	CommittedAt time.Time      `json:"committed_at"`
}

type BookingDelta struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Total     int    `json:"total"`
}
