// Package jsonfile stores the room collection as a JSON array in one file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// roomRecord is the on-disk shape of a room. Derived values (taxed price,
// availability) are never written.
type roomRecord struct {
	RoomType    string        `json:"roomType"`
	RoomNumber  int           `json:"roomNumber"`
	Includes    []string      `json:"includes"`
	Price       int           `json:"price"`
	ImageName   string        `json:"imageName"`
	BookedDates []rangeRecord `json:"bookedDates"`
}

type rangeRecord struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Store struct{ path string }

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

func (s *Store) Load(ctx context.Context) (*seq.List[*domain.Room], error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrStoreEmpty, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrPersistenceRead, s.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrStoreEmpty, s.path)
	}

	var recs []roomRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrPersistenceRead, s.path, err)
	}
	rooms := seq.New[*domain.Room]()
	for _, rec := range recs {
		r, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrPersistenceRead, s.path, err)
		}
		rooms.Append(r)
	}
	return rooms, nil
}

// Save overwrites the file via a temp file and rename so a failed write never
// truncates the previous content.
func (s *Store) Save(ctx context.Context, rooms *seq.List[*domain.Room]) error {
	recs := make([]roomRecord, 0, rooms.Len())
	for r := range rooms.Values() {
		recs = append(recs, toRecord(r))
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrPersistenceWrite, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %w", domain.ErrPersistenceWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".rooms-*.json")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", domain.ErrPersistenceWrite, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrPersistenceWrite, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", domain.ErrPersistenceWrite, s.path, err)
	}
	return nil
}

func toRecord(r *domain.Room) roomRecord {
	rec := roomRecord{
		RoomType:    r.Type,
		RoomNumber:  r.Number,
		Includes:    r.Includes,
		Price:       r.Price,
		ImageName:   r.ImageName,
		BookedDates: make([]rangeRecord, 0, r.Bookings().Len()),
	}
	if rec.Includes == nil {
		rec.Includes = []string{}
	}
	for d := range r.Bookings().Values() {
		rec.BookedDates = append(rec.BookedDates, rangeRecord{StartDate: d.Start, EndDate: d.End})
	}
	return rec
}

func fromRecord(rec roomRecord) (*domain.Room, error) {
	r := domain.NewRoom(rec.RoomNumber, rec.RoomType, rec.Includes, rec.Price, rec.ImageName)
	for _, d := range rec.BookedDates {
		dr, err := domain.NewDateRange(d.StartDate, d.EndDate)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", rec.RoomNumber, err)
		}
		r.AddBooking(dr)
	}
	return r, nil
}
