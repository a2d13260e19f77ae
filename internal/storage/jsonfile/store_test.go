package jsonfile_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
	"hotel_rooms/internal/storage/jsonfile"
)

func sampleRooms(t *testing.T) *seq.List[*domain.Room] {
	t.Helper()
	r1 := domain.NewRoom(31, domain.TypeStandardFamily, []string{"Two Queen Beds"}, 129, "standard_family.jpg")
	for _, d := range [][2]int{{10, 12}, {3, 4}} {
		dr, err := domain.NewDateRange(domain.Day(2025, time.June, d[0]), domain.Day(2025, time.June, d[1]))
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		r1.AddBooking(dr)
	}
	r2 := domain.NewRoom(66, domain.TypePenthouseSuite, []string{"One King Bed", "Jacuzzi"}, 599, "penthouse.jpg")
	return seq.From([]*domain.Room{r1, r2})
}

func TestStore_MissingAndEmptyAreEmpty(t *testing.T) {
	dir := t.TempDir()
	s := jsonfile.New(filepath.Join(dir, "rooms.json"))
	if _, err := s.Load(context.Background()); !errors.Is(err, domain.ErrStoreEmpty) {
		t.Fatalf("missing file: expected ErrStoreEmpty, got %v", err)
	}

	if err := os.WriteFile(s.Path(), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, domain.ErrStoreEmpty) {
		t.Fatalf("blank file: expected ErrStoreEmpty, got %v", err)
	}
}

func TestStore_CorruptIsReadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	if err := os.WriteFile(path, []byte(`[{"roomNumber": "oops"`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := jsonfile.New(path).Load(context.Background())
	if !errors.Is(err, domain.ErrPersistenceRead) {
		t.Fatalf("expected ErrPersistenceRead, got %v", err)
	}
}

func TestStore_InvertedRangeIsReadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	body := `[{"roomType":"Standard Single","roomNumber":1,"includes":[],"price":79,"imageName":"x",
	  "bookedDates":[{"startDate":"2025-01-05T00:00:00Z","endDate":"2025-01-01T00:00:00Z"}]}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := jsonfile.New(path).Load(context.Background()); !errors.Is(err, domain.ErrPersistenceRead) {
		t.Fatalf("expected ErrPersistenceRead, got %v", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := jsonfile.New(filepath.Join(t.TempDir(), "nested", "rooms.json"))
	in := sampleRooms(t)

	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("len %d != %d", out.Len(), in.Len())
	}
	for i, want := range in.All() {
		got, _ := out.Get(i)
		if got.Number != want.Number || got.Type != want.Type || got.Price != want.Price || got.ImageName != want.ImageName {
			t.Fatalf("room %d mismatch: %+v vs %+v", i, got, want)
		}
		wb, gb := want.Bookings().Slice(), got.Bookings().Slice()
		if len(wb) != len(gb) {
			t.Fatalf("room %d bookings: %d vs %d", want.Number, len(gb), len(wb))
		}
		for j := range wb {
			if !wb[j].Equal(gb[j]) {
				t.Fatalf("room %d booking %d: %v vs %v", want.Number, j, gb[j], wb[j])
			}
		}
	}
}

func TestStore_WireShape(t *testing.T) {
	s := jsonfile.New(filepath.Join(t.TempDir(), "rooms.json"))
	if err := s.Save(context.Background(), sampleRooms(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "\n  {") {
		t.Fatalf("expected pretty-printed output")
	}

	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"roomType", "roomNumber", "includes", "price", "imageName", "bookedDates"} {
		if _, ok := raw[0][k]; !ok {
			t.Fatalf("missing key %q in %v", k, raw[0])
		}
	}
	for _, k := range []string{"priceWithTax", "isAvailable", "available"} {
		if _, ok := raw[0][k]; ok {
			t.Fatalf("derived key %q must not be stored", k)
		}
	}
	booked := raw[0]["bookedDates"].([]any)
	first := booked[0].(map[string]any)
	if first["startDate"] != "2025-06-10T00:00:00Z" || first["endDate"] != "2025-06-12T00:00:00Z" {
		t.Fatalf("unexpected date encoding: %v", first)
	}
}

func TestStore_SaveFailure(t *testing.T) {
	// the parent "directory" is a regular file, so nothing can be created below it
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := jsonfile.New(filepath.Join(blocker, "rooms.json"))
	if err := s.Save(context.Background(), sampleRooms(t)); !errors.Is(err, domain.ErrPersistenceWrite) {
		t.Fatalf("expected ErrPersistenceWrite, got %v", err)
	}
}
