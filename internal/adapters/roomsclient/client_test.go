package roomsclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	httpserver "hotel_rooms/internal/adapters/http_server"
	"hotel_rooms/internal/adapters/roomsclient"
	"hotel_rooms/internal/app"
	"hotel_rooms/internal/storage/jsonfile"
)

func TestClient_Room_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"roomNumber": 12})
		}
	}))
	defer ts.Close()

	cl := roomsclient.New(ts.URL, 100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.Room(ctx, 12)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.RoomNumber != 12 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Book_NotRetriedOn5xx(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl := roomsclient.New(ts.URL, 100)
	if _, err := cl.Book(context.Background(), 1, "2025-01-01", "2025-01-02"); err == nil {
		t.Fatalf("expected error for 500")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("write must not be retried on 500, got %d calls", n)
	}
}

func TestClient_ProblemMapsToSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Not Found","status":404,"detail":"Room not found."}`))
	}))
	defer ts.Close()

	cl := roomsclient.New(ts.URL, 100)
	_, err := cl.Room(context.Background(), 1)
	var p *roomsclient.ProblemError
	if !errors.Is(err, roomsclient.ErrNotFound) || !errors.As(err, &p) || p.Detail != "Room not found." {
		t.Fatalf("unexpected err: %v", err)
	}
}

// Runs the client against the real router backed by a file store.
func TestClient_EndToEnd(t *testing.T) {
	store := jsonfile.New(filepath.Join(t.TempDir(), "rooms.json"))
	inv := app.NewInventory(app.LoadRooms(context.Background(), store), store)
	s := httpserver.New(httpserver.Options{Timeout: 5 * time.Second})
	s.MountHandlers(&httpserver.Handlers{Inv: inv, Sessions: app.NewSessions(inv)})
	ts := httptest.NewServer(s.Mux())
	defer ts.Close()

	cl := roomsclient.New(ts.URL, 100)
	ctx := context.Background()

	res, err := cl.Book(ctx, 47, "2025-03-01", "2025-03-10")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if !res.Persisted || res.Booking.Days != 10 {
		t.Fatalf("unexpected booking: %+v", res)
	}
	if _, err := cl.Book(ctx, 47, "2025-03-10", "2025-03-12"); !errors.Is(err, roomsclient.ErrConflict) {
		t.Fatalf("overlap: want ErrConflict, got %v", err)
	}

	sv, err := cl.Search(ctx, roomsclient.Query{Type: "Romantic Getaway", Action: "Cancel", From: "2025-03-03", To: "2025-03-05"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if sv.Count != 1 || sv.Rooms[0].RoomNumber != 47 {
		t.Fatalf("cancel search: %+v", sv)
	}
	if _, err := cl.Search(ctx, roomsclient.Query{Number: "abc"}); !errors.Is(err, roomsclient.ErrBadRequest) {
		t.Fatalf("bad number: want ErrBadRequest, got %v", err)
	}

	if _, err := cl.Cancel(ctx, 47, "2025-03-01", "2025-03-10"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	room, err := cl.Room(ctx, 47)
	if err != nil || !room.Available {
		t.Fatalf("room after cancel: %+v %v", room, err)
	}

	// reload from disk: the store saw both commits
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, _ := again.Get(46)
	if r.Number != 47 || r.Bookings().Len() != 0 {
		t.Fatalf("stored room: %+v", r)
	}
}
