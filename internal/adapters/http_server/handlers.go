// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/app"
	"hotel_rooms/internal/domain"
)

type Handlers struct {
	Inv      *app.Inventory
	Sessions *app.Sessions
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type bookingRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type bookingResponse struct {
	Room      app.RoomView    `json:"room"`
	Booking   app.BookingView `json:"booking"`
	Persisted bool            `json:"persisted"`
}

type commitResponse struct {
	Room      app.RoomView `json:"room"`
	Persisted bool         `json:"persisted"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/rooms", h.searchRooms)
	s.mux.Get("/v1/rooms/{number}", h.getRoom)
	s.mux.Post("/v1/rooms/{number}/bookings", h.book)
	s.mux.Delete("/v1/rooms/{number}/bookings", h.cancel)
	s.mux.Post("/v1/rooms/{number}/edits", h.beginEdit)

	s.mux.Get("/v1/edits/{id}", h.getEdit)
	s.mux.Post("/v1/edits/{id}/bookings", h.editAdd)
	s.mux.Delete("/v1/edits/{id}/bookings", h.editRemove)
	s.mux.Post("/v1/edits/{id}/commit", h.commitEdit)
	s.mux.Delete("/v1/edits/{id}", h.discardEdit)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors to problem responses; Detail carries the user-facing text.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRoomNumber), errors.Is(err, domain.ErrNonPositiveRoomNumber),
		errors.Is(err, domain.ErrBothDatesRequired), errors.Is(err, domain.ErrStartAfterEnd),
		errors.Is(err, domain.ErrInvalidDate):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrEditNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBookingOverlap), errors.Is(err, domain.ErrEditClosed),
		errors.Is(err, domain.ErrEditStale):
		status = http.StatusConflict
	}
	msg := domain.UserMessage(err)
	if msg == "" {
		log.Error().Err(err).Msg("unhandled request error")
		msg = "unexpected error"
	}
	writeProblem(w, status, http.StatusText(status), msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// parseDay reads a YYYY-MM-DD value; empty means absent.
func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &t, nil
}

func parseWindow(from, to string) (*time.Time, *time.Time, error) {
	f, err := parseDay(from)
	if err != nil {
		return nil, nil, err
	}
	t, err := parseDay(to)
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}

func roomNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return 0, domain.ErrInvalidRoomNumber
	}
	if n <= 0 {
		return 0, domain.ErrNonPositiveRoomNumber
	}
	return n, nil
}

func (h *Handlers) searchRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseWindow(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	c := domain.Criteria{
		RoomType:   q.Get("type"),
		Action:     q.Get("action"),
		NumberText: q.Get("number"),
		From:       from,
		To:         to,
	}
	rooms, err := h.Inv.Search(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, app.MapSearch(c, rooms))
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	n, err := roomNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}
	room, err := h.Inv.Room(n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, app.MapRoom(room))
}

func decodeRange(r *http.Request) (start, end time.Time, err error) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidDate
	}
	s, e, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s != nil {
		start = *s
	}
	if e != nil {
		end = *e
	}
	return start, end, nil
}

// queryRange reads ?from=&to= as a complete, ordered range.
func queryRange(r *http.Request) (domain.DateRange, error) {
	from, to, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		return domain.DateRange{}, err
	}
	if from == nil || to == nil {
		return domain.DateRange{}, domain.ErrBothDatesRequired
	}
	return domain.NewDateRange(*from, *to)
}

func (h *Handlers) book(w http.ResponseWriter, r *http.Request) {
	n, err := roomNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := decodeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	booked, err := h.Inv.Book(r.Context(), n, start, end)
	persisted := err == nil
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		writeError(w, err)
		return
	}
	room, rerr := h.Inv.Room(n)
	if rerr != nil {
		writeError(w, rerr)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{
		Room:      app.MapRoom(room),
		Booking:   app.MapBooking(booked, room.Quote(booked)),
		Persisted: persisted,
	})
}

func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	n, err := roomNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dr, err := queryRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	err = h.Inv.Cancel(r.Context(), n, dr)
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		writeError(w, err)
		return
	}
	room, rerr := h.Inv.Room(n)
	if rerr != nil {
		writeError(w, rerr)
		return
	}
	writeJSON(w, http.StatusOK, commitResponse{Room: app.MapRoom(room), Persisted: err == nil})
}

func (h *Handlers) beginEdit(w http.ResponseWriter, r *http.Request) {
	n, err := roomNumber(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, e, err := h.Sessions.Begin(n)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/edits/"+id.String())
	writeJSON(w, http.StatusCreated, app.MapEdit(id.String(), e))
}

func (h *Handlers) edit(w http.ResponseWriter, r *http.Request) (uuid.UUID, *app.Edit, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domain.ErrEditNotFound)
		return uuid.Nil, nil, false
	}
	e, err := h.Sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return uuid.Nil, nil, false
	}
	return id, e, true
}

func (h *Handlers) getEdit(w http.ResponseWriter, r *http.Request) {
	id, e, ok := h.edit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, app.MapEdit(id.String(), e))
}

func (h *Handlers) editAdd(w http.ResponseWriter, r *http.Request) {
	id, e, ok := h.edit(w, r)
	if !ok {
		return
	}
	start, end, err := decodeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := e.Add(start, end); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.MapEdit(id.String(), e))
}

func (h *Handlers) editRemove(w http.ResponseWriter, r *http.Request) {
	id, e, ok := h.edit(w, r)
	if !ok {
		return
	}
	dr, err := queryRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := e.Remove(dr); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.MapEdit(id.String(), e))
}

func (h *Handlers) commitEdit(w http.ResponseWriter, r *http.Request) {
	id, e, ok := h.edit(w, r)
	if !ok {
		return
	}
	err := h.Sessions.Commit(r.Context(), id)
	if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
		writeError(w, err)
		return
	}
	room, rerr := h.Inv.Room(e.RoomNumber)
	if rerr != nil {
		writeError(w, rerr)
		return
	}
	writeJSON(w, http.StatusOK, commitResponse{Room: app.MapRoom(room), Persisted: err == nil})
}

func (h *Handlers) discardEdit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domain.ErrEditNotFound)
		return
	}
	if err := h.Sessions.Discard(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
