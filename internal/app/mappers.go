package app

import (
	"time"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// Read models handed to the presentation layer.

type BookingView struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days"`
	Total     int    `json:"total"`
	Label     string `json:"label"`
}

type RoomView struct {
	RoomNumber   int           `json:"roomNumber"`
	RoomType     string        `json:"roomType"`
	Includes     []string      `json:"includes"`
	Summary      string        `json:"summary"`
	Price        int           `json:"price"`
	PriceWithTax int           `json:"priceWithTax"`
	ImageName    string        `json:"imageName"`
	Available    bool          `json:"available"`
	BookedDates  []BookingView `json:"bookedDates"`
}

type SearchView struct {
	Title string     `json:"title"`
	Count int        `json:"count"`
	Rooms []RoomView `json:"rooms"`
}

type EditView struct {
	ID          string        `json:"id"`
	RoomNumber  int           `json:"roomNumber"`
	BookedDates []BookingView `json:"bookedDates"`
	Closed      bool          `json:"closed"`
}

func MapRoom(r *domain.Room) RoomView {
	v := RoomView{
		RoomNumber:   r.Number,
		RoomType:     r.Type,
		Includes:     r.Includes,
		Summary:      r.Summary(),
		Price:        r.Price,
		PriceWithTax: r.PriceWithTax(),
		ImageName:    r.ImageName,
		Available:    r.IsAvailable(),
		BookedDates:  make([]BookingView, 0, r.Bookings().Len()),
	}
	if v.Includes == nil {
		v.Includes = []string{}
	}
	for b := range r.Bookings().Values() {
		v.BookedDates = append(v.BookedDates, MapBooking(b, r.Quote(b)))
	}
	return v
}

func MapBooking(b domain.DateRange, total int) BookingView {
	return BookingView{
		StartDate: b.Start.Format(time.DateOnly),
		EndDate:   b.End.Format(time.DateOnly),
		Days:      b.Days(),
		Total:     total,
		Label:     b.String(),
	}
}

func MapSearch(c domain.Criteria, rooms *seq.List[*domain.Room]) SearchView {
	out := SearchView{Title: c.Title(), Count: rooms.Len(), Rooms: make([]RoomView, 0, rooms.Len())}
	for r := range rooms.Values() {
		out.Rooms = append(out.Rooms, MapRoom(r))
	}
	return out
}

func MapEdit(id string, e *Edit) EditView {
	bs := e.Bookings()
	v := EditView{ID: id, RoomNumber: e.RoomNumber, Closed: e.Closed(), BookedDates: make([]BookingView, 0, len(bs))}
	for _, b := range bs {
		v.BookedDates = append(v.BookedDates, MapBooking(b, e.Quote(b)))
	}
	return v
}
