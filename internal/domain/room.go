package domain

import (
	"math"
	"slices"
	"time"

	"hotel_rooms/internal/seq"
)

const TaxRate = 0.2

// Room categories of the default inventory.
const (
	TypeStandardSingle  = "Standard Single"
	TypeStandardFamily  = "Standard Family"
	TypeRomanticGetaway = "Romantic Getaway"
	TypeJuniorSuite     = "Junior Suite"
	TypePlatinumSuite   = "Platinum Suite"
	TypePenthouseSuite  = "Penthouse Suite"
)

var RoomTypes = []string{
	TypeStandardSingle, TypeStandardFamily, TypeRomanticGetaway,
	TypeJuniorSuite, TypePlatinumSuite, TypePenthouseSuite,
}

// Room is identified by Number; two Room values with the same number are the
// same room regardless of their booking lists.
type Room struct {
	Number    int
	Type      string
	Includes  []string
	Price     int // pre-tax, per night
	ImageName string

	bookings *seq.List[DateRange]
}

func NewRoom(number int, roomType string, includes []string, price int, image string) *Room {
	return &Room{
		Number:    number,
		Type:      roomType,
		Includes:  includes,
		Price:     price,
		ImageName: image,
		bookings:  seq.New[DateRange](),
	}
}

// Bookings returns the live booking list in booking order.
func (r *Room) Bookings() *seq.List[DateRange] {
	if r.bookings == nil {
		r.bookings = seq.New[DateRange]()
	}
	return r.bookings
}

// AddBooking appends without checking for overlap; callers validate first.
func (r *Room) AddBooking(d DateRange) { r.Bookings().Append(d) }

func (r *Room) ReplaceBookings(l *seq.List[DateRange]) {
	if l == nil {
		l = seq.New[DateRange]()
	}
	r.bookings = l
}

func (r *Room) PriceWithTax() int {
	return int(math.Round(float64(r.Price) * (1 + TaxRate)))
}

func (r *Room) IsAvailable() bool { return r.Bookings().Len() == 0 }

// Summary is the first amenity, used on room cards.
func (r *Room) Summary() string {
	if len(r.Includes) == 0 {
		return "No details"
	}
	return r.Includes[0]
}

// Quote is the taxed total for staying over d.
func (r *Room) Quote(d DateRange) int { return d.Days() * r.PriceWithTax() }

// IsDateBooked reports whether any booking covers day.
func (r *Room) IsDateBooked(day time.Time) bool {
	return r.hasOverlap(day, day)
}

func (r *Room) hasOverlap(from, to time.Time) bool {
	for b := range r.Bookings().Values() {
		if b.Overlaps(from, to) {
			return true
		}
	}
	return false
}

// Clone copies the room and its booking list.
func (r *Room) Clone() *Room {
	c := *r
	c.Includes = slices.Clone(r.Includes)
	c.bookings = r.Bookings().Clone()
	return &c
}

func (r *Room) SameRoom(o *Room) bool { return o != nil && r.Number == o.Number }
