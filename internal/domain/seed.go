package domain

import "hotel_rooms/internal/seq"

type seedBlock struct {
	first, last int
	roomType    string
	includes    []string
	price       int
	image       string
}

var defaultBlocks = []seedBlock{
	{1, 30, TypeStandardSingle, []string{"Single Double Bed"}, 79, "standard_single.jpg"},
	{31, 45, TypeStandardFamily, []string{"Two Queen Beds"}, 129, "standard_family.jpg"},
	{46, 50, TypeRomanticGetaway, []string{"Single King Bed", "Jacuzzi"}, 159, "romantic_getaway.jpg"},
	{51, 60, TypeJuniorSuite, []string{"Single Queen Bed", "Fold-out couch", "Kitchen", "Standard Washroom"}, 199, "junior_suite.jpg"},
	{61, 65, TypePlatinumSuite, []string{"Single King Bed", "Fold-out couch", "Kitchen", "Luxury Washroom", "Jacuzzi"}, 299, "platinum_suite.jpg"},
	{66, 67, TypePenthouseSuite, []string{
		"One King Bed", "Two Queen Beds", "Living Room with Entertainment Unit",
		"Luxury Kitchen", "Luxury Washroom", "Jacuzzi",
	}, 599, "penthouse.jpg"},
}

// DefaultInventory builds the 67-room seed inventory with no bookings.
func DefaultInventory() *seq.List[*Room] {
	rooms := seq.New[*Room]()
	for _, b := range defaultBlocks {
		for n := b.first; n <= b.last; n++ {
			inc := make([]string, len(b.includes))
			copy(inc, b.includes)
			rooms.Append(NewRoom(n, b.roomType, inc, b.price, b.image))
		}
	}
	return rooms
}
