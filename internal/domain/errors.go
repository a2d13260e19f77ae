package domain

import "errors"

// Filter and booking input errors. They are local to one operation and never
// touch the room collection.
var (
	ErrInvalidRoomNumber     = errors.New("rooms: invalid room number")
	ErrNonPositiveRoomNumber = errors.New("rooms: room number must be positive")
	ErrBothDatesRequired     = errors.New("rooms: both start and end dates are required")
	ErrStartAfterEnd         = errors.New("rooms: start date after end date")
	ErrInvalidDate           = errors.New("rooms: invalid date")
	ErrBookingOverlap        = errors.New("rooms: dates overlap an existing booking")
	ErrBookingNotFound       = errors.New("rooms: booking not found")
	ErrRoomNotFound          = errors.New("rooms: room not found")
	ErrEditClosed            = errors.New("rooms: edit already committed or discarded")
	ErrEditNotFound          = errors.New("rooms: edit session not found")
	ErrEditStale             = errors.New("rooms: room changed since the edit began")
)

// Persistence errors.
var (
	ErrStoreEmpty       = errors.New("rooms: store is empty")
	ErrPersistenceRead  = errors.New("rooms: persistence read failed")
	ErrPersistenceWrite = errors.New("rooms: persistence write failed")
)

var userMessages = []struct {
	err error
	msg string
}{
	{ErrInvalidRoomNumber, "Invalid Room Number"},
	{ErrNonPositiveRoomNumber, "Must be a positive number"},
	{ErrBothDatesRequired, "Please select both start and end dates."},
	{ErrStartAfterEnd, "Start date must be before end date."},
	{ErrInvalidDate, "Invalid date."},
	{ErrEditStale, "The room was changed by another reservation; selected dates now overlap existing bookings!"},
	{ErrBookingOverlap, "Selected dates overlap existing bookings!"},
	{ErrBookingNotFound, "No such reservation."},
	{ErrRoomNotFound, "Room not found."},
	{ErrEditClosed, "This edit session is closed."},
	{ErrEditNotFound, "This edit session does not exist."},
	{ErrPersistenceWrite, "Changes applied but could not be saved."},
}

// UserMessage returns the text shown to a user for err, or "" when err has none.
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return ""
}
