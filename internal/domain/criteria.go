package domain

import (
	"strings"
	"time"
)

const (
	ActionBook   = "Book"
	ActionCancel = "Cancel"
	Any          = "Any"
)

// Criteria is one search request from the presentation layer.
type Criteria struct {
	RoomType   string // category name or Any; empty means absent
	Action     string // ActionBook, ActionCancel or Any; empty means absent
	NumberText string // raw user input
	From, To   *time.Time
}

func (c Criteria) HasRoomNumber() bool { return strings.TrimSpace(c.NumberText) != "" }

func (c Criteria) ShouldFilterByType() bool {
	return c.RoomType != "" && !strings.EqualFold(c.RoomType, Any)
}

func (c Criteria) ShouldFilterByAction() bool {
	return c.Action != "" && !strings.EqualFold(c.Action, Any)
}

func (c Criteria) IsCancelAction() bool { return strings.EqualFold(c.Action, ActionCancel) }

// Title is the heading for a result list of this action.
func (c Criteria) Title() string {
	switch {
	case strings.EqualFold(c.Action, ActionBook):
		return "Available rooms"
	case c.IsCancelAction():
		return "Booked rooms"
	default:
		return "All rooms"
	}
}
