package domain

import (
	"strings"
	"time"
)

type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	OrganizerID int64     `json:"organizer_id"`
	// Attendees keeps registration order; membership is still unique.
	Attendees []int64   `json:"attendees"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status,omitempty"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty"`
}

// EventFilter clauses are ANDed; nil fields are ignored. Results come back
// in creation order.
type EventFilter struct {
	Status      *string
	AttendeeID  *int64
	OrganizerID *int64
}

// Event statuses; only published events are visible and registrable to
// non-owners.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusDraft:     true,
	StatusPublished: true,
	StatusCancelled: true,
}

func IsValidStatus(status string) bool {
	return validStatuses[status]
}

// CanTransition enforces draft -> published -> cancelled (draft may also be
// cancelled directly); nothing leaves cancelled.
func CanTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusPublished || to == StatusCancelled
	case StatusPublished:
		return to == StatusCancelled
	default:
		return false
	}
}

func (e *Event) IsRegistrable() bool {
	return e.Status == StatusPublished
}

func (e *Event) IsFull() bool {
	return len(e.Attendees) >= e.Capacity
}

func (e *Event) HasAttendee(accountID int64) bool {
	for _, id := range e.Attendees {
		if id == accountID {
			return true
		}
	}
	return false
}

func (r *CreateEventRequest) Validate() error {
	if r.Title == "" {
		return NewValidationError("title is required")
	}
	if r.Date.IsZero() {
		return NewValidationError("date is required")
	}
	if r.Capacity < 0 {
		return NewValidationError("capacity must not be negative")
	}
	if r.Status != "" && !validStatuses[r.Status] {
		return NewValidationError("invalid status")
	}
	return nil
}

func (r *CreateEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	if r.Status == "" {
		r.Status = StatusDraft
	}
}

func (r *UpdateEventRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return NewValidationError("title must not be empty")
	}
	if r.Date != nil && r.Date.IsZero() {
		return NewValidationError("invalid date")
	}
	return nil
}
