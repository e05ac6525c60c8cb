package domain

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusCancelled, true},
		{StatusPublished, StatusCancelled, true},
		{StatusPublished, StatusDraft, false},
		{StatusCancelled, StatusPublished, false},
		{StatusCancelled, StatusDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := CreateEventRequest{
		Title:    "Go meetup",
		Date:     time.Now().Add(48 * time.Hour),
		Capacity: 30,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	negative := valid
	negative.Capacity = -1
	if err := negative.Validate(); !IsKind(err, KindValidation) {
		t.Errorf("expected validation error for negative capacity, got %v", err)
	}

	noDate := valid
	noDate.Date = time.Time{}
	if err := noDate.Validate(); !IsKind(err, KindValidation) {
		t.Errorf("expected validation error for missing date, got %v", err)
	}
}

func TestEvent_AttendeeHelpers(t *testing.T) {
	t.Parallel()

	e := Event{Capacity: 2, Attendees: []int64{10, 20}}

	if !e.IsFull() {
		t.Error("event at capacity should report full")
	}
	if !e.HasAttendee(10) || e.HasAttendee(30) {
		t.Error("attendee membership mismatch")
	}
}
