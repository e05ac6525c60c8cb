package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openmeet/eventhub/internal/domain"
)

type mockEventService struct {
	createFn     func(ctx context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error)
	listFn       func(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	getFn        func(ctx context.Context, id int64) (*domain.Event, error)
	byOrganizer  func(ctx context.Context, organizerID int64) ([]domain.Event, error)
	updateFn     func(ctx context.Context, id int64, req *domain.UpdateEventRequest, actorID int64, actorRole string) (*domain.Event, error)
	deleteFn     func(ctx context.Context, id int64, actorID int64, actorRole string) error
	publishFn    func(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error)
	cancelFn     func(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error)
	registerFn   func(ctx context.Context, eventID, accountID int64) (*domain.Event, error)
	unregisterFn func(ctx context.Context, eventID, accountID int64) error
}

func (m *mockEventService) CreateEvent(ctx context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error) {
	return m.createFn(ctx, req, organizerID)
}

func (m *mockEventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	return m.listFn(ctx, filter)
}

func (m *mockEventService) GetEventByID(ctx context.Context, id int64) (*domain.Event, error) {
	return m.getFn(ctx, id)
}

func (m *mockEventService) ListByOrganizer(ctx context.Context, organizerID int64) ([]domain.Event, error) {
	return m.byOrganizer(ctx, organizerID)
}

func (m *mockEventService) UpdateEvent(ctx context.Context, id int64, req *domain.UpdateEventRequest, actorID int64, actorRole string) (*domain.Event, error) {
	return m.updateFn(ctx, id, req, actorID, actorRole)
}

func (m *mockEventService) DeleteEvent(ctx context.Context, id int64, actorID int64, actorRole string) error {
	return m.deleteFn(ctx, id, actorID, actorRole)
}

func (m *mockEventService) PublishEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error) {
	return m.publishFn(ctx, id, actorID, actorRole)
}

func (m *mockEventService) CancelEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error) {
	return m.cancelFn(ctx, id, actorID, actorRole)
}

func (m *mockEventService) RegisterForEvent(ctx context.Context, eventID, accountID int64) (*domain.Event, error) {
	return m.registerFn(ctx, eventID, accountID)
}

func (m *mockEventService) UnregisterFromEvent(ctx context.Context, eventID, accountID int64) error {
	return m.unregisterFn(ctx, eventID, accountID)
}

func newEventHandlers(events *mockEventService) *Handlers {
	return New(nil, events, nil, guardTestConfig())
}

// withURLParam threads a chi route parameter into the request context the way
// the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func sampleEvent(id int64) *domain.Event {
	return &domain.Event{
		ID:          id,
		Title:       "Go meetup",
		Date:        time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		Location:    "Berlin",
		Capacity:    30,
		Status:      domain.StatusPublished,
		OrganizerID: 5,
		Attendees:   []int64{},
	}
}

func TestListEvents_FilterParsing(t *testing.T) {
	t.Parallel()

	var got domain.EventFilter
	h := newEventHandlers(&mockEventService{
		listFn: func(_ context.Context, filter domain.EventFilter) ([]domain.Event, error) {
			got = filter
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/events?status=published&attendee_id=42", nil)
	rec := httptest.NewRecorder()
	h.ListEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.Status == nil || *got.Status != domain.StatusPublished {
		t.Errorf("status filter = %v, want published", got.Status)
	}
	if got.AttendeeID == nil || *got.AttendeeID != 42 {
		t.Errorf("attendee filter = %v, want 42", got.AttendeeID)
	}
	if got.OrganizerID != nil {
		t.Errorf("organizer filter = %v, want nil", got.OrganizerID)
	}

	// An empty result still serializes as a list.
	if body := rec.Body.String(); !strings.Contains(body, `"events":[]`) {
		t.Errorf("body = %s, want empty events list", body)
	}
}

func TestListEvents_RejectsBadFilters(t *testing.T) {
	t.Parallel()

	h := newEventHandlers(&mockEventService{
		listFn: func(_ context.Context, _ domain.EventFilter) ([]domain.Event, error) {
			t.Fatal("service must not be reached for invalid filters")
			return nil, nil
		},
	})

	for _, target := range []string{
		"/events?status=archived",
		"/events?attendee_id=abc",
		"/events?organizer_id=abc",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ListEvents(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestGetEvent(t *testing.T) {
	t.Parallel()

	h := newEventHandlers(&mockEventService{
		getFn: func(_ context.Context, id int64) (*domain.Event, error) {
			if id != 3 {
				return nil, domain.NewNotFoundError("event not found")
			}
			return sampleEvent(3), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/events/3", nil), "id", "3")
	rec := httptest.NewRecorder()
	h.GetEvent(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/events/99", nil), "id", "99")
	rec = httptest.NewRecorder()
	h.GetEvent(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/events/zero", nil), "id", "zero")
	rec = httptest.NewRecorder()
	h.GetEvent(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-numeric id", rec.Code)
	}
}

func TestCreateEvent_UsesCallerAsOrganizer(t *testing.T) {
	t.Parallel()

	var gotOrganizer int64
	h := newEventHandlers(&mockEventService{
		createFn: func(_ context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error) {
			gotOrganizer = organizerID
			e := sampleEvent(1)
			e.Title = req.Title
			e.OrganizerID = organizerID
			return e, nil
		},
	})

	body := `{"title":"Go meetup","date":"2026-10-01T18:00:00Z","location":"Berlin","capacity":30}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req = withIdentity(req, &Identity{AccountID: 5, Role: domain.RoleOrganizer})
	rec := httptest.NewRecorder()
	h.CreateEvent(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if gotOrganizer != 5 {
		t.Errorf("organizer = %d, want the caller's account 5", gotOrganizer)
	}
}

func TestRegisterForEvent_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"full", domain.NewCapacityError("event full"), http.StatusBadRequest, CodeEventFull},
		{"duplicate", domain.NewConflictError("already registered"), http.StatusBadRequest, CodeConflict},
		{"not open", domain.NewValidationError("event not open for registration"), http.StatusBadRequest, CodeInvalidInput},
		{"missing", domain.NewNotFoundError("event not found"), http.StatusNotFound, CodeNotFound},
		{"store down", domain.NewTransientError("service temporarily unavailable", context.DeadlineExceeded), http.StatusServiceUnavailable, CodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newEventHandlers(&mockEventService{
				registerFn: func(_ context.Context, _, _ int64) (*domain.Event, error) {
					return nil, tt.err
				},
			})

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/events/1/register", nil), "id", "1")
			req = withIdentity(req, &Identity{AccountID: 9, Role: domain.RoleMember})
			rec := httptest.NewRecorder()
			h.RegisterForEvent(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeErrorBody(t, rec)
			if body["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
		})
	}
}

func TestRegisterForEvent_Success(t *testing.T) {
	t.Parallel()

	h := newEventHandlers(&mockEventService{
		registerFn: func(_ context.Context, eventID, accountID int64) (*domain.Event, error) {
			e := sampleEvent(eventID)
			e.Attendees = []int64{accountID}
			return e, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/events/1/register", nil), "id", "1")
	req = withIdentity(req, &Identity{AccountID: 9, Role: domain.RoleMember})
	rec := httptest.NewRecorder()
	h.RegisterForEvent(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"attendees":[9]`) {
		t.Errorf("body = %s, want roster with account 9", body)
	}
}

func TestUnregisterFromEvent(t *testing.T) {
	t.Parallel()

	h := newEventHandlers(&mockEventService{
		unregisterFn: func(_ context.Context, _, _ int64) error {
			return nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/events/1/register", nil), "id", "1")
	req = withIdentity(req, &Identity{AccountID: 9, Role: domain.RoleMember})
	rec := httptest.NewRecorder()
	h.UnregisterFromEvent(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestDeleteEvent_ConflictWhileRegistered(t *testing.T) {
	t.Parallel()

	h := newEventHandlers(&mockEventService{
		deleteFn: func(_ context.Context, _, _ int64, _ string) error {
			return domain.NewConflictError("event has registrations")
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/events/1", nil), "id", "1")
	req = withIdentity(req, &Identity{AccountID: 5, Role: domain.RoleOrganizer})
	rec := httptest.NewRecorder()
	h.DeleteEvent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["code"] != CodeConflict {
		t.Errorf("code = %q, want %q", body["code"], CodeConflict)
	}
}

func TestPublishEvent_ForwardsActor(t *testing.T) {
	t.Parallel()

	var gotID, gotActor int64
	var gotRole string
	h := newEventHandlers(&mockEventService{
		publishFn: func(_ context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error) {
			gotID, gotActor, gotRole = id, actorID, actorRole
			return sampleEvent(id), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/events/4/publish", nil), "id", "4")
	req = withIdentity(req, &Identity{AccountID: 5, Role: domain.RoleAdmin})
	rec := httptest.NewRecorder()
	h.PublishEvent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != 4 || gotActor != 5 || gotRole != domain.RoleAdmin {
		t.Errorf("forwarded (%d, %d, %s), want (4, 5, admin)", gotID, gotActor, gotRole)
	}
}

func TestMyEvents(t *testing.T) {
	t.Parallel()

	h := newEventHandlers(&mockEventService{
		byOrganizer: func(_ context.Context, organizerID int64) ([]domain.Event, error) {
			if organizerID != 5 {
				t.Errorf("organizer = %d, want 5", organizerID)
			}
			return []domain.Event{*sampleEvent(1)}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/events/mine", nil)
	req = withIdentity(req, &Identity{AccountID: 5, Role: domain.RoleOrganizer})
	rec := httptest.NewRecorder()
	h.MyEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
