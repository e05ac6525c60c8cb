package service

import (
	"context"
	"sync"

	"github.com/openmeet/eventhub/internal/domain"
)

// ---------- Mocks ----------

type publishedMsg struct {
	subject string
	data    interface{}
}

type mockPublisher struct {
	mu        sync.Mutex
	published []publishedMsg
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMsg{subject: subject, data: data})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.published))
	for i, p := range m.published {
		out[i] = p.subject
	}
	return out
}

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*domain.Account
	byEmail  map[string]int64
	nextID   int64
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		accounts: make(map[int64]*domain.Account),
		byEmail:  make(map[string]int64),
	}
}

func (m *mockAccountRepo) Create(_ context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[req.Email]; exists {
		return nil, domain.NewConflictError("account with this email already exists")
	}
	m.nextID++
	a := &domain.Account{
		ID:           m.nextID,
		Role:         req.Role,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
	}
	m.accounts[a.ID] = a
	m.byEmail[a.Email] = a.ID
	return copyAccount(a), nil
}

func (m *mockAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyAccount(m.accounts[id]), nil
}

func (m *mockAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return copyAccount(a), nil
}

func (m *mockAccountRepo) UpdateRole(_ context.Context, id int64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.NewNotFoundError("account not found")
	}
	a.Role = role
	return nil
}

func copyAccount(a *domain.Account) *domain.Account {
	cp := *a
	return &cp
}

// mockEventRepo mirrors the storage contract: AddAttendee applies its
// checks and the roster append under one lock, RemoveAttendee is
// idempotent. maxAttendees records the observable high-water mark so the
// race test can assert capacity was never exceeded at any point.
type mockEventRepo struct {
	mu           sync.Mutex
	events       map[int64]*domain.Event
	nextID       int64
	maxAttendees map[int64]int
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{
		events:       make(map[int64]*domain.Event),
		maxAttendees: make(map[int64]int),
	}
}

func (m *mockEventRepo) Create(_ context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e := &domain.Event{
		ID:          m.nextID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      req.Status,
		OrganizerID: organizerID,
		Attendees:   []int64{},
	}
	m.events[e.ID] = e
	return copyEvent(e), nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	return copyEvent(e), nil
}

func (m *mockEventRepo) List(_ context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Event
	for id := int64(1); id <= m.nextID; id++ {
		e, ok := m.events[id]
		if !ok {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.AttendeeID != nil && !e.HasAttendee(*filter.AttendeeID) {
			continue
		}
		if filter.OrganizerID != nil && e.OrganizerID != *filter.OrganizerID {
			continue
		}
		out = append(out, *copyEvent(e))
	}
	return out, nil
}

func (m *mockEventRepo) Update(_ context.Context, id int64, req *domain.UpdateEventRequest) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	return copyEvent(e), nil
}

func (m *mockEventRepo) SetStatus(_ context.Context, id int64, from, to string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.Status != from {
		return nil, nil
	}
	e.Status = to
	return copyEvent(e), nil
}

func (m *mockEventRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return domain.NewNotFoundError("event not found")
	}
	if len(e.Attendees) > 0 {
		return domain.NewConflictError("event has registrations")
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) AddAttendee(_ context.Context, eventID, accountID int64) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, domain.NewNotFoundError("event not found")
	}
	if !e.IsRegistrable() {
		return nil, domain.NewValidationError("event not open for registration")
	}
	if e.HasAttendee(accountID) {
		return nil, domain.NewConflictError("already registered")
	}
	if e.IsFull() {
		return nil, domain.NewCapacityError("event full")
	}
	e.Attendees = append(e.Attendees, accountID)
	if len(e.Attendees) > m.maxAttendees[eventID] {
		m.maxAttendees[eventID] = len(e.Attendees)
	}
	return copyEvent(e), nil
}

func (m *mockEventRepo) RemoveAttendee(_ context.Context, eventID, accountID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return false, domain.NewNotFoundError("event not found")
	}
	for i, id := range e.Attendees {
		if id == accountID {
			e.Attendees = append(e.Attendees[:i], e.Attendees[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func copyEvent(e *domain.Event) *domain.Event {
	cp := *e
	cp.Attendees = append([]int64(nil), e.Attendees...)
	return &cp
}
