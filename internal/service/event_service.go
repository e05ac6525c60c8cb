package service

import (
	"context"
	"time"

	"github.com/openmeet/eventhub/internal/domain"
	"github.com/openmeet/eventhub/internal/repository"
	"github.com/openmeet/eventhub/pkg/config"
	"github.com/openmeet/eventhub/pkg/events"
	"github.com/openmeet/eventhub/pkg/logger"
)

type EventService interface {
	CreateEvent(ctx context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error)
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	GetEventByID(ctx context.Context, id int64) (*domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID int64) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, req *domain.UpdateEventRequest, actorID int64, actorRole string) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id int64, actorID int64, actorRole string) error
	PublishEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error)
	CancelEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error)
	RegisterForEvent(ctx context.Context, eventID, accountID int64) (*domain.Event, error)
	UnregisterFromEvent(ctx context.Context, eventID, accountID int64) error
}

type eventService struct {
	eventRepo   repository.EventRepository
	accountRepo repository.AccountRepository
	eventBus    events.Publisher
	config      *config.Config
}

func NewEventService(
	eventRepo repository.EventRepository,
	accountRepo repository.AccountRepository,
	eventBus events.Publisher,
	config *config.Config,
) EventService {
	return &eventService{
		eventRepo:   eventRepo,
		accountRepo: accountRepo,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.Create(ctx, req, organizerID)
	if err != nil {
		return nil, storeErr("create event", err)
	}

	if err := s.eventBus.Publish(ctx, events.EventCreated, events.EventCreatedEvent{
		EventID:     event.ID,
		Title:       event.Title,
		OrganizerID: event.OrganizerID,
		Capacity:    event.Capacity,
		Status:      event.Status,
		Date:        event.Date,
		CreatedAt:   event.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event created event", "error", err, "event_id", event.ID)
	}

	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	list, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	return list, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get event", err)
	}
	if event == nil {
		return nil, domain.NewNotFoundError("event not found")
	}
	return event, nil
}

func (s *eventService) ListByOrganizer(ctx context.Context, organizerID int64) ([]domain.Event, error) {
	return s.ListEvents(ctx, domain.EventFilter{OrganizerID: &organizerID})
}

func (s *eventService) UpdateEvent(ctx context.Context, id int64, req *domain.UpdateEventRequest, actorID int64, actorRole string) (*domain.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedEvent(ctx, id, actorID, actorRole); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.Update(ctx, id, req)
	if err != nil {
		return nil, storeErr("update event", err)
	}
	if event == nil {
		return nil, domain.NewNotFoundError("event not found")
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int64, actorID int64, actorRole string) error {
	if _, err := s.ownedEvent(ctx, id, actorID, actorRole); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return storeErr("delete event", err)
	}
	return nil
}

func (s *eventService) PublishEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error) {
	return s.transition(ctx, id, domain.StatusPublished, events.EventPublished, actorID, actorRole)
}

func (s *eventService) CancelEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error) {
	return s.transition(ctx, id, domain.StatusCancelled, events.EventCancelled, actorID, actorRole)
}

func (s *eventService) transition(ctx context.Context, id int64, to, subject string, actorID int64, actorRole string) (*domain.Event, error) {
	event, err := s.ownedEvent(ctx, id, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(event.Status, to) {
		return nil, domain.NewValidationError("cannot move event from %s to %s", event.Status, to)
	}

	updated, err := s.eventRepo.SetStatus(ctx, id, event.Status, to)
	if err != nil {
		return nil, storeErr("set event status", err)
	}
	if updated == nil {
		// The status moved underneath us between the read and the swap.
		return nil, domain.NewConflictError("event status changed concurrently")
	}

	if err := s.eventBus.Publish(ctx, subject, events.EventStatusEvent{
		EventID:   updated.ID,
		Status:    updated.Status,
		ChangedAt: updated.UpdatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event status event", "error", err, "event_id", updated.ID)
	}

	return updated, nil
}

func (s *eventService) RegisterForEvent(ctx context.Context, eventID, accountID int64) (*domain.Event, error) {
	event, err := s.eventRepo.AddAttendee(ctx, eventID, accountID)
	if err != nil {
		return nil, storeErr("register for event", err)
	}

	s.publishRegistration(ctx, events.RegistrationCreated, event, accountID)

	return event, nil
}

func (s *eventService) UnregisterFromEvent(ctx context.Context, eventID, accountID int64) error {
	removed, err := s.eventRepo.RemoveAttendee(ctx, eventID, accountID)
	if err != nil {
		return storeErr("unregister from event", err)
	}
	if !removed {
		// No-op unregister succeeds but notifies nobody.
		return nil
	}

	if event, err := s.eventRepo.GetByID(ctx, eventID); err == nil && event != nil {
		s.publishRegistration(ctx, events.RegistrationCanceled, event, accountID)
	}

	return nil
}

func (s *eventService) publishRegistration(ctx context.Context, subject string, event *domain.Event, accountID int64) {
	payload := events.RegistrationEvent{
		EventID:    event.ID,
		EventTitle: event.Title,
		EventDate:  event.Date,
		AccountID:  accountID,
		OccurredAt: time.Now(),
	}

	if account, err := s.accountRepo.FindByID(ctx, accountID); err == nil && account != nil {
		payload.Email = account.Email
		payload.Name = account.Name
	}

	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish registration event",
			"error", err, "subject", subject, "event_id", event.ID, "account_id", accountID)
	}
}

// ownedEvent loads an event and checks the actor may mutate it: its
// organizer, or an admin.
func (s *eventService) ownedEvent(ctx context.Context, id int64, actorID int64, actorRole string) (*domain.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != actorID && actorRole != domain.RoleAdmin {
		return nil, domain.NewAuthorizationError("not the event organizer")
	}
	return event, nil
}
