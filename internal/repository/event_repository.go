package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/eventhub/internal/domain"
)

// Schema:
//
//	CREATE TABLE events (
//	    id           bigserial PRIMARY KEY,
//	    title        text        NOT NULL,
//	    description  text        NOT NULL DEFAULT '',
//	    event_date   timestamptz NOT NULL,
//	    location     text        NOT NULL DEFAULT '',
//	    capacity     int         NOT NULL CHECK (capacity >= 0),
//	    status       text        NOT NULL,
//	    organizer_id bigint      NOT NULL REFERENCES accounts (id),
//	    attendees    bigint[]    NOT NULL DEFAULT '{}',
//	    created_at   timestamptz NOT NULL DEFAULT now(),
//	    updated_at   timestamptz NOT NULL DEFAULT now()
//	);
//
// attendees is an ordered array column: append order is display order, and
// the whole roster lives on the event row so the registration check and the
// insert share one row lock.
type EventRepository interface {
	Create(ctx context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	Update(ctx context.Context, id int64, req *domain.UpdateEventRequest) (*domain.Event, error)
	SetStatus(ctx context.Context, id int64, from, to string) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
	AddAttendee(ctx context.Context, eventID, accountID int64) (*domain.Event, error)
	RemoveAttendee(ctx context.Context, eventID, accountID int64) (bool, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

const eventCols = `id, title, description, event_date, location, capacity, status, organizer_id, attendees, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.Capacity, &e.Status, &e.OrganizerID, &e.Attendees,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.Attendees == nil {
		e.Attendees = []int64{}
	}
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, req *domain.CreateEventRequest, organizerID int64) (*domain.Event, error) {
	const q = `
		INSERT INTO events (title, description, event_date, location, capacity, status, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanEvent(r.pool.QueryRow(ctx, q,
		req.Title, req.Description, req.Date, req.Location,
		req.Capacity, req.Status, organizerID,
	))
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AttendeeID != nil {
		args = append(args, *filter.AttendeeID)
		clauses = append(clauses, fmt.Sprintf("attendees @> ARRAY[$%d::bigint]", len(args)))
	}
	if filter.OrganizerID != nil {
		args = append(args, *filter.OrganizerID)
		clauses = append(clauses, fmt.Sprintf("organizer_id = $%d", len(args)))
	}

	q := `SELECT ` + eventCols + ` FROM events`
	if len(clauses) > 0 {
		q += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	q += ` ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id int64, req *domain.UpdateEventRequest) (*domain.Event, error) {
	const q = `
		UPDATE events
		SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			event_date = COALESCE($4, event_date),
			location = COALESCE($5, location),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanEvent(r.pool.QueryRow(ctx, q, id, req.Title, req.Description, req.Date, req.Location))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// SetStatus applies a transition as a compare-and-swap on the current
// status; a concurrent change makes the swap miss and surface as a conflict.
func (r *eventRepository) SetStatus(ctx context.Context, id int64, from, to string) (*domain.Event, error) {
	const q = `
		UPDATE events SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanEvent(r.pool.QueryRow(ctx, q, id, from, to))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	// Deleting is blocked while the roster is non-empty so registrations are
	// never silently orphaned.
	const q = `DELETE FROM events WHERE id = $1 AND cardinality(attendees) = 0`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return domain.NewNotFoundError("event not found")
	}
	return domain.NewConflictError("event has registrations")
}

// AddAttendee is the registration atomic step: the event row is locked for
// the duration of the transaction, so the status check, the duplicate check,
// the capacity check and the roster append apply as one unit. Each event
// locks independently; registrations on different events never contend.
func (r *eventRepository) AddAttendee(ctx context.Context, eventID, accountID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const sel = `SELECT ` + eventCols + ` FROM events WHERE id = $1 FOR UPDATE`
	e, err := scanEvent(tx.QueryRow(ctx, sel, eventID))
	if err == pgx.ErrNoRows {
		return nil, domain.NewNotFoundError("event not found")
	}
	if err != nil {
		return nil, err
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

	const upd = `
		UPDATE events SET attendees = array_append(attendees, $2), updated_at = now()
		WHERE id = $1
		RETURNING ` + eventCols
	e, err = scanEvent(tx.QueryRow(ctx, upd, eventID, accountID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// RemoveAttendee is idempotent: removing an absent attendee still succeeds,
// reported as removed=false so callers can tell a real removal from a no-op.
func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, accountID int64) (bool, error) {
	const q = `
		UPDATE events SET attendees = array_remove(attendees, $2), updated_at = now()
		WHERE id = $1 AND $2 = ANY(attendees)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, eventID, accountID)
	if err != nil {
		return false, err
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	e, err := r.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, domain.NewNotFoundError("event not found")
	}
	return false, nil
}
