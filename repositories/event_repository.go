package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kumiteops/kumite-system/models"
)

var ErrEventNotFound = errors.New("event not found")

const eventColumns = `id, name, event_code, start_date, end_date, location, status, created_at, updated_at`

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.EventStatus) error
	// MarkCompleted flips the event to COMPLETED and reports whether this
	// call performed the transition. A second call on an already-completed
	// event returns false, which keeps the completion signal one-shot.
	MarkCompleted(ctx context.Context, exec SQLExecutor, id string) (bool, error)
	RegisterAthlete(ctx context.Context, exec SQLExecutor, eventID, athleteID string) error
	ListAthletes(ctx context.Context, eventID string, onlyValid bool) ([]*models.Athlete, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, name, event_code, start_date, end_date, location, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		event.ID, event.Name, event.EventCode,
		event.StartDate, event.EndDate, event.Location, event.Status,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.EventCode, &e.StartDate, &e.EndDate,
		&e.Location, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event %s: %w", id, err)
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e := &models.Event{}
		err := rows.Scan(
			&e.ID, &e.Name, &e.EventCode, &e.StartDate, &e.EndDate,
			&e.Location, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, start_date = $2, end_date = $3, location = $4, status = $5, updated_at = NOW()
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		event.Name, event.StartDate, event.EndDate, event.Location, event.Status, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.EventStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event %s status: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) MarkCompleted(ctx context.Context, exec SQLExecutor, id string) (bool, error) {
	result, err := exec.ExecContext(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`,
		models.EventStatusCompleted, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s completed: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresEventRepository) RegisterAthlete(ctx context.Context, exec SQLExecutor, eventID, athleteID string) error {
	query := `
		INSERT INTO event_athletes (event_id, athlete_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := exec.ExecContext(ctx, query, eventID, athleteID); err != nil {
		return fmt.Errorf("failed to register athlete %s to event %s: %w", athleteID, eventID, err)
	}
	return nil
}

func (r *postgresEventRepository) ListAthletes(ctx context.Context, eventID string, onlyValid bool) ([]*models.Athlete, error) {
	query := `
		SELECT a.id, a.name, a.dojo, a.belt, a.weight, a.status, a.photo_url, a.created_at, a.updated_at
		FROM athletes a
		INNER JOIN event_athletes ea ON a.id = ea.athlete_id
		WHERE ea.event_id = $1`
	args := []interface{}{eventID}
	if onlyValid {
		query += ` AND a.status = $2`
		args = append(args, models.AthleteStatusValid)
	}
	query += ` ORDER BY a.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var athletes []*models.Athlete
	for rows.Next() {
		a := &models.Athlete{}
		err := rows.Scan(&a.ID, &a.Name, &a.Dojo, &a.Belt, &a.Weight, &a.Status, &a.PhotoURL, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan athlete row: %w", err)
		}
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}
