package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kumiteops/kumite-system/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchEventInvalid   = errors.New("match references an invalid event")
	ErrMatchAthleteInvalid = errors.New("match references an invalid athlete")
)

const matchColumns = `id, match_code, event_id, athlete1_id, athlete2_id, winner_id,
	round, match_order, arena, status, parent_match_id, slot, created_at, updated_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	GetByEventRoundOrder(ctx context.Context, exec SQLExecutor, eventID string, round, order int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID string) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.MatchStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id string, winnerID string, status models.MatchStatus) error
	SetAthleteSlot(ctx context.Context, exec SQLExecutor, id string, slot models.MatchSlot, athleteID string) error
	CountUndecided(ctx context.Context, exec SQLExecutor, eventID string) (int, error)
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(id, match_code, event_id, athlete1_id, athlete2_id, winner_id,
			 round, match_order, arena, status, parent_match_id, slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		match.ID,
		match.MatchCode,
		match.EventID,
		match.Athlete1ID,
		match.Athlete2ID,
		match.WinnerID,
		match.Round,
		match.MatchOrder,
		match.Arena,
		match.Status,
		match.ParentMatchID,
		match.Slot,
	).Scan(&match.CreatedAt, &match.UpdatedAt)

	return r.handleMatchError(err)
}

func scanMatch(row *sql.Row) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID,
		&m.MatchCode,
		&m.EventID,
		&m.Athlete1ID,
		&m.Athlete2ID,
		&m.WinnerID,
		&m.Round,
		&m.MatchOrder,
		&m.Arena,
		&m.Status,
		&m.ParentMatchID,
		&m.Slot,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.db.QueryRowContext(ctx, query, id))
}

// GetForUpdate locks the match row for the lifetime of the surrounding
// transaction. The match row is the unit of mutual exclusion for all scoring,
// undo and winner operations.
func (r *postgresMatchRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByEventRoundOrder(ctx context.Context, exec SQLExecutor, eventID string, round, order int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE event_id = $1 AND round = $2 AND match_order = $3`
	m, err := scanMatch(exec.QueryRowContext(ctx, query, eventID, round, order))
	if errors.Is(err, ErrMatchNotFound) {
		return nil, nil
	}
	return m, err
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.match_code, m.event_id, m.athlete1_id, m.athlete2_id, m.winner_id,
		       m.round, m.match_order, m.arena, m.status, m.parent_match_id, m.slot,
		       m.created_at, m.updated_at,
		       a1.name, a1.dojo, a2.name, a2.dojo, w.name
		FROM matches m
		LEFT JOIN athletes a1 ON m.athlete1_id = a1.id
		LEFT JOIN athletes a2 ON m.athlete2_id = a2.id
		LEFT JOIN athletes w ON m.winner_id = w.id
		WHERE m.event_id = $1
		ORDER BY m.round, m.match_order`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %s: %w", eventID, err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		err := rows.Scan(
			&m.ID, &m.MatchCode, &m.EventID, &m.Athlete1ID, &m.Athlete2ID, &m.WinnerID,
			&m.Round, &m.MatchOrder, &m.Arena, &m.Status, &m.ParentMatchID, &m.Slot,
			&m.CreatedAt, &m.UpdatedAt,
			&m.Athlete1Name, &m.Athlete1Dojo, &m.Athlete2Name, &m.Athlete2Dojo, &m.WinnerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.MatchStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match %s status: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetWinner(ctx context.Context, exec SQLExecutor, id string, winnerID string, status models.MatchStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET winner_id = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		winnerID, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetAthleteSlot(ctx context.Context, exec SQLExecutor, id string, slot models.MatchSlot, athleteID string) error {
	column := "athlete1_id"
	if slot == models.SlotAthlete2 {
		column = "athlete2_id"
	}
	result, err := exec.ExecContext(ctx,
		`UPDATE matches SET `+column+` = $1, updated_at = NOW() WHERE id = $2`, athleteID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// CountUndecided counts matches still in play: neither COMPLETED nor BYE.
func (r *postgresMatchRepository) CountUndecided(ctx context.Context, exec SQLExecutor, eventID string) (int, error) {
	var count int
	err := exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE event_id = $1 AND status NOT IN ($2, $3)`,
		eventID, models.MatchStatusCompleted, models.MatchStatusBye,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count undecided matches for event %s: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for event %s: %w", eventID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		switch pqErr.Constraint {
		case "matches_event_id_fkey":
			return ErrMatchEventInvalid
		case "matches_athlete1_id_fkey", "matches_athlete2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchAthleteInvalid
		}
	}
	return fmt.Errorf("match repository error: %w", err)
}
