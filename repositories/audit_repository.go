package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kumiteops/kumite-system/models"
)

// AuditLogRepository persists the per-match action log that backs undo. The
// serial id gives the strict chronological order; an entry is deleted once it
// has been undone.
type AuditLogRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.ScoreAuditEntry) error
	// GetLastByMatch returns the newest entry for the match, locked for the
	// surrounding transaction, or (nil, nil) when the log is empty.
	GetLastByMatch(ctx context.Context, exec SQLExecutor, matchID string) (*models.ScoreAuditEntry, error)
	DeleteByID(ctx context.Context, exec SQLExecutor, id int64) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error
}

type postgresAuditLogRepository struct {
	db *sql.DB
}

func NewPostgresAuditLogRepository(db *sql.DB) AuditLogRepository {
	return &postgresAuditLogRepository{db: db}
}

func (r *postgresAuditLogRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.ScoreAuditEntry) error {
	query := `
		INSERT INTO score_audit_log (match_id, athlete_id, action, old_value, new_value, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := exec.QueryRowContext(ctx, query,
		entry.MatchID, entry.AthleteID, entry.Action,
		entry.OldValue, entry.NewValue, entry.PerformedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for match %s: %w", entry.MatchID, err)
	}
	return nil
}

func (r *postgresAuditLogRepository) GetLastByMatch(ctx context.Context, exec SQLExecutor, matchID string) (*models.ScoreAuditEntry, error) {
	query := `
		SELECT id, match_id, athlete_id, action, old_value, new_value, performed_by, created_at
		FROM score_audit_log
		WHERE match_id = $1
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE`
	e := &models.ScoreAuditEntry{}
	err := exec.QueryRowContext(ctx, query, matchID).Scan(
		&e.ID, &e.MatchID, &e.AthleteID, &e.Action,
		&e.OldValue, &e.NewValue, &e.PerformedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log tail for match %s: %w", matchID, err)
	}
	return e, nil
}

func (r *postgresAuditLogRepository) DeleteByID(ctx context.Context, exec SQLExecutor, id int64) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM score_audit_log WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete audit entry %d: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("audit entry %d not found", id))
}

func (r *postgresAuditLogRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	query := `DELETE FROM score_audit_log WHERE match_id IN (SELECT id FROM matches WHERE event_id = $1)`
	if _, err := exec.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to delete audit log for event %s: %w", eventID, err)
	}
	return nil
}
