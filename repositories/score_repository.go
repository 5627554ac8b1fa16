package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kumiteops/kumite-system/models"
)

const scoreColumns = `id, match_id, athlete_id, head_kicks, body_kicks, punches,
	red_cards, blue_cards, fouls, total_score, created_at, updated_at`

type ScoreRepository interface {
	Create(ctx context.Context, exec SQLExecutor, score *models.Score) error
	// GetByMatchAndAthlete returns (nil, nil) when no row exists yet; score
	// rows are created lazily on the first action.
	GetByMatchAndAthlete(ctx context.Context, exec SQLExecutor, matchID, athleteID string) (*models.Score, error)
	UpdateCounters(ctx context.Context, exec SQLExecutor, score *models.Score) error
	ListByMatch(ctx context.Context, matchID string) ([]models.Score, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Score, error)
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) Create(ctx context.Context, exec SQLExecutor, score *models.Score) error {
	query := `
		INSERT INTO scores (id, match_id, athlete_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	err := exec.QueryRowContext(ctx, query, score.ID, score.MatchID, score.AthleteID).
		Scan(&score.CreatedAt, &score.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score row for match %s: %w", score.MatchID, err)
	}
	return nil
}

func (r *postgresScoreRepository) GetByMatchAndAthlete(ctx context.Context, exec SQLExecutor, matchID, athleteID string) (*models.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE match_id = $1 AND athlete_id = $2`
	s := &models.Score{}
	err := exec.QueryRowContext(ctx, query, matchID, athleteID).Scan(
		&s.ID, &s.MatchID, &s.AthleteID,
		&s.HeadKicks, &s.BodyKicks, &s.Punches,
		&s.RedCards, &s.BlueCards, &s.Fouls,
		&s.TotalScore, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan score for match %s: %w", matchID, err)
	}
	return s, nil
}

func (r *postgresScoreRepository) UpdateCounters(ctx context.Context, exec SQLExecutor, score *models.Score) error {
	query := `
		UPDATE scores
		SET head_kicks = $1, body_kicks = $2, punches = $3,
		    red_cards = $4, blue_cards = $5, fouls = $6,
		    total_score = $7, updated_at = NOW()
		WHERE id = $8`
	result, err := exec.ExecContext(ctx, query,
		score.HeadKicks, score.BodyKicks, score.Punches,
		score.RedCards, score.BlueCards, score.Fouls,
		score.TotalScore, score.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update score %s: %w", score.ID, err)
	}
	return checkAffectedRows(result, fmt.Errorf("score %s not found", score.ID))
}

func (r *postgresScoreRepository) ListByMatch(ctx context.Context, matchID string) ([]models.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE match_id = $1 ORDER BY created_at`
	return r.list(ctx, query, matchID)
}

func (r *postgresScoreRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Score, error) {
	query := `
		SELECT s.id, s.match_id, s.athlete_id, s.head_kicks, s.body_kicks, s.punches,
		       s.red_cards, s.blue_cards, s.fouls, s.total_score, s.created_at, s.updated_at
		FROM scores s
		INNER JOIN matches m ON s.match_id = m.id
		WHERE m.event_id = $1`
	return r.list(ctx, query, eventID)
}

func (r *postgresScoreRepository) list(ctx context.Context, query string, arg interface{}) ([]models.Score, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []models.Score
	for rows.Next() {
		var s models.Score
		err := rows.Scan(
			&s.ID, &s.MatchID, &s.AthleteID,
			&s.HeadKicks, &s.BodyKicks, &s.Punches,
			&s.RedCards, &s.BlueCards, &s.Fouls,
			&s.TotalScore, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresScoreRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	query := `DELETE FROM scores WHERE match_id IN (SELECT id FROM matches WHERE event_id = $1)`
	if _, err := exec.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to delete scores for event %s: %w", eventID, err)
	}
	return nil
}
