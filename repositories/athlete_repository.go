package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kumiteops/kumite-system/models"
)

var ErrAthleteNotFound = errors.New("athlete not found")

const athleteColumns = `id, name, dojo, belt, weight, status, photo_url, created_at, updated_at`

type AthleteRepository interface {
	Create(ctx context.Context, athlete *models.Athlete) error
	GetByID(ctx context.Context, id string) (*models.Athlete, error)
	List(ctx context.Context) ([]*models.Athlete, error)
	Update(ctx context.Context, athlete *models.Athlete) error
	UpdatePhotoURL(ctx context.Context, id string, photoURL *string) error
	Delete(ctx context.Context, id string) error
}

type postgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) AthleteRepository {
	return &postgresAthleteRepository{db: db}
}

func (r *postgresAthleteRepository) Create(ctx context.Context, athlete *models.Athlete) error {
	query := `
		INSERT INTO athletes (id, name, dojo, belt, weight, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		athlete.ID, athlete.Name, athlete.Dojo, athlete.Belt, athlete.Weight, athlete.Status,
	).Scan(&athlete.CreatedAt, &athlete.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	return nil
}

func (r *postgresAthleteRepository) GetByID(ctx context.Context, id string) (*models.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE id = $1`
	a := &models.Athlete{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Dojo, &a.Belt, &a.Weight, &a.Status, &a.PhotoURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to scan athlete %s: %w", id, err)
	}
	return a, nil
}

func (r *postgresAthleteRepository) List(ctx context.Context) ([]*models.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
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

func (r *postgresAthleteRepository) Update(ctx context.Context, athlete *models.Athlete) error {
	query := `
		UPDATE athletes
		SET name = $1, dojo = $2, belt = $3, weight = $4, status = $5, updated_at = NOW()
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		athlete.Name, athlete.Dojo, athlete.Belt, athlete.Weight, athlete.Status, athlete.ID)
	if err != nil {
		return fmt.Errorf("failed to update athlete %s: %w", athlete.ID, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) UpdatePhotoURL(ctx context.Context, id string, photoURL *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE athletes SET photo_url = $1, updated_at = NOW() WHERE id = $2`, photoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update athlete %s photo: %w", id, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM athletes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete athlete %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}
