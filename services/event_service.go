package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kumiteops/kumite-system/models"
	"github.com/kumiteops/kumite-system/repositories"
)

type CreateEventInput struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Location  *string   `json:"location,omitempty"`
}

type UpdateEventInput struct {
	Name      *string             `json:"name,omitempty"`
	StartDate *time.Time          `json:"start_date,omitempty"`
	EndDate   *time.Time          `json:"end_date,omitempty"`
	Location  *string             `json:"location,omitempty"`
	Status    *models.EventStatus `json:"status,omitempty"`
}

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, eventID string, input UpdateEventInput) (*models.Event, error)
	RegisterAthletes(ctx context.Context, eventID string, athleteIDs []string) ([]*models.Athlete, error)
	ListEventMatches(ctx context.Context, eventID string) ([]*models.Match, error)
}

type eventService struct {
	db          *sql.DB
	eventRepo   repositories.EventRepository
	athleteRepo repositories.AthleteRepository
	matchRepo   repositories.MatchRepository
	scoreRepo   repositories.ScoreRepository
}

func NewEventService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	athleteRepo repositories.AthleteRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
) EventService {
	return &eventService{
		db:          db,
		eventRepo:   eventRepo,
		athleteRepo: athleteRepo,
		matchRepo:   matchRepo,
		scoreRepo:   scoreRepo,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, ErrEventNameRequired
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, ErrEventInvalidDates
	}

	id := uuid.NewString()
	event := &models.Event{
		ID:        id,
		Name:      input.Name,
		EventCode: buildEventCode(input.StartDate, id),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Location:  input.Location,
		Status:    models.EventStatusUpcoming,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// buildEventCode derives the human-facing code used as the match-code prefix,
// e.g. KRT-20260315-9F2A.
func buildEventCode(start time.Time, eventID string) string {
	return fmt.Sprintf("KRT-%s-%s",
		start.Format("20060102"),
		strings.ToUpper(eventID[:4]))
}

// GetEvent loads the event with its registered athletes and matches fetched
// in parallel.
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		athletes, err := s.eventRepo.ListAthletes(gCtx, eventID, false)
		if err != nil {
			return err
		}
		event.Athletes = make([]models.Athlete, len(athletes))
		for i, a := range athletes {
			event.Athletes[i] = *a
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return err
		}
		event.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load event %s details: %w", eventID, err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		return []*models.Event{}, nil
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, input UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		event.Name = *input.Name
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = *input.EndDate
	}
	if input.Location != nil {
		event.Location = input.Location
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if event.EndDate.Before(event.StartDate) {
		return nil, ErrEventInvalidDates
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RegisterAthletes attaches athletes to the event, skipping ones already
// registered. The whole batch is applied in one transaction.
func (s *eventService) RegisterAthletes(ctx context.Context, eventID string, athleteIDs []string) ([]*models.Athlete, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, athleteID := range athleteIDs {
			if err := s.eventRepo.RegisterAthlete(ctx, tx, eventID, athleteID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.eventRepo.ListAthletes(ctx, eventID, false)
}

// ListEventMatches returns the event's matches in round-then-order sequence,
// each enriched with its score rows.
func (s *eventService) ListEventMatches(ctx context.Context, eventID string) ([]*models.Match, error) {
	var (
		matches []*models.Match
		scores  []models.Score
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByEvent(gCtx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = s.scoreRepo.ListByEvent(gCtx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list matches for event %s: %w", eventID, err)
	}

	scoresByMatch := make(map[string][]models.Score)
	for _, score := range scores {
		scoresByMatch[score.MatchID] = append(scoresByMatch[score.MatchID], score)
	}
	for _, match := range matches {
		match.Scores = scoresByMatch[match.ID]
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}
