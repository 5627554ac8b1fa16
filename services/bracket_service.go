package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kumiteops/kumite-system/brackets"
	"github.com/kumiteops/kumite-system/models"
	"github.com/kumiteops/kumite-system/repositories"
)

// BracketService regenerates an event's bracket. Replacement is
// all-or-nothing: the old audit log, scores and matches are deleted and the
// new matches inserted in a single transaction, because a partially replaced
// bracket would corrupt the round/order linkage.
type BracketService interface {
	GenerateAndSaveBracket(ctx context.Context, eventID string) ([]*models.Match, error)
}

type bracketService struct {
	db        *sql.DB
	eventRepo repositories.EventRepository
	matchRepo repositories.MatchRepository
	scoreRepo repositories.ScoreRepository
	auditRepo repositories.AuditLogRepository
	hub       Broadcaster
	logger    *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	auditRepo repositories.AuditLogRepository,
	hub Broadcaster,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:        db,
		eventRepo: eventRepo,
		matchRepo: matchRepo,
		scoreRepo: scoreRepo,
		auditRepo: auditRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, eventID string) ([]*models.Match, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	athletes, err := s.eventRepo.ListAthletes(ctx, eventID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible athletes for event %s: %w", eventID, err)
	}

	generator := brackets.NewSingleEliminationGenerator()
	matches, err := generator.GenerateBracket(ctx, brackets.GenerateParams{
		EventID:   event.ID,
		EventCode: event.EventCode,
		Athletes:  athletes,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrInvalidParticipantCount) {
			return nil, ErrInvalidParticipantCount
		}
		return nil, fmt.Errorf("failed to generate bracket for event %s: %w", eventID, err)
	}

	s.logger.Info("bracket generated",
		slog.String("event_id", eventID),
		slog.String("generator", generator.GetName()),
		slog.Int("participants", len(athletes)),
		slog.Int("matches", len(matches)))

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.auditRepo.DeleteByEvent(ctx, tx, eventID); err != nil {
			return err
		}
		if err := s.scoreRepo.DeleteByEvent(ctx, tx, eventID); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteByEvent(ctx, tx, eventID); err != nil {
			return err
		}
		for _, match := range matches {
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return err
			}
		}
		return s.eventRepo.UpdateStatus(ctx, tx, eventID, models.EventStatusOngoing)
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(brackets.EventRoom(eventID), brackets.MessageBracketUpdated, map[string]interface{}{
		"eventId": eventID,
		"matches": matches,
	})
	return matches, nil
}
