package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kumiteops/kumite-system/brackets"
	"github.com/kumiteops/kumite-system/models"
	"github.com/kumiteops/kumite-system/repositories"
)

// Broadcaster pushes real-time updates to subscribed clients. Satisfied by
// *brackets.Hub.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgType string, payload interface{})
}

// MatchService owns the scoring lifecycle of a single match: the
// PENDING → IN_PROGRESS → COMPLETED state machine, the audit-log-backed undo,
// and winner advancement into the next round. Every mutation runs as one
// transaction with the match row locked, so concurrent actions on the same
// match serialize and a failure leaves no partial state.
type MatchService interface {
	GetMatchByID(ctx context.Context, matchID string) (*models.Match, error)
	ApplyScoreAction(ctx context.Context, matchID, athleteID string, action models.ScoreAction, performedBy *string) (*models.Match, error)
	UndoLastAction(ctx context.Context, matchID string) (*models.Match, models.ScoreAction, error)
	SetWinner(ctx context.Context, matchID, winnerID string, method models.WinMethod) (*models.Match, error)
}

type matchService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	scoreRepo repositories.ScoreRepository
	auditRepo repositories.AuditLogRepository
	eventRepo repositories.EventRepository
	hub       Broadcaster
	logger    *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	auditRepo repositories.AuditLogRepository,
	eventRepo repositories.EventRepository,
	hub Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:        db,
		matchRepo: matchRepo,
		scoreRepo: scoreRepo,
		auditRepo: auditRepo,
		eventRepo: eventRepo,
		hub:       hub,
		logger:    logger,
	}
}

func (s *matchService) GetMatchByID(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	scores, err := s.scoreRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	match.Scores = scores
	return match, nil
}

// ApplyScoreAction increments exactly one counter on the acting athlete's
// score row, recomputes the total, and appends one audit entry — all
// indivisible relative to other operations on the same match.
func (s *matchService) ApplyScoreAction(ctx context.Context, matchID, athleteID string, action models.ScoreAction, performedBy *string) (*models.Match, error) {
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		match, err := s.lockMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if match.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyCompleted
		}
		// Match state errors take precedence over action validation.
		if !action.Valid() {
			return ErrInvalidAction
		}
		if match.Status == models.MatchStatusPending {
			if err := s.matchRepo.UpdateStatus(ctx, tx, matchID, models.MatchStatusInProgress); err != nil {
				return err
			}
		}

		score, err := s.scoreRepo.GetByMatchAndAthlete(ctx, tx, matchID, athleteID)
		if err != nil {
			return err
		}
		if score == nil {
			score = &models.Score{ID: uuid.NewString(), MatchID: matchID, AthleteID: athleteID}
			if err := s.scoreRepo.Create(ctx, tx, score); err != nil {
				return err
			}
		}

		oldTotal := score.TotalScore
		if err := score.Apply(action); err != nil {
			return ErrInvalidAction
		}
		if err := s.scoreRepo.UpdateCounters(ctx, tx, score); err != nil {
			return err
		}

		return s.auditRepo.Append(ctx, tx, &models.ScoreAuditEntry{
			MatchID:     matchID,
			AthleteID:   athleteID,
			Action:      action,
			OldValue:    oldTotal,
			NewValue:    score.TotalScore,
			PerformedBy: performedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	match, err := s.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("score applied but failed to reload match %s: %w", matchID, err)
	}
	s.notifyScoreUpdated(match)
	return match, nil
}

// UndoLastAction reverts and consumes the newest audit entry of the match
// (per-match LIFO, regardless of which athlete acted last). Returns the kind
// of action that was undone.
func (s *matchService) UndoLastAction(ctx context.Context, matchID string) (*models.Match, models.ScoreAction, error) {
	var undone models.ScoreAction

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lockMatch(ctx, tx, matchID); err != nil {
			return err
		}

		entry, err := s.auditRepo.GetLastByMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if entry == nil {
			return ErrNoActionsToUndo
		}

		score, err := s.scoreRepo.GetByMatchAndAthlete(ctx, tx, matchID, entry.AthleteID)
		if err != nil {
			return err
		}
		if score == nil {
			return fmt.Errorf("audit entry %d references a missing score row", entry.ID)
		}

		if err := score.Revert(entry.Action); err != nil {
			return err
		}
		if err := s.scoreRepo.UpdateCounters(ctx, tx, score); err != nil {
			return err
		}
		if err := s.auditRepo.DeleteByID(ctx, tx, entry.ID); err != nil {
			return err
		}
		undone = entry.Action
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	match, err := s.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, "", fmt.Errorf("undo applied but failed to reload match %s: %w", matchID, err)
	}
	s.notifyScoreUpdated(match)
	return match, undone, nil
}

// SetWinner completes the match and, in the same transaction, advances the
// winner exactly one hop: into round+1, order ceil(order/2), athlete1 slot
// when the order is odd. When no undecided match remains in the event, the
// event itself is marked completed — a one-shot transition.
func (s *matchService) SetWinner(ctx context.Context, matchID, winnerID string, method models.WinMethod) (*models.Match, error) {
	switch method {
	case models.WinMethodScore, models.WinMethodPointGap, models.WinMethodDQ, models.WinMethodReferee:
	default:
		return nil, ErrInvalidWinMethod
	}

	var (
		eventID        string
		eventCompleted bool
	)
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		match, err := s.lockMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		eventID = match.EventID

		if err := s.matchRepo.SetWinner(ctx, tx, matchID, winnerID, models.MatchStatusCompleted); err != nil {
			return err
		}

		next, err := s.matchRepo.GetByEventRoundOrder(ctx, tx,
			match.EventID, match.Round+1, models.ParentOrder(match.MatchOrder))
		if err != nil {
			return err
		}
		if next != nil {
			// Destination status is untouched: this only fills a slot.
			slot := models.ParentSlot(match.MatchOrder)
			if err := s.matchRepo.SetAthleteSlot(ctx, tx, next.ID, slot, winnerID); err != nil {
				return err
			}
		}

		remaining, err := s.matchRepo.CountUndecided(ctx, tx, match.EventID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			eventCompleted, err = s.eventRepo.MarkCompleted(ctx, tx, match.EventID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match, err := s.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("winner set but failed to reload match %s: %w", matchID, err)
	}

	payload := matchPayload(match)
	s.hub.BroadcastToRoom(brackets.MatchRoom(match.ID), brackets.MessageMatchFinished, payload)
	s.hub.BroadcastToRoom(brackets.EventRoom(match.EventID), brackets.MessageMatchFinished, payload)
	s.hub.BroadcastToRoom(brackets.EventRoom(match.EventID), brackets.MessageBracketUpdated, payload)
	if eventCompleted {
		s.logger.Info("event completed", slog.String("event_id", eventID), slog.String("final_match_id", match.ID))
		s.hub.BroadcastToRoom(brackets.EventRoom(eventID), brackets.MessageEventCompleted, payload)
	}
	return match, nil
}

// lockMatch fetches the match under FOR UPDATE, mapping repository not-found
// to the service-level error.
func (s *matchService) lockMatch(ctx context.Context, tx *sql.Tx, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetForUpdate(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func matchPayload(match *models.Match) map[string]interface{} {
	return map[string]interface{}{
		"matchId": match.ID,
		"eventId": match.EventID,
		"scores":  match.Scores,
		"match":   match,
	}
}

func (s *matchService) notifyScoreUpdated(match *models.Match) {
	payload := matchPayload(match)
	s.hub.BroadcastToRoom(brackets.MatchRoom(match.ID), brackets.MessageScoreUpdated, payload)
	s.hub.BroadcastToRoom(brackets.EventRoom(match.EventID), brackets.MessageScoreUpdated, payload)
	s.hub.BroadcastToRoom(brackets.EventRoom(match.EventID), brackets.MessageMatchUpdated, payload)
}
