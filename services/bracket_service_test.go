package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumiteops/kumite-system/brackets"
	"github.com/kumiteops/kumite-system/models"
)

type bracketServiceFixture struct {
	svc       BracketService
	mock      sqlmock.Sqlmock
	matchRepo *fakeMatchRepo
	scoreRepo *fakeScoreRepo
	auditRepo *fakeAuditRepo
	eventRepo *fakeEventRepo
	hub       *fakeHub
}

func newBracketServiceFixture(t *testing.T) *bracketServiceFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &bracketServiceFixture{
		mock:      mock,
		matchRepo: newFakeMatchRepo(),
		scoreRepo: newFakeScoreRepo(),
		auditRepo: newFakeAuditRepo(),
		eventRepo: newFakeEventRepo(),
		hub:       &fakeHub{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewBracketService(db, f.eventRepo, f.matchRepo, f.scoreRepo, f.auditRepo, f.hub, logger)
	return f
}

func (f *bracketServiceFixture) seedEvent(eventID string, athleteCount int) {
	f.eventRepo.events[eventID] = &models.Event{
		ID:        eventID,
		Name:      "Spring Cup",
		EventCode: "KRT-20260829-AB12",
		Status:    models.EventStatusUpcoming,
	}
	for i := 0; i < athleteCount; i++ {
		f.eventRepo.athletes[eventID] = append(f.eventRepo.athletes[eventID], makeAthlete(i))
	}
}

func makeAthlete(i int) *models.Athlete {
	return &models.Athlete{
		ID:     string(rune('a'+i)) + "-athlete",
		Name:   "Athlete",
		Status: models.AthleteStatusValid,
	}
}

func TestGenerateAndSaveBracketHappyPath(t *testing.T) {
	f := newBracketServiceFixture(t)
	f.seedEvent("e1", 4)

	// Stale bracket state from a previous draw.
	old := pendingMatch("old1", "e1", 1, 1, "x1", "x2")
	f.matchRepo.matches[old.ID] = old

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	matches, err := f.svc.GenerateAndSaveBracket(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// The old draw is wiped before the new one is stored.
	assert.Equal(t, []string{"e1"}, f.auditRepo.deletedEvents)
	assert.Equal(t, []string{"e1"}, f.scoreRepo.deletedEvents)
	assert.NotContains(t, f.matchRepo.matches, "old1")
	for _, m := range matches {
		assert.Contains(t, f.matchRepo.matches, m.ID)
	}

	assert.Equal(t, models.EventStatusOngoing, f.eventRepo.statuses["e1"])
	assert.Contains(t, f.hub.sent, broadcast{room: brackets.EventRoom("e1"), msgType: brackets.MessageBracketUpdated})
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGenerateAndSaveBracketRollsBackOnMidInsertFailure(t *testing.T) {
	f := newBracketServiceFixture(t)
	f.seedEvent("e1", 4)
	f.matchRepo.failCreateAt = 2

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.GenerateAndSaveBracket(context.Background(), "e1")
	require.ErrorIs(t, err, errInjected)

	// The aborted draw never flips the event or announces anything.
	assert.NotEqual(t, models.EventStatusOngoing, f.eventRepo.statuses["e1"])
	assert.Empty(t, f.hub.sent)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGenerateAndSaveBracketUnknownEvent(t *testing.T) {
	f := newBracketServiceFixture(t)

	_, err := f.svc.GenerateAndSaveBracket(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Empty(t, f.hub.sent)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGenerateAndSaveBracketTooFewAthletes(t *testing.T) {
	f := newBracketServiceFixture(t)
	f.seedEvent("e1", 1)

	_, err := f.svc.GenerateAndSaveBracket(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrInvalidParticipantCount)
	assert.Empty(t, f.hub.sent)
	// Validation fails before any transaction is opened.
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGenerateAndSaveBracketSkipsInvalidAthletes(t *testing.T) {
	f := newBracketServiceFixture(t)
	f.seedEvent("e1", 5)
	f.eventRepo.athletes["e1"][4].Status = models.AthleteStatusInvalid

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	// 4 eligible athletes: a clean 3-match bracket, no BYEs.
	matches, err := f.svc.GenerateAndSaveBracket(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.NotEqual(t, models.MatchStatusBye, m.Status)
	}
	require.NoError(t, f.mock.ExpectationsWereMet())
}
