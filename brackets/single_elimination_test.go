package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumiteops/kumite-system/models"
)

func makeAthletes(n int) []*models.Athlete {
	athletes := make([]*models.Athlete, n)
	for i := 0; i < n; i++ {
		athletes[i] = &models.Athlete{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("Athlete %d", i+1),
			Status: models.AthleteStatusValid,
		}
	}
	return athletes
}

func generate(t *testing.T, n int) []*models.Match {
	t.Helper()
	g := NewSingleEliminationGenerator()
	matches, err := g.GenerateBracket(context.Background(), GenerateParams{
		EventID:   uuid.NewString(),
		EventCode: "KRT-20260829-AB12",
		Athletes:  makeAthletes(n),
	})
	require.NoError(t, err)
	return matches
}

func TestGetBracketMetadata(t *testing.T) {
	cases := []struct {
		n, size, rounds, matches, byes int
	}{
		{2, 2, 1, 1, 0},
		{3, 4, 2, 3, 1},
		{5, 8, 3, 7, 3},
		{8, 8, 3, 7, 0},
		{9, 16, 4, 15, 7},
		{16, 16, 4, 15, 0},
		{100, 128, 7, 127, 28},
		{512, 512, 9, 511, 0},
	}
	for _, c := range cases {
		meta := GetBracketMetadata(c.n)
		assert.Equal(t, c.size, meta.BracketSize, "n=%d size", c.n)
		assert.Equal(t, c.rounds, meta.TotalRounds, "n=%d rounds", c.n)
		assert.Equal(t, c.matches, meta.TotalMatches, "n=%d matches", c.n)
		assert.Equal(t, c.byes, meta.ByeCount, "n=%d byes", c.n)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, NextPowerOfTwo(1))
	assert.Equal(t, 2, NextPowerOfTwo(2))
	assert.Equal(t, 4, NextPowerOfTwo(3))
	assert.Equal(t, 8, NextPowerOfTwo(8))
	assert.Equal(t, 16, NextPowerOfTwo(9))
	assert.Equal(t, 512, NextPowerOfTwo(500))
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(2))
	assert.True(t, IsPowerOfTwo(256))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(3))
	assert.False(t, IsPowerOfTwo(-4))
}

func TestBitReversalPermutation(t *testing.T) {
	assert.Equal(t, []int{0, 4, 2, 6, 1, 5, 3, 7}, bitReversalPermutation(8))
	assert.Equal(t, []int{0, 2, 1, 3}, bitReversalPermutation(4))
}

func TestByeSlotsAreDeterministic(t *testing.T) {
	first := byeSlots(8, 5)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, byeSlots(8, 5))
	}
	// 3 byes in a bracket of 8: images of natural positions 7, 6, 5.
	assert.Equal(t, map[int]struct{}{7: {}, 3: {}, 5: {}}, first)
}

func TestByeSlotsNoByes(t *testing.T) {
	assert.Empty(t, byeSlots(8, 8))
	assert.Empty(t, byeSlots(16, 16))
}

func TestGenerateBracketRejectsInvalidCounts(t *testing.T) {
	g := NewSingleEliminationGenerator()
	for _, n := range []int{0, 1, 513} {
		_, err := g.GenerateBracket(context.Background(), GenerateParams{
			EventID:   uuid.NewString(),
			EventCode: "KRT-20260829-AB12",
			Athletes:  makeAthletes(n),
		})
		assert.ErrorIs(t, err, ErrInvalidParticipantCount, "n=%d", n)
	}
}

func TestGenerateBracketTwoAthletes(t *testing.T) {
	matches := generate(t, 2)
	require.Len(t, matches, 1)

	final := matches[0]
	assert.Equal(t, 1, final.Round)
	assert.Equal(t, 1, final.MatchOrder)
	assert.Equal(t, models.MatchStatusPending, final.Status)
	assert.NotNil(t, final.Athlete1ID)
	assert.NotNil(t, final.Athlete2ID)
	assert.Nil(t, final.WinnerID)
	assert.Nil(t, final.ParentMatchID)
}

func TestGenerateBracketPowerOfTwoHasNoByes(t *testing.T) {
	matches := generate(t, 8)
	require.Len(t, matches, 7)

	for _, m := range matches {
		assert.Equal(t, models.MatchStatusPending, m.Status, "match %s", m.MatchCode)
		assert.Nil(t, m.WinnerID)
		if m.Round == 1 {
			assert.NotNil(t, m.Athlete1ID)
			assert.NotNil(t, m.Athlete2ID)
		} else {
			assert.Nil(t, m.Athlete1ID)
			assert.Nil(t, m.Athlete2ID)
		}
	}
}

func TestGenerateBracketFiveAthletes(t *testing.T) {
	matches := generate(t, 5)
	require.Len(t, matches, 7)

	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	require.Len(t, byRound[1], 4)
	require.Len(t, byRound[2], 2)
	require.Len(t, byRound[3], 1)

	var byeMatches, seeded int
	for _, m := range byRound[1] {
		if m.Status == models.MatchStatusBye {
			byeMatches++
			require.NotNil(t, m.WinnerID, "single bye must auto-advance")
		}
		if m.Athlete1ID != nil {
			seeded++
		}
		if m.Athlete2ID != nil {
			seeded++
		}
	}
	assert.Equal(t, 3, byeMatches)
	assert.Equal(t, 5, seeded)
}

func TestGenerateBracketSeedsEveryAthleteOnce(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7, 8, 13, 16, 33, 100, 512} {
		matches := generate(t, n)
		seen := make(map[string]int)
		for _, m := range matches {
			if m.Round != 1 {
				continue
			}
			if m.Athlete1ID != nil {
				seen[*m.Athlete1ID]++
			}
			if m.Athlete2ID != nil {
				seen[*m.Athlete2ID]++
			}
		}
		assert.Len(t, seen, n, "n=%d", n)
		for id, count := range seen {
			assert.Equal(t, 1, count, "n=%d athlete %s seeded %d times", n, id, count)
		}
	}
}

func TestGenerateBracketShape(t *testing.T) {
	for n := MinParticipants; n <= 64; n++ {
		matches := generate(t, n)
		meta := GetBracketMetadata(n)
		require.Len(t, matches, meta.TotalMatches, "n=%d", n)

		index := make(map[string]*models.Match, len(matches))
		perRound := make(map[int]int)
		for _, m := range matches {
			index[m.ID] = m
			perRound[m.Round]++

			assert.Equal(t,
				fmt.Sprintf("KRT-20260829-AB12-R%d-M%d", m.Round, m.MatchOrder),
				m.MatchCode)
			assert.GreaterOrEqual(t, m.Arena, "A")
			assert.LessOrEqual(t, m.Arena, "D")
		}
		for round := 1; round <= meta.TotalRounds; round++ {
			assert.Equal(t, 1<<uint(meta.TotalRounds-round), perRound[round], "n=%d round=%d", n, round)
		}

		for _, m := range matches {
			if m.Round == meta.TotalRounds {
				assert.Nil(t, m.ParentMatchID, "final has no parent")
				continue
			}
			require.NotNil(t, m.ParentMatchID, "n=%d %s", n, m.MatchCode)
			require.NotNil(t, m.Slot)
			parent, ok := index[*m.ParentMatchID]
			require.True(t, ok)
			assert.Equal(t, m.Round+1, parent.Round)
			assert.Equal(t, models.ParentOrder(m.MatchOrder), parent.MatchOrder)
			assert.Equal(t, models.ParentSlot(m.MatchOrder), *m.Slot)
		}
	}
}

func TestGenerateBracketCascadesByeWinners(t *testing.T) {
	for n := MinParticipants; n <= 64; n++ {
		matches := generate(t, n)
		index := make(map[string]*models.Match, len(matches))
		for _, m := range matches {
			index[m.ID] = m
		}

		for _, m := range matches {
			switch m.Status {
			case models.MatchStatusBye:
				// Double byes have no winner; single byes always do.
				if m.Athlete1ID != nil || m.Athlete2ID != nil {
					require.NotNil(t, m.WinnerID, "n=%d %s", n, m.MatchCode)
				}
			case models.MatchStatusPending:
				assert.Nil(t, m.WinnerID, "n=%d %s", n, m.MatchCode)
			default:
				t.Fatalf("n=%d %s: unexpected generated status %s", n, m.MatchCode, m.Status)
			}

			// Every resolved winner must already occupy its parent slot.
			if m.WinnerID == nil || m.ParentMatchID == nil {
				continue
			}
			parent := index[*m.ParentMatchID]
			require.NotNil(t, parent)
			if *m.Slot == models.SlotAthlete1 {
				require.NotNil(t, parent.Athlete1ID, "n=%d %s", n, m.MatchCode)
				assert.Equal(t, *m.WinnerID, *parent.Athlete1ID)
			} else {
				require.NotNil(t, parent.Athlete2ID, "n=%d %s", n, m.MatchCode)
				assert.Equal(t, *m.WinnerID, *parent.Athlete2ID)
			}
		}
	}
}

func TestGenerateBracketOrderedOutput(t *testing.T) {
	matches := generate(t, 16)
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		ok := cur.Round > prev.Round ||
			(cur.Round == prev.Round && cur.MatchOrder > prev.MatchOrder)
		assert.True(t, ok, "matches out of order at %d: %s then %s", i, prev.MatchCode, cur.MatchCode)
	}
}

func TestGeneratorName(t *testing.T) {
	assert.Equal(t, "SingleElimination", NewSingleEliminationGenerator().GetName())
}
