package brackets

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/kumiteops/kumite-system/models"
)

const (
	MinParticipants = 2
	MaxParticipants = 512
)

// ErrInvalidParticipantCount is returned when the participant list is outside
// the supported 2..512 range. No partial bracket is produced.
var ErrInvalidParticipantCount = fmt.Errorf(
	"participant count must be between %d and %d", MinParticipants, MaxParticipants)

var errInternalShape = errors.New("bracket structure inconsistency")

// Metadata describes the shape of a bracket for a given participant count
// without generating it. All fields are deterministic.
type Metadata struct {
	BracketSize      int `json:"bracket_size"`
	TotalRounds      int `json:"total_rounds"`
	TotalMatches     int `json:"total_matches"`
	ByeCount         int `json:"bye_count"`
	ParticipantCount int `json:"participant_count"`
}

// GetBracketMetadata derives bracket dimensions for n participants.
func GetBracketMetadata(n int) Metadata {
	size := NextPowerOfTwo(n)
	return Metadata{
		BracketSize:      size,
		TotalRounds:      bits.Len(uint(size)) - 1,
		TotalMatches:     size - 1,
		ByeCount:         size - n,
		ParticipantCount: n,
	}
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// bitReversalPermutation returns the permutation of [0, n) obtained by
// reversing the log2(n)-bit binary representation of each index. n must be a
// power of two. The permutation spreads seed positions maximally across the
// bracket, which is what makes it the right tool for fair BYE placement.
func bitReversalPermutation(n int) []int {
	b := bits.Len(uint(n)) - 1
	perm := make([]int, n)
	for i := 0; i < n; i++ {
		reversed := 0
		v := i
		for j := 0; j < b; j++ {
			reversed = reversed<<1 | v&1
			v >>= 1
		}
		perm[i] = reversed
	}
	return perm
}

// byeSlots picks the first-round slots that stay empty. The BYE slots are the
// images, under the bit-reversal permutation, of the last byeCount natural
// positions: the slots that would hold the lowest seeds, maximally spread.
// Slot positions are fully determined by (bracketSize, athleteCount); only
// who occupies the remaining slots is random.
func byeSlots(bracketSize, athleteCount int) map[int]struct{} {
	byeCount := bracketSize - athleteCount
	slots := make(map[int]struct{}, byeCount)
	if byeCount <= 0 {
		return slots
	}
	perm := bitReversalPermutation(bracketSize)
	for i := bracketSize - 1; i >= bracketSize-byeCount; i-- {
		slots[perm[i]] = struct{}{}
	}
	return slots
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds a complete single-elimination match tree. The draw
// is reshuffled on every call; only BYE slot positions are deterministic.
// First-round BYEs are resolved immediately and their winners cascaded
// upward, so matches whose opponents can never materialize are already
// terminal in the returned set.
func (g *SingleEliminationGenerator) GenerateBracket(_ context.Context, params GenerateParams) ([]*models.Match, error) {
	n := len(params.Athletes)
	if n < MinParticipants || n > MaxParticipants {
		return nil, ErrInvalidParticipantCount
	}

	shuffled := make([]*models.Athlete, n)
	copy(shuffled, params.Athletes)
	rand.Shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	meta := GetBracketMetadata(n)
	byes := byeSlots(meta.BracketSize, n)
	now := time.Now()

	// Empty match shells for every round, final down to round 1.
	rounds := make([][]*models.Match, meta.TotalRounds+1)
	for round := meta.TotalRounds; round >= 1; round-- {
		matchCount := 1 << uint(meta.TotalRounds-round)
		roundMatches := make([]*models.Match, matchCount)
		for i := 0; i < matchCount; i++ {
			roundMatches[i] = &models.Match{
				ID:         uuid.NewString(),
				MatchCode:  fmt.Sprintf("%s-R%d-M%d", params.EventCode, round, i+1),
				EventID:    params.EventID,
				Round:      round,
				MatchOrder: i + 1,
				Arena:      string(rune('A' + i%4)),
				Status:     models.MatchStatusPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		}
		rounds[round] = roundMatches
	}

	// Parent linkage for every non-final match.
	for round := 1; round < meta.TotalRounds; round++ {
		for i, m := range rounds[round] {
			parent := rounds[round+1][i/2]
			parentID := parent.ID
			slot := models.ParentSlot(m.MatchOrder)
			m.ParentMatchID = &parentID
			m.Slot = &slot
		}
	}

	// Seed shuffled athletes into the non-BYE first-round slots in order.
	// Slot pair (2k, 2k+1) is first-round match k+1.
	firstRound := rounds[1]
	athleteIdx := 0
	for slot := 0; slot < meta.BracketSize; slot++ {
		if _, isBye := byes[slot]; isBye {
			continue
		}
		if athleteIdx >= n {
			return nil, errInternalShape
		}
		athleteID := shuffled[athleteIdx].ID
		athleteIdx++
		m := firstRound[slot/2]
		if slot%2 == 0 {
			m.Athlete1ID = &athleteID
		} else {
			m.Athlete2ID = &athleteID
		}
	}

	// Resolve first-round BYE matches. A match with no athletes at all is a
	// degenerate double BYE: terminal, but nobody advances from it here.
	for _, m := range firstRound {
		switch {
		case m.Athlete1ID != nil && m.Athlete2ID == nil:
			m.WinnerID = m.Athlete1ID
			m.Status = models.MatchStatusBye
		case m.Athlete1ID == nil && m.Athlete2ID != nil:
			m.WinnerID = m.Athlete2ID
			m.Status = models.MatchStatusBye
		case m.Athlete1ID == nil && m.Athlete2ID == nil:
			m.Status = models.MatchStatusBye
		}
	}

	// Cascade winners upward, one top-down pass per round. A parent resolves
	// to BYE only when its other feeder is a winnerless BYE, so no match is
	// resolved twice and the loop terminates for any bye ratio.
	for round := 1; round < meta.TotalRounds; round++ {
		current := rounds[round]
		next := rounds[round+1]
		for i, m := range current {
			if m.WinnerID == nil {
				continue
			}
			parent := next[i/2]
			if i%2 == 0 {
				parent.Athlete1ID = m.WinnerID
			} else {
				parent.Athlete2ID = m.WinnerID
			}
			if parent.Athlete1ID != nil && parent.Athlete2ID != nil {
				continue
			}
			sibling := current[i^1]
			if sibling.Status == models.MatchStatusBye && sibling.WinnerID == nil {
				if parent.Athlete1ID != nil {
					parent.WinnerID = parent.Athlete1ID
				} else {
					parent.WinnerID = parent.Athlete2ID
				}
				parent.Status = models.MatchStatusBye
			}
		}
	}

	all := make([]*models.Match, 0, meta.TotalMatches)
	for round := 1; round <= meta.TotalRounds; round++ {
		all = append(all, rounds[round]...)
	}
	return all, nil
}
