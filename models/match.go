package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "PENDING"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusCompleted  MatchStatus = "COMPLETED"
	MatchStatusBye        MatchStatus = "BYE"
)

// IsTerminal reports whether the match can no longer change through scoring.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusBye
}

// MatchSlot identifies which side of a match a competitor occupies.
type MatchSlot string

const (
	SlotAthlete1 MatchSlot = "athlete1"
	SlotAthlete2 MatchSlot = "athlete2"
)

// WinMethod is an informational label attached to a winner decision.
// It is recorded as-is and never validated against the score rows.
type WinMethod string

const (
	WinMethodScore    WinMethod = "SCORE"
	WinMethodPointGap WinMethod = "POINT_GAP"
	WinMethodDQ       WinMethod = "DQ"
	WinMethodReferee  WinMethod = "REFEREE"
)

// Match is one node of an event's elimination tree. Round 1 is the earliest
// round; (Round, MatchOrder) uniquely position the match within the event.
// The winner's destination is always round+1, order ceil(MatchOrder/2),
// athlete1 slot when MatchOrder is odd, athlete2 otherwise.
type Match struct {
	ID            string      `json:"id"`
	MatchCode     string      `json:"match_code"`
	EventID       string      `json:"event_id"`
	Athlete1ID    *string     `json:"athlete1_id,omitempty"`
	Athlete2ID    *string     `json:"athlete2_id,omitempty"`
	WinnerID      *string     `json:"winner_id,omitempty"`
	Round         int         `json:"round"`
	MatchOrder    int         `json:"match_order"`
	Arena         string      `json:"arena"`
	Status        MatchStatus `json:"status"`
	ParentMatchID *string     `json:"parent_match_id,omitempty"`
	Slot          *MatchSlot  `json:"slot,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Denormalized display fields, populated by list queries.
	Athlete1Name *string `json:"athlete1_name,omitempty"`
	Athlete1Dojo *string `json:"athlete1_dojo,omitempty"`
	Athlete2Name *string `json:"athlete2_name,omitempty"`
	Athlete2Dojo *string `json:"athlete2_dojo,omitempty"`
	WinnerName   *string `json:"winner_name,omitempty"`

	Scores []Score `json:"scores,omitempty"`
}

// ParentOrder returns the match_order of the match in the next round that
// receives this match's winner.
func ParentOrder(matchOrder int) int {
	return (matchOrder + 1) / 2
}

// ParentSlot returns which slot of the parent match the winner advances into.
func ParentSlot(matchOrder int) MatchSlot {
	if matchOrder%2 == 1 {
		return SlotAthlete1
	}
	return SlotAthlete2
}
