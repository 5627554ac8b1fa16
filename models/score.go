package models

import (
	"errors"
	"time"
)

// ScoreAction is one referee input applied to a competitor's score row.
type ScoreAction string

const (
	ActionHeadKick ScoreAction = "HEAD_KICK"
	ActionBodyKick ScoreAction = "BODY_KICK"
	ActionPunch    ScoreAction = "PUNCH"
	ActionRedCard  ScoreAction = "RED_CARD"
	ActionBlueCard ScoreAction = "BLUE_CARD"
	ActionFoul     ScoreAction = "FOUL"
)

var ErrUnknownScoreAction = errors.New("unknown score action")

// Valid reports whether the action is one of the recognized kinds.
func (a ScoreAction) Valid() bool {
	switch a {
	case ActionHeadKick, ActionBodyKick, ActionPunch, ActionRedCard, ActionBlueCard, ActionFoul:
		return true
	}
	return false
}

// Score holds the running counters for one athlete in one match. Rows are
// created lazily on the first action and live until the match is deleted.
type Score struct {
	ID         string    `json:"id"`
	MatchID    string    `json:"match_id"`
	AthleteID  string    `json:"athlete_id"`
	HeadKicks  int       `json:"head_kicks"`
	BodyKicks  int       `json:"body_kicks"`
	Punches    int       `json:"punches"`
	RedCards   int       `json:"red_cards"`
	BlueCards  int       `json:"blue_cards"`
	Fouls      int       `json:"fouls"`
	TotalScore int       `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// counter returns a pointer to the counter the action maps onto.
func (s *Score) counter(action ScoreAction) *int {
	switch action {
	case ActionHeadKick:
		return &s.HeadKicks
	case ActionBodyKick:
		return &s.BodyKicks
	case ActionPunch:
		return &s.Punches
	case ActionRedCard:
		return &s.RedCards
	case ActionBlueCard:
		return &s.BlueCards
	case ActionFoul:
		return &s.Fouls
	}
	return nil
}

// Apply increments the counter for action by one and recomputes the total.
func (s *Score) Apply(action ScoreAction) error {
	c := s.counter(action)
	if c == nil {
		return ErrUnknownScoreAction
	}
	*c++
	s.TotalScore = s.ComputeTotal()
	return nil
}

// Revert decrements the counter for action by one, flooring at zero so a
// desynchronized audit log can never drive a counter negative, and
// recomputes the total.
func (s *Score) Revert(action ScoreAction) error {
	c := s.counter(action)
	if c == nil {
		return ErrUnknownScoreAction
	}
	if *c > 0 {
		*c--
	}
	s.TotalScore = s.ComputeTotal()
	return nil
}

// ComputeTotal derives the total from the counters. Blue cards and fouls are
// tracked but do not enter the total.
func (s *Score) ComputeTotal() int {
	return s.HeadKicks*3 + s.BodyKicks*2 + s.Punches*1 - s.RedCards*1
}
