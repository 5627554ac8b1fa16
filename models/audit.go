package models

import "time"

// ScoreAuditEntry records one applied scoring action. Entries form a strict
// per-match chronological log (ordered by the serial ID) and are the sole
// source of truth for undo: the newest entry for a match is reverted and
// deleted, consumed exactly once.
type ScoreAuditEntry struct {
	ID          int64       `json:"id"`
	MatchID     string      `json:"match_id"`
	AthleteID   string      `json:"athlete_id"`
	Action      ScoreAction `json:"action"`
	OldValue    int         `json:"old_value"`
	NewValue    int         `json:"new_value"`
	PerformedBy *string     `json:"performed_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
