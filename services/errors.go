package services

import "errors"

// Errors recovered at the operation boundary and returned as structured
// failures. None of them are transient; nothing here is retried.
var (
	// Bracket generation
	ErrInvalidParticipantCount = errors.New("participant count must be between 2 and 512")

	// Match scoring lifecycle
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchAlreadyCompleted = errors.New("match already completed")
	ErrInvalidAction         = errors.New("invalid action")
	ErrNoActionsToUndo       = errors.New("no actions to undo")

	// Entity lookups
	ErrEventNotFound   = errors.New("event not found")
	ErrAthleteNotFound = errors.New("athlete not found")

	// Validation
	ErrEventNameRequired    = errors.New("event name is required")
	ErrEventInvalidDates    = errors.New("event end date must not be before start date")
	ErrAthleteNameRequired  = errors.New("athlete name is required")
	ErrInvalidWinMethod     = errors.New("invalid win method")
	ErrUnsupportedImageType = errors.New("unsupported image content type")

	// Auth
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already in use")
	ErrPasswordTooShort   = errors.New("password is too short")
)
