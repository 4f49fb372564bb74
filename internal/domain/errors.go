package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation groups malformed input: blank names, negative scores, bad question fields.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState groups illegal game transitions and unmet gameplay preconditions.
	ErrInvalidState = errors.New("invalid game state")
	// ErrNotFound groups lookups that matched nothing.
	ErrNotFound = errors.New("not found")
)

var (
	ErrEmptyName          = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNegativeScore      = fmt.Errorf("%w: score cannot be negative", ErrValidation)
	ErrInvalidDifficulty  = fmt.Errorf("%w: question level must be one of easy, medium, hard", ErrValidation)
	ErrEmptyStatement     = fmt.Errorf("%w: statement is required", ErrValidation)
	ErrEmptyAlternative   = fmt.Errorf("%w: all four alternatives are required", ErrValidation)
	ErrInvalidChoice      = fmt.Errorf("%w: correct answer must be one of a, b, c, d", ErrValidation)
	ErrInvalidGameID      = fmt.Errorf("%w: game id must be a positive integer", ErrValidation)
	ErrUnstratifiedSample = fmt.Errorf("%w: a game needs 4 easy, 4 medium and 2 hard questions", ErrValidation)

	// ErrGameNotInProgress is returned when finishing or dropping a game that is not running.
	ErrGameNotInProgress = fmt.Errorf("%w: game is not in progress", ErrInvalidState)
	// ErrGameAlreadyStarted is returned when starting a game that has left NotStarted.
	ErrGameAlreadyStarted = fmt.Errorf("%w: game already started", ErrInvalidState)
	// ErrNoQuestionsAvailable means the bank cannot fill a 4/4/2 sample.
	ErrNoQuestionsAvailable = fmt.Errorf("%w: no questions available to start the game", ErrInvalidState)

	// ErrGameNotFound indicates the game is not in the active registry.
	ErrGameNotFound = fmt.Errorf("game %w", ErrNotFound)
	// ErrUserNotFound indicates the user row no longer exists.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)
