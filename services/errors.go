package services

import (
	"errors"
	"fmt"

	"github.com/hireready/backend/repository"
)

// Error kinds surfaced to callers. Specific errors wrap a kind, so callers
// branch with errors.Is on the kind.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")

	ErrSessionNotFound    = fmt.Errorf("session %w", ErrNotFound)
	ErrScheduleNotFound   = fmt.Errorf("schedule %w", ErrNotFound)
	ErrEvaluationNotFound = fmt.Errorf("evaluation %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrSessionNotActive   = fmt.Errorf("session is not in progress: %w", ErrInvalidState)
)

// storeError maps repository sentinels onto service error kinds.
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, repository.ErrStale):
		return fmt.Errorf("%w: %w", ErrSessionNotActive, err)
	}
	return err
}

