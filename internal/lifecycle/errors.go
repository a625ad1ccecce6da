package lifecycle

import (
	"errors"
	"fmt"

	"pulse-backend/internal/models"
)

var (
	// ErrForbidden means the caller lacks the moderator role.
	ErrForbidden = errors.New("moderator role required")
	// ErrNotFound means no feedback item exists for the given id.
	ErrNotFound = errors.New("feedback not found")
	// ErrInvalidStatus means the transition target is not approved/rejected.
	ErrInvalidStatus = errors.New("invalid status update")
)

// ValidationError reports content that violates the submission length bounds.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ContentRejectedError reports a submission blocked by the content screener.
// The item was never created; this is distinct from a moderation rejection,
// which acts on an existing record.
type ContentRejectedError struct {
	Term string
}

func (e *ContentRejectedError) Error() string {
	return fmt.Sprintf("profanity detected: %q in feedback", e.Term)
}

// AlreadyFinalizedError reports a transition attempt on an item that has
// already reached a terminal status.
type AlreadyFinalizedError struct {
	Current models.Status
}

func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("already %s", e.Current)
}
