package store

import (
	"context"
	"errors"

	"pulse-backend/internal/models"
)

// ErrNotFound is returned by Update when no item exists for the given id.
// Get follows the repository convention of returning (nil, nil) on a miss.
var ErrNotFound = errors.New("feedback not found")

// Store is a keyed collection of feedback items. Implementations must make
// Update atomic per item: the mutator observes the current record and either
// commits its changes or aborts by returning an error, and two concurrent
// updates of the same id never interleave.
type Store interface {
	Insert(ctx context.Context, item *models.FeedbackItem) error
	Get(ctx context.Context, id string) (*models.FeedbackItem, error)
	// ListAll returns all items in insertion order.
	ListAll(ctx context.Context) ([]models.FeedbackItem, error)
	// Update applies mutate to the item with the given id and persists the
	// result. An error returned by mutate aborts the update and is returned
	// unchanged. Returns the updated item on success.
	Update(ctx context.Context, id string, mutate func(*models.FeedbackItem) error) (*models.FeedbackItem, error)
}
