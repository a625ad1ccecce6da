package store

import (
	"context"
	"sync"

	"pulse-backend/internal/models"
)

// MemoryStore is an in-process Store guarded by a single mutex. Update runs
// its mutator inside the critical section, so concurrent transitions on the
// same item serialize and exactly one observes the pending state.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.FeedbackItem
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*models.FeedbackItem),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, item *models.FeedbackItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneItem(item)
	s.items[item.ID] = stored
	s.order = append(s.order, item.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.FeedbackItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.FeedbackItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FeedbackItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *cloneItem(s.items[id]))
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*models.FeedbackItem) error) (*models.FeedbackItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Mutate a copy so an aborting mutator leaves the stored record untouched.
	updated := cloneItem(current)
	if err := mutate(updated); err != nil {
		return nil, err
	}
	s.items[id] = updated
	return cloneItem(updated), nil
}

// cloneItem deep-copies an item so callers never alias stored state.
func cloneItem(item *models.FeedbackItem) *models.FeedbackItem {
	c := *item
	if item.ApprovedAt != nil {
		t := *item.ApprovedAt
		c.ApprovedAt = &t
	}
	if item.RejectedAt != nil {
		t := *item.RejectedAt
		c.RejectedAt = &t
	}
	if item.Moderator != nil {
		m := *item.Moderator
		c.Moderator = &m
	}
	return &c
}
