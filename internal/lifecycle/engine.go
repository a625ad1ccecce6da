package lifecycle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"pulse-backend/internal/audit"
	"pulse-backend/internal/models"
	"pulse-backend/internal/notify"
	"pulse-backend/internal/screening"
	"pulse-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Content length bounds, counted in Unicode code points.
	MinContentLength = 5
	MaxContentLength = 500
)

// Engine owns the feedback lifecycle: submission, listing, and the one-shot
// pending → {approved, rejected} transition. All state lives in the injected
// store; the engine holds no item copies across calls.
type Engine struct {
	store      store.Store
	screener   *screening.Screener
	dispatcher *notify.Dispatcher
	audit      *audit.Logger

	now   func() time.Time
	newID func() string
}

func NewEngine(st store.Store, screener *screening.Screener, dispatcher *notify.Dispatcher, auditLog *audit.Logger) *Engine {
	return &Engine{
		store:      st,
		screener:   screener,
		dispatcher: dispatcher,
		audit:      auditLog,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Submit screens and stores a new feedback item for the given author.
// Content blocked by the screener is never stored: rejection for disallowed
// content happens before any record exists.
func (e *Engine) Submit(ctx context.Context, actor models.Identity, content string) (*models.FeedbackItem, error) {
	if n := utf8.RuneCountInString(content); n < MinContentLength || n > MaxContentLength {
		e.audit.Event("submission_invalid",
			zap.String("user", actor.Username),
			zap.Int("content_length", n))
		return nil, &ValidationError{Reason: "feedback content must be between 5 and 500 characters"}
	}

	if term, found := e.screener.Screen(content); found {
		e.audit.Event("submission_rejected_profanity",
			zap.String("user", actor.Username),
			zap.String("term", term))
		return nil, &ContentRejectedError{Term: term}
	}

	item := &models.FeedbackItem{
		ID:        e.newID(),
		Content:   content,
		Status:    models.StatusPending,
		Author:    actor.Username,
		CreatedAt: e.now(),
	}
	if err := e.store.Insert(ctx, item); err != nil {
		return nil, err
	}

	e.audit.Event("submitted",
		zap.String("user", actor.Username),
		zap.String("feedback_id", item.ID))
	return item, nil
}

// Transition moves a pending item to approved or rejected. Preconditions are
// checked in order, first failure wins: moderator role, item exists, target is
// terminal, item still pending. An item that has reached a terminal status can
// never be moved again, not even to the opposite one.
func (e *Engine) Transition(ctx context.Context, actor models.Identity, id string, target models.Status) (*models.FeedbackItem, error) {
	if actor.Role != models.RoleModerator {
		e.audit.Event("transition_forbidden",
			zap.String("user", actor.Username),
			zap.String("feedback_id", id))
		return nil, ErrForbidden
	}

	existing, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		e.audit.Event("transition_failed",
			zap.String("moderator", actor.Username),
			zap.String("feedback_id", id),
			zap.String("reason", "not found"))
		return nil, ErrNotFound
	}

	if target != models.StatusApproved && target != models.StatusRejected {
		e.audit.Event("transition_failed",
			zap.String("moderator", actor.Username),
			zap.String("feedback_id", id),
			zap.String("reason", "invalid target status"))
		return nil, ErrInvalidStatus
	}

	moderator := actor.Username
	updated, err := e.store.Update(ctx, id, func(item *models.FeedbackItem) error {
		// Re-checked inside the store's critical section: of two concurrent
		// transitions exactly one observes pending.
		if item.Status != models.StatusPending {
			return &AlreadyFinalizedError{Current: item.Status}
		}
		now := e.now()
		item.Status = target
		item.Moderator = &moderator
		switch target {
		case models.StatusApproved:
			item.ApprovedAt = &now
			// Clearing the opposite timestamp repairs a corrupted record;
			// under the one-shot invariant it is already nil.
			item.RejectedAt = nil
		case models.StatusRejected:
			item.RejectedAt = &now
			item.ApprovedAt = nil
		}
		return nil
	})
	if err != nil {
		var finalized *AlreadyFinalizedError
		if errors.As(err, &finalized) {
			e.audit.Event("transition_rejected_finalized",
				zap.String("moderator", actor.Username),
				zap.String("feedback_id", id),
				zap.String("current_status", string(finalized.Current)))
			return nil, err
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	e.audit.Event("status_changed",
		zap.String("moderator", actor.Username),
		zap.String("feedback_id", id),
		zap.String("new_status", string(target)))

	e.dispatcher.Enqueue(*updated)
	return updated, nil
}

// ListQuery narrows and windows the moderator listing. Status and Query are
// ignored when empty. A status value that names no known state simply matches
// nothing.
type ListQuery struct {
	Status string
	Query  string
	Skip   int
	Limit  int
}

// List returns feedback visible to moderators, filtered, sorted by creation
// time descending (ties keep store insertion order), then windowed by
// skip/limit. Out-of-range windows yield an empty or truncated result.
func (e *Engine) List(ctx context.Context, actor models.Identity, q ListQuery) ([]models.FeedbackItem, error) {
	if actor.Role != models.RoleModerator {
		e.audit.Event("list_forbidden", zap.String("user", actor.Username))
		return nil, ErrForbidden
	}

	items, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := items[:0:0]
	needle := strings.ToLower(q.Query)
	for _, item := range items {
		if q.Status != "" && string(item.Status) != q.Status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(item.Content), needle) {
			continue
		}
		filtered = append(filtered, item)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	e.audit.Event("feedback_listed",
		zap.String("moderator", actor.Username),
		zap.Int("total", len(filtered)))

	return window(filtered, q.Skip, q.Limit), nil
}

func window(items []models.FeedbackItem, skip, limit int) []models.FeedbackItem {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if skip >= len(items) {
		return []models.FeedbackItem{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
