package notify

import (
	"context"
	"log"

	"pulse-backend/internal/models"
)

// LogNotifier implements the Notifier interface by logging status-change
// events to stdout. Used when no delivery channel is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Publish(ctx context.Context, item models.FeedbackItem) error {
	moderator := ""
	if item.Moderator != nil {
		moderator = *item.Moderator
	}
	log.Printf("📨 Feedback status changed: id=%s status=%s author=%s moderator=%s",
		item.ID, item.Status, item.Author, moderator)
	return nil
}
