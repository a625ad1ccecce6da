package notify

import (
	"context"
	"fmt"
	"log"

	"pulse-backend/internal/models"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier delivers status-change events by email via Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     string
}

// NewEmailNotifier builds a notifier sending from `from` to the configured
// moderation mailbox `to`.
func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, item models.FeedbackItem) error {
	moderator := ""
	if item.Moderator != nil {
		moderator = *item.Moderator
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: fmt.Sprintf("Feedback %s: %s", item.Status, item.ID),
		Html: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #333;">Feedback %s</h2>
				<p><strong>Author:</strong> %s</p>
				<p><strong>Moderator:</strong> %s</p>
				<blockquote style="color: #666; border-left: 3px solid #6366f1; padding-left: 12px;">%s</blockquote>
			</div>
		`, item.Status, item.Author, moderator, item.Content),
	}

	sent, err := n.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("📧 Notification email sent (ID: %s) for feedback %s", sent.Id, item.ID)
	return nil
}
