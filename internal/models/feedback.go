package models

import "time"

// Status is the moderation state of a feedback item. The state machine is
// strictly pending → {approved, rejected}; a terminal state never changes again.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether s is a final moderation state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type FeedbackItem struct {
	ID         string     `bson:"_id" json:"id"`
	Content    string     `bson:"content" json:"content"`
	Status     Status     `bson:"status" json:"status"`
	Author     string     `bson:"author" json:"author"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approved_at"`
	RejectedAt *time.Time `bson:"rejected_at,omitempty" json:"rejected_at"`
	Moderator  *string    `bson:"moderator,omitempty" json:"moderator"`
}
