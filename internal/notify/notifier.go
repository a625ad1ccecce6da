package notify

import (
	"context"
	"log"

	"pulse-backend/internal/models"
)

// Notifier delivers a finalized status-change event to some channel.
// This abstraction allows swapping the log-only notifier with a real delivery
// integration without refactoring.
type Notifier interface {
	Publish(ctx context.Context, item models.FeedbackItem) error
}

// Dispatcher hands finalized items to a worker goroutine for delivery, keeping
// notification out of the critical path of the transition response. Enqueue
// never blocks and delivery failures are logged, never surfaced: a failed
// notification must not turn a successful transition into a failed response.
type Dispatcher struct {
	notifier Notifier
	queue    chan models.FeedbackItem
	done     chan struct{}
}

// NewDispatcher starts the delivery worker. buffer bounds the number of
// pending notifications; overflow is dropped with a log line.
func NewDispatcher(notifier Notifier, buffer int) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		queue:    make(chan models.FeedbackItem, buffer),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands off a finalized item for asynchronous delivery. Fire-and-forget.
func (d *Dispatcher) Enqueue(item models.FeedbackItem) {
	select {
	case d.queue <- item:
	default:
		log.Printf("⚠️  Notification queue full, dropping event for feedback %s", item.ID)
	}
}

// Close stops accepting events and waits for queued deliveries to drain.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for item := range d.queue {
		if err := d.notifier.Publish(context.Background(), item); err != nil {
			log.Printf("Error publishing notification for feedback %s: %v", item.ID, err)
		}
	}
}
