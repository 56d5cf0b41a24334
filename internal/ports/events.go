package ports

import "context"

// EventHandler processes one delivered message. Delivery is at-least-once
// and unordered; handlers must be idempotent.
type EventHandler func(ctx context.Context, payload []byte)

// EventBus is the pipeline's message transport.
type EventBus interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	// Subscribe registers a queue-group consumer for a subject. Workers in
	// the same queue share the subject's messages.
	Subscribe(subject string, queue string, handler EventHandler) error
}
