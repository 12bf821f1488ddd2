package messaging

import (
	"context"
)

// Queue represents an abstract ordered queue for any payload type. The kernel
// relies on a single consumer draining it to serialize interrupt handling, so
// implementations must preserve publish order.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack records a processing failure. Messages are never redelivered -
	// requeueing would break the ordering guarantee consumers depend on.
	Nack(err error) error
}
