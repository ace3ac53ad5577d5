package queue

import "context"

// Publisher publishes verification messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg VerificationMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg VerificationMessage) error

// Consumer consumes verification messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

const (
	// VerifyQueue is the durable work queue for async verification jobs.
	VerifyQueue = "verify"

	// VerifyDLQ receives messages rejected as unprocessable.
	VerifyDLQ = "dlq.verify"
)
