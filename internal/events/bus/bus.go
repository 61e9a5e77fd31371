package bus

import (
	"context"
	"encoding/json"
	"time"
)

// Message is one domain event as it travels on the bus.
type Message struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type Bus interface {
	Publish(ctx context.Context, msg Message) error
	// StartForwarder subscribes and calls onMsg for every message until ctx is done.
	StartForwarder(ctx context.Context, onMsg func(m Message)) error
	Close() error
}
