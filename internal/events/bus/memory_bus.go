package bus

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBus delivers messages in-process. Used when no Redis address is configured
// and in tests.
type MemoryBus struct {
	mu        sync.Mutex
	published []Message
	subs      map[int]func(Message)
	nextID    int
	closed    bool

	// FailPublish, when set, is returned by every Publish.
	FailPublish error
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[int]func(Message){}}
}

func (b *MemoryBus) Publish(_ context.Context, msg Message) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	if b.FailPublish != nil {
		err := b.FailPublish
		b.mu.Unlock()
		return err
	}
	b.published = append(b.published, msg)
	subs := make([]func(Message), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(m Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.subs = map[int]func(Message){}
	b.mu.Unlock()
	return nil
}

// Published returns a copy of every message accepted so far.
func (b *MemoryBus) Published() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.published...)
}
