package fakes

import (
	"context"
	"errors"
	"sync"
)

// PublishedMessage is one captured Publish call.
type PublishedMessage struct {
	Key   string
	Value interface{}
}

// FakePublisher captures published messages and can simulate failures.
type FakePublisher struct {
	mu        sync.Mutex
	Messages  []PublishedMessage
	FailNext  bool
	FailAll   bool
	FailError error
	// Hang blocks every Publish until its context is done, like an unreachable broker.
	Hang bool
}

func (p *FakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	hang := p.Hang
	p.mu.Unlock()
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext || p.FailAll {
		p.FailNext = false
		if p.FailError == nil {
			p.FailError = errors.New("publish failed")
		}
		return p.FailError
	}
	p.Messages = append(p.Messages, PublishedMessage{Key: key, Value: value})
	return nil
}

// Published returns a copy of the captured messages.
func (p *FakePublisher) Published() []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedMessage(nil), p.Messages...)
}
