package buttons

import (
	"context"
	"sync"
)

type Event string

const (
	// Exit asks the app to shut down, like closing the window on a desktop.
	Exit Event = "exit"
)

type Buttons interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

// Channel is a Buttons fed by Send. It backs the keyboard watcher, the
// simulator and tests.
type Channel struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func NewChannel() *Channel { return &Channel{ch: make(chan Event, 4)} }

func (c *Channel) Start(context.Context) error { return nil }

func (c *Channel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}

func (c *Channel) Events() <-chan Event { return c.ch }

// Send queues ev without blocking. It reports false when the buffer is
// full or the channel was stopped.
func (c *Channel) Send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- ev:
		return true
	default:
		return false
	}
}
