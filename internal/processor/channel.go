package processor

import (
	"errors"
	"sync"
)

// ErrAlreadySubscribed is returned when a second handler is registered.
var ErrAlreadySubscribed = errors.New("event channel already has a subscriber")

// Channel delivers events from any number of publishers to exactly one
// handler. Publish only appends to an in-memory queue, so publishers never
// wait for the handler. A single dispatcher goroutine calls the handler in
// queue order.
type Channel struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Event
	handler func(Event)
	closed  bool
	done    chan struct{}
}

func NewChannel() *Channel {
	c := &Channel{done: make(chan struct{})}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Publish queues e for delivery. Events published after Close are dropped.
func (c *Channel) Publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.queue = append(c.queue, e)
	c.cond.Signal()
}

// Subscribe registers the handler and starts delivery, including events
// queued before this call.
func (c *Channel) Subscribe(handler func(Event)) error {
	if handler == nil {
		return errors.New("nil event handler")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler != nil {
		return ErrAlreadySubscribed
	}
	c.handler = handler
	go c.dispatch()
	return nil
}

// Close stops accepting events and waits until everything already queued
// has been handed to the subscriber. Without a subscriber the queue is
// discarded. Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	subscribed := c.handler != nil
	if !subscribed {
		c.queue = nil
	}
	c.cond.Broadcast()
	c.mu.Unlock()

	if subscribed {
		<-c.done
	}
}

func (c *Channel) dispatch() {
	defer close(c.done)
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()

		for _, e := range batch {
			c.handler(e)
		}
	}
}
