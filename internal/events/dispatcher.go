package events

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"
)

const (
	// DefaultQueueSize bounds the events waiting for delivery
	DefaultQueueSize = 1024
	// DefaultPublishTimeout bounds a single delivery to the downstream publishers
	DefaultPublishTimeout = 5 * time.Second
)

var ErrQueueFull = errors.New("event queue full")

// Dispatcher decouples request handling from event sinks. Publish never blocks;
// a single worker delivers queued events in order.
type Dispatcher struct {
	queue   chan Event
	next    Publisher
	timeout time.Duration
	dropped atomic.Uint64
}

func NewDispatcher(next Publisher, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		queue:   make(chan Event, size),
		next:    next,
		timeout: DefaultPublishTimeout,
	}
}

// Publish enqueues e, or returns ErrQueueFull when the worker has fallen behind.
func (d *Dispatcher) Publish(_ context.Context, e Event) error {
	select {
	case d.queue <- e:
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped reports how many events were rejected because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Run delivers events until ctx is cancelled, then flushes what is already queued.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-d.queue:
					d.deliver(e)
				default:
					return
				}
			}
		case e := <-d.queue:
			d.deliver(e)
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.next.Publish(ctx, e); err != nil {
		log.Printf("event delivery failed (type=%s device=%s): %v", e.Type, e.DeviceID, err)
	}
}
