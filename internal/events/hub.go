package events

import (
	"context"
	"sync"
)

// DefaultSubscriberBuffer is the per-subscriber backlog before events are dropped.
const DefaultSubscriberBuffer = 64

type subscriber struct {
	ch chan Event
}

// Hub fans events out to local subscribers of a device, such as websocket feeds.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe returns a channel of events for deviceID and a function that ends the
// subscription and closes the channel.
func (h *Hub) Subscribe(deviceID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.subs[deviceID] == nil {
		h.subs[deviceID] = make(map[*subscriber]struct{})
	}
	h.subs[deviceID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[deviceID], sub)
			if len(h.subs[deviceID]) == 0 {
				delete(h.subs, deviceID)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Subscribers returns the number of live subscriptions for deviceID.
func (h *Hub) Subscribers(deviceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[deviceID])
}

// Publish delivers e to every subscriber of its device. Slow subscribers miss events.
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[e.DeviceID] {
		select {
		case sub.ch <- e:
		default:
		}
	}
	return nil
}
