package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/devicehub-backend/internal/models"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestHubDeliversOnlyToSubscribedDevice(t *testing.T) {
	h := NewHub(4)
	chA, unsubA := h.Subscribe("a")
	defer unsubA()
	chB, unsubB := h.Subscribe("b")
	defer unsubB()

	if err := h.Publish(context.Background(), Event{Type: TypeUpload, DeviceID: "a", Count: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case e := <-chA:
		if e.Count != 3 {
			t.Fatalf("count = %d", e.Count)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber a got nothing")
	}
	select {
	case e := <-chB:
		t.Fatalf("subscriber b got %+v", e)
	default:
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(1)
	ch, unsub := h.Subscribe("a")
	if h.Subscribers("a") != 1 {
		t.Fatalf("Subscribers = %d", h.Subscribers("a"))
	}
	unsub()
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after unsubscribe")
	}
	if h.Subscribers("a") != 0 {
		t.Fatalf("Subscribers after unsubscribe = %d", h.Subscribers("a"))
	}
	// publishing after unsubscribe must not panic
	_ = h.Publish(context.Background(), Event{DeviceID: "a"})
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub(1)
	ch, unsub := h.Subscribe("a")
	defer unsub()

	for i := 0; i < 3; i++ {
		_ = h.Publish(context.Background(), Event{DeviceID: "a", Count: i})
	}
	if e := <-ch; e.Count != 0 {
		t.Fatalf("first event count = %d, want 0", e.Count)
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected buffered event %+v", e)
	default:
	}
}

func TestMultiAttemptsAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{err: boom}
	b := &recorder{}

	err := Multi(a, b).Publish(context.Background(), Event{DeviceID: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(a.snapshot()) != 1 || len(b.snapshot()) != 1 {
		t.Fatal("not every publisher was called")
	}
	if Multi() != Nop {
		t.Fatal("Multi() should be Nop")
	}
}

func TestDispatcherDeliversInOrderAndFlushesOnStop(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, 16)

	for i := 0; i < 5; i++ {
		if err := d.Publish(context.Background(), Event{DeviceID: "a", Count: i}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	got := rec.snapshot()
	if len(got) != 5 {
		t.Fatalf("delivered %d events, want 5", len(got))
	}
	for i, e := range got {
		if e.Count != i {
			t.Fatalf("event %d has count %d", i, e.Count)
		}
	}
}

func TestDispatcherRejectsWhenFull(t *testing.T) {
	d := NewDispatcher(Nop, 1)
	if err := d.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	if err := d.Publish(context.Background(), Event{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if d.Dropped() != 1 {
		t.Fatalf("Dropped = %d", d.Dropped())
	}
}

func TestDecodeMessage(t *testing.T) {
	payload, err := json.Marshal(Event{Type: TypeUpload, DeviceID: "abc", Category: models.CategorySMS, Count: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	e, ok := decodeMessage(ChannelFor("abc"), string(payload))
	if !ok || e.Category != models.CategorySMS || e.Count != 2 {
		t.Fatalf("decodeMessage = %+v, %v", e, ok)
	}
	if _, ok := decodeMessage(ChannelFor("other"), string(payload)); ok {
		t.Fatal("accepted event published on another device's channel")
	}
	if _, ok := decodeMessage(ChannelFor("abc"), "{not json"); ok {
		t.Fatal("accepted malformed payload")
	}
}

func TestToArchiveDocument(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc, err := toArchiveDocument(Event{
		Type:     TypeUpload,
		DeviceID: "abc",
		Category: models.CategoryContacts,
		Count:    1,
		Payload:  json.RawMessage(`{"items":[{"name":"A"}]}`),
		At:       at,
	})
	if err != nil {
		t.Fatalf("toArchiveDocument: %v", err)
	}
	if doc.Category != "contacts" || doc.DeviceID != "abc" || !doc.At.Equal(at) {
		t.Fatalf("doc = %+v", doc)
	}
	if len(doc.Payload) != 1 || doc.Payload[0].Key != "items" {
		t.Fatalf("payload = %+v", doc.Payload)
	}
}
