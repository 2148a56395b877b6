// Package events carries ingestion events from the service to live feeds and archives.
//
// The in-memory stores remain the only source for reads; everything here is a
// side channel that may lag or drop events without affecting request outcomes.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/AnshRaj112/devicehub-backend/internal/models"
)

// Type classifies an event.
type Type string

const (
	TypeRegistered Type = "device_registered"
	TypeUpload     Type = "upload"
)

// Event describes one accepted registration or upload.
type Event struct {
	Type     Type            `json:"type"`
	DeviceID string          `json:"device_id"`
	Category models.Category `json:"category,omitempty"`
	Count    int             `json:"count"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	At       time.Time       `json:"at"`
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

// Nop discards every event.
var Nop Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

type multi []Publisher

// Multi fans an event out to every publisher; all are attempted and their errors joined.
func Multi(pubs ...Publisher) Publisher {
	switch len(pubs) {
	case 0:
		return Nop
	case 1:
		return pubs[0]
	}
	return multi(pubs)
}

func (m multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
