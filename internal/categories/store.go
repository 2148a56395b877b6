// Package categories keeps the per-device telemetry namespaces.
//
// Locations and SMS are append logs; contacts and gallery are snapshots that
// every upload replaces. Writes require the device to have been initialized at
// registration; reads are total and return empty defaults for unknown ids.
package categories

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/AnshRaj112/devicehub-backend/internal/models"
)

var (
	ErrUnknownDevice      = errors.New("device has no category buckets")
	ErrAlreadyInitialized = errors.New("device category buckets already initialized")
)

type bucket struct {
	mu        sync.RWMutex
	locations []models.LocationEntry
	contacts  models.Snapshot
	sms       []models.SMSRecord
	gallery   models.Snapshot
}

// Store holds one bucket per device. The store lock only guards the bucket map;
// each bucket serializes its own readers and writers.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	now     func() time.Time
}

// New returns an empty store. now may be nil, in which case time.Now is used.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// Initialize creates empty entries in all four namespaces for deviceID.
func (s *Store) Initialize(deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[deviceID]; ok {
		return ErrAlreadyInitialized
	}
	s.buckets[deviceID] = &bucket{
		locations: []models.LocationEntry{},
		contacts:  models.EmptySnapshot(),
		sms:       []models.SMSRecord{},
		gallery:   models.EmptySnapshot(),
	}
	return nil
}

// Drop removes the buckets of a device whose registration was rolled back.
func (s *Store) Drop(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, deviceID)
}

// Has reports whether deviceID was initialized.
func (s *Store) Has(deviceID string) bool {
	return s.lookup(deviceID) != nil
}

func (s *Store) lookup(deviceID string) *bucket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buckets[deviceID]
}

// AppendLocation stores a location fix stamped with the server's arrival time.
func (s *Store) AppendLocation(deviceID string, in models.LocationInput) (models.LocationEntry, error) {
	b := s.lookup(deviceID)
	if b == nil {
		return models.LocationEntry{}, ErrUnknownDevice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry := models.LocationEntry{
		Latitude:  models.CloneRaw(in.Latitude),
		Longitude: models.CloneRaw(in.Longitude),
		Accuracy:  models.CloneRaw(in.Accuracy),
		Timestamp: s.now().UTC(),
	}
	b.locations = append(b.locations, entry)
	return entry, nil
}

// ReplaceContacts overwrites the contacts snapshot and returns the number of items written.
func (s *Store) ReplaceContacts(deviceID string, contacts []json.RawMessage) (int, error) {
	return s.replace(deviceID, contacts, func(b *bucket) *models.Snapshot { return &b.contacts })
}

// ReplaceGallery overwrites the gallery snapshot and returns the number of items written.
func (s *Store) ReplaceGallery(deviceID string, items []json.RawMessage) (int, error) {
	return s.replace(deviceID, items, func(b *bucket) *models.Snapshot { return &b.gallery })
}

func (s *Store) replace(deviceID string, items []json.RawMessage, field func(*bucket) *models.Snapshot) (int, error) {
	b := s.lookup(deviceID)
	if b == nil {
		return 0, ErrUnknownDevice
	}

	data := cloneRaw(items)

	b.mu.Lock()
	defer b.mu.Unlock()

	updatedAt := s.now().UTC()
	*field(b) = models.Snapshot{Data: data, UpdatedAt: &updatedAt}
	return len(data), nil
}

// AppendSMS appends every item, stamping each with its own arrival instant.
func (s *Store) AppendSMS(deviceID string, items []models.SMSInput) (int, error) {
	b := s.lookup(deviceID)
	if b == nil {
		return 0, ErrUnknownDevice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range items {
		fields := make(map[string]json.RawMessage, len(item))
		for k, v := range item {
			fields[k] = models.CloneRaw(v)
		}
		b.sms = append(b.sms, models.SMSRecord{Fields: fields, ReceivedAt: s.now().UTC()})
	}
	return len(items), nil
}

// Locations returns a copy of the location log in arrival order.
func (s *Store) Locations(deviceID string) []models.LocationEntry {
	b := s.lookup(deviceID)
	if b == nil {
		return []models.LocationEntry{}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.LocationEntry, len(b.locations))
	copy(out, b.locations)
	return out
}

// Contacts returns the current contacts snapshot.
func (s *Store) Contacts(deviceID string) models.Snapshot {
	return s.snapshot(deviceID, func(b *bucket) models.Snapshot { return b.contacts })
}

// Gallery returns the current gallery snapshot.
func (s *Store) Gallery(deviceID string) models.Snapshot {
	return s.snapshot(deviceID, func(b *bucket) models.Snapshot { return b.gallery })
}

func (s *Store) snapshot(deviceID string, field func(*bucket) models.Snapshot) models.Snapshot {
	b := s.lookup(deviceID)
	if b == nil {
		return models.EmptySnapshot()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := field(b)
	// Data slices are never mutated in place after a replace, so sharing them is safe.
	out := models.Snapshot{Data: snap.Data}
	if snap.UpdatedAt != nil {
		at := *snap.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

// SMS returns a copy of the SMS log in arrival order.
func (s *Store) SMS(deviceID string) []models.SMSRecord {
	b := s.lookup(deviceID)
	if b == nil {
		return []models.SMSRecord{}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.SMSRecord, len(b.sms))
	copy(out, b.sms)
	return out
}

func cloneRaw(items []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		out[i] = append(json.RawMessage(nil), item...)
	}
	return out
}
