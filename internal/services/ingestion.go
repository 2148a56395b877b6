package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AnshRaj112/devicehub-backend/internal/auth"
	"github.com/AnshRaj112/devicehub-backend/internal/credentials"
	"github.com/AnshRaj112/devicehub-backend/internal/events"
	"github.com/AnshRaj112/devicehub-backend/internal/models"
	"github.com/AnshRaj112/devicehub-backend/pkg/utils"
)

// DeviceRegistry allocates device ids and stores device metadata.
// Reserved devices stay hidden until committed.
type DeviceRegistry interface {
	Reserve(name, model, androidVersion string) (models.Device, error)
	Commit(id string) error
	Get(id string) (models.Device, error)
	List() []models.Device
	Discard(id string)
}

// CredentialStore issues and resolves bearer tokens.
type CredentialStore interface {
	Issue(deviceID string) (string, error)
	Resolve(token string) (string, error)
	Discard(token string)
}

// CategoryStore keeps the four per-device namespaces.
type CategoryStore interface {
	Initialize(deviceID string) error
	Drop(deviceID string)
	AppendLocation(deviceID string, in models.LocationInput) (models.LocationEntry, error)
	ReplaceContacts(deviceID string, contacts []json.RawMessage) (int, error)
	AppendSMS(deviceID string, items []models.SMSInput) (int, error)
	ReplaceGallery(deviceID string, items []json.RawMessage) (int, error)
	Locations(deviceID string) []models.LocationEntry
	Contacts(deviceID string) models.Snapshot
	SMS(deviceID string) []models.SMSRecord
	Gallery(deviceID string) models.Snapshot
}

// RegisterInput is what a device sends to register.
type RegisterInput struct {
	DeviceName     string
	Model          string
	AndroidVersion string
}

// Registration is the outcome of a successful register call.
type Registration struct {
	Device   models.Device
	APIToken string
}

// FetchAllResult aggregates every category of one device.
type FetchAllResult struct {
	DeviceID   string                 `json:"device_id"`
	DeviceInfo models.DeviceInfo      `json:"device_info"`
	Locations  []models.LocationEntry `json:"locations"`
	Contacts   models.Snapshot        `json:"contacts"`
	SMS        []models.SMSRecord     `json:"sms"`
	Gallery    models.Snapshot        `json:"gallery"`
}

// IngestionService orchestrates registration, uploads and fetches.
// Device-scoped methods take a device id that the caller has already authenticated.
type IngestionService struct {
	devices    DeviceRegistry
	tokens     CredentialStore
	categories CategoryStore
	events     events.Publisher
	now        func() time.Time
}

func NewIngestionService(devices DeviceRegistry, tokens CredentialStore, categories CategoryStore, pub events.Publisher) *IngestionService {
	if pub == nil {
		pub = events.Nop
	}
	return &IngestionService{
		devices:    devices,
		tokens:     tokens,
		categories: categories,
		events:     pub,
		now:        time.Now,
	}
}

// Register creates the device, its token and its empty category buckets as one unit.
// The device only becomes visible once every step has succeeded; when a later step
// fails the earlier ones are undone.
func (s *IngestionService) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	dev, err := s.devices.Reserve(in.DeviceName, in.Model, in.AndroidVersion)
	if err != nil {
		return Registration{}, fmt.Errorf("register device: %w", err)
	}

	token, err := s.tokens.Issue(dev.ID)
	if err != nil {
		s.devices.Discard(dev.ID)
		return Registration{}, fmt.Errorf("register device: %w", err)
	}

	if err := s.categories.Initialize(dev.ID); err != nil {
		s.tokens.Discard(token)
		s.devices.Discard(dev.ID)
		return Registration{}, fmt.Errorf("register device: %w", err)
	}

	if err := s.devices.Commit(dev.ID); err != nil {
		s.categories.Drop(dev.ID)
		s.tokens.Discard(token)
		s.devices.Discard(dev.ID)
		return Registration{}, fmt.Errorf("register device: %w", err)
	}

	s.emit(ctx, events.TypeRegistered, dev.ID, "", 0, map[string]string{
		"name":            dev.Name,
		"model":           dev.Model,
		"android_version": dev.AndroidVersion,
	})
	return Registration{Device: dev, APIToken: token}, nil
}

// Login resolves a token to its device.
func (s *IngestionService) Login(ctx context.Context, token string) (models.Device, error) {
	// Only an absent token is a bad request; anything else is checked against the store.
	if token == "" {
		return models.Device{}, &utils.ValidationError{Field: "api_token", Message: "api_token required"}
	}
	deviceID, err := s.tokens.Resolve(token)
	if err != nil {
		if errors.Is(err, credentials.ErrInvalidCredential) {
			return models.Device{}, auth.ErrUnauthorized
		}
		return models.Device{}, fmt.Errorf("login: %w", err)
	}
	dev, err := s.devices.Get(deviceID)
	if err != nil {
		return models.Device{}, fmt.Errorf("login: %w", err)
	}
	return dev, nil
}

// UploadLocation appends one location fix.
func (s *IngestionService) UploadLocation(ctx context.Context, deviceID string, in models.LocationInput) (models.LocationEntry, error) {
	entry, err := s.categories.AppendLocation(deviceID, in)
	if err != nil {
		return models.LocationEntry{}, fmt.Errorf("upload location: %w", err)
	}
	s.emit(ctx, events.TypeUpload, deviceID, models.CategoryLocations, 1, entry)
	return entry, nil
}

// UploadContacts replaces the contacts snapshot.
func (s *IngestionService) UploadContacts(ctx context.Context, deviceID string, contacts []json.RawMessage) (int, error) {
	n, err := s.categories.ReplaceContacts(deviceID, contacts)
	if err != nil {
		return 0, fmt.Errorf("upload contacts: %w", err)
	}
	s.emit(ctx, events.TypeUpload, deviceID, models.CategoryContacts, n, itemsPayload{Items: contacts})
	return n, nil
}

// UploadSMS appends SMS items, each stamped on arrival.
func (s *IngestionService) UploadSMS(ctx context.Context, deviceID string, items []models.SMSInput) (int, error) {
	n, err := s.categories.AppendSMS(deviceID, items)
	if err != nil {
		return 0, fmt.Errorf("upload sms: %w", err)
	}
	s.emit(ctx, events.TypeUpload, deviceID, models.CategorySMS, n, itemsPayload{Items: items})
	return n, nil
}

// UploadGallery replaces the gallery metadata snapshot.
func (s *IngestionService) UploadGallery(ctx context.Context, deviceID string, items []json.RawMessage) (int, error) {
	n, err := s.categories.ReplaceGallery(deviceID, items)
	if err != nil {
		return 0, fmt.Errorf("upload gallery: %w", err)
	}
	s.emit(ctx, events.TypeUpload, deviceID, models.CategoryGallery, n, itemsPayload{Items: items})
	return n, nil
}

// FetchAll returns the device metadata and every category.
func (s *IngestionService) FetchAll(ctx context.Context, deviceID string) (FetchAllResult, error) {
	dev, err := s.devices.Get(deviceID)
	if err != nil {
		return FetchAllResult{}, fmt.Errorf("fetch all: %w", err)
	}
	return FetchAllResult{
		DeviceID:   deviceID,
		DeviceInfo: dev.Info(),
		Locations:  s.categories.Locations(deviceID),
		Contacts:   s.categories.Contacts(deviceID),
		SMS:        s.categories.SMS(deviceID),
		Gallery:    s.categories.Gallery(deviceID),
	}, nil
}

func (s *IngestionService) FetchLocations(ctx context.Context, deviceID string) []models.LocationEntry {
	return s.categories.Locations(deviceID)
}

func (s *IngestionService) FetchContacts(ctx context.Context, deviceID string) models.Snapshot {
	return s.categories.Contacts(deviceID)
}

func (s *IngestionService) FetchSMS(ctx context.Context, deviceID string) []models.SMSRecord {
	return s.categories.SMS(deviceID)
}

func (s *IngestionService) FetchGallery(ctx context.Context, deviceID string) models.Snapshot {
	return s.categories.Gallery(deviceID)
}

// ListDevices returns every registered device in registration order.
func (s *IngestionService) ListDevices(ctx context.Context) []models.Device {
	return s.devices.List()
}

type itemsPayload struct {
	Items any `json:"items"`
}

// emit hands an event to the publisher. Failures are logged and never reach the caller.
func (s *IngestionService) emit(ctx context.Context, typ events.Type, deviceID string, category models.Category, count int, payload any) {
	e := events.Event{
		Type:     typ,
		DeviceID: deviceID,
		Category: category,
		Count:    count,
		At:       s.now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("⚠️  event payload for %s dropped: %v", deviceID, err)
		} else {
			e.Payload = data
		}
	}
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("⚠️  event for %s not published: %v", deviceID, err)
	}
}
