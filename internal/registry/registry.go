package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/devicehub-backend/internal/models"
	"github.com/AnshRaj112/devicehub-backend/pkg/utils"
)

const (
	// IDLength is the number of hex characters kept from the digest
	IDLength = 16
	// maxIDAttempts bounds regeneration when a derived id is already taken
	maxIDAttempts = 8
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrIDExhausted    = errors.New("could not allocate a unique device id")
)

// Registry allocates device identifiers and keeps device metadata in memory.
// A reserved device holds its id but stays invisible to Get and List until it is
// committed.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]models.Device
	pending map[string]models.Device
	order   []string
	now     func() time.Time
}

// New returns an empty registry. now may be nil, in which case time.Now is used.
func New(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		devices: make(map[string]models.Device),
		pending: make(map[string]models.Device),
		now:     now,
	}
}

// Reserve allocates a device id and holds the device until Commit or Discard.
// The id is derived from the name and the registration instant; a taken id is
// regenerated with a retry counter mixed in.
func (r *Registry) Reserve(name, model, androidVersion string) (models.Device, error) {
	if err := utils.Required("device_name", name); err != nil {
		return models.Device{}, err
	}

	registeredAt := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := deriveID(name, registeredAt, attempt)
		if r.taken(id) {
			continue
		}
		dev := models.Device{
			ID:             id,
			Name:           name,
			RegisteredAt:   registeredAt,
			Model:          utils.OrUnknown(model),
			AndroidVersion: utils.OrUnknown(androidVersion),
		}
		r.pending[id] = dev
		return dev, nil
	}
	return models.Device{}, fmt.Errorf("%w for %q", ErrIDExhausted, name)
}

// Commit makes a reserved device visible to Get and List.
func (r *Registry) Commit(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.pending[id]
	if !ok {
		return ErrDeviceNotFound
	}
	delete(r.pending, id)
	r.devices[id] = dev
	r.order = append(r.order, id)
	return nil
}

// Register reserves and commits a device in one step.
func (r *Registry) Register(name, model, androidVersion string) (models.Device, error) {
	dev, err := r.Reserve(name, model, androidVersion)
	if err != nil {
		return models.Device{}, err
	}
	return dev, r.Commit(dev.ID)
}

func (r *Registry) taken(id string) bool {
	_, committed := r.devices[id]
	_, reserved := r.pending[id]
	return committed || reserved
}

// Get returns the committed device with the given id.
func (r *Registry) Get(id string) (models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[id]
	if !ok {
		return models.Device{}, ErrDeviceNotFound
	}
	return dev, nil
}

// List returns every device in registration order.
func (r *Registry) List() []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Device, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.devices[id])
	}
	return out
}

// Discard removes a device whose registration could not be completed.
// It is not a deletion API: callers outside registration rollback must not use it.
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[id]; ok {
		delete(r.pending, id)
		return
	}
	if _, ok := r.devices[id]; !ok {
		return
	}
	delete(r.devices, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func deriveID(name string, at time.Time, attempt int) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(at.Format(time.RFC3339Nano))
	if attempt > 0 {
		fmt.Fprintf(&b, "#%d", attempt)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:IDLength]
}
