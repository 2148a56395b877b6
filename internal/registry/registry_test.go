package registry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/devicehub-backend/pkg/utils"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestRegisterDefaultsAndLookup(t *testing.T) {
	r := New(nil)

	dev, err := r.Register("kid-phone", "", " ")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(dev.ID) != IDLength {
		t.Fatalf("id length = %d, want %d", len(dev.ID), IDLength)
	}
	if dev.Model != utils.UnknownValue || dev.AndroidVersion != utils.UnknownValue {
		t.Fatalf("optional fields = %q/%q, want Unknown", dev.Model, dev.AndroidVersion)
	}

	got, err := r.Get(dev.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != dev {
		t.Fatalf("Get = %+v, want %+v", got, dev)
	}
}

func TestRegisterRequiresName(t *testing.T) {
	r := New(nil)
	_, err := r.Register("  ", "pixel", "14")
	if !utils.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(r.List()) != 0 {
		t.Fatal("failed registration left a device behind")
	}
}

func TestRegisterSameNameSameInstantYieldsDistinctIDs(t *testing.T) {
	r := New(fixedClock())

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		dev, err := r.Register("tablet", "", "")
		if err != nil {
			t.Fatalf("Register #%d: %v", i, err)
		}
		if seen[dev.ID] {
			t.Fatalf("duplicate id %s", dev.ID)
		}
		seen[dev.ID] = true
	}
}

func TestRegisterExhaustsAttempts(t *testing.T) {
	r := New(fixedClock())
	for i := 0; i < maxIDAttempts; i++ {
		if _, err := r.Register("tablet", "", ""); err != nil {
			t.Fatalf("Register #%d: %v", i, err)
		}
	}
	if _, err := r.Register("tablet", "", ""); !errors.Is(err, ErrIDExhausted) {
		t.Fatalf("err = %v, want ErrIDExhausted", err)
	}
}

func TestGetUnknown(t *testing.T) {
	r := New(nil)
	if _, err := r.Get("nope"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestListKeepsInsertionOrderAndDiscard(t *testing.T) {
	r := New(nil)
	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		dev, err := r.Register(name, "", "")
		if err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
		ids = append(ids, dev.ID)
	}

	r.Discard(ids[1])

	list := r.List()
	if len(list) != 2 || list[0].ID != ids[0] || list[1].ID != ids[2] {
		t.Fatalf("List after discard = %+v", list)
	}
	if _, err := r.Get(ids[1]); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("discarded device still resolvable: %v", err)
	}
}

func TestConcurrentRegisterUnique(t *testing.T) {
	r := New(nil)
	const n = 64

	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dev, err := r.Register("same-name", "", "")
			if err != nil {
				t.Errorf("Register: %v", err)
				return
			}
			ids <- dev.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(r.List()) != n {
		t.Fatalf("List len = %d, want %d", len(r.List()), n)
	}
}

func TestReservedDeviceHiddenUntilCommit(t *testing.T) {
	r := New(fixedClock())

	dev, err := r.Reserve("tablet", "", "")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(r.List()) != 0 {
		t.Fatal("reserved device is listed before commit")
	}
	if _, err := r.Get(dev.ID); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("Get before commit err = %v", err)
	}

	// A reservation still claims its id
	other, err := r.Reserve("tablet", "", "")
	if err != nil {
		t.Fatalf("second Reserve: %v", err)
	}
	if other.ID == dev.ID {
		t.Fatal("reserved id handed out twice")
	}

	if err := r.Commit(dev.ID); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if list := r.List(); len(list) != 1 || list[0].ID != dev.ID {
		t.Fatalf("List after commit = %+v", list)
	}

	r.Discard(other.ID)
	if err := r.Commit(other.ID); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("Commit of discarded reservation err = %v", err)
	}
	if len(r.List()) != 1 {
		t.Fatal("discarded reservation became visible")
	}
}
