package models

import (
	"encoding/json"
	"time"
)

// Category names one of the four per-device data namespaces.
type Category string

const (
	CategoryLocations Category = "locations"
	CategoryContacts  Category = "contacts"
	CategorySMS       Category = "sms"
	CategoryGallery   Category = "gallery"
)

// LocationInput is a location fix as sent by the device. Coordinates are kept as
// the device wrote them, whatever their JSON type; any of them may be absent.
type LocationInput struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
	Accuracy  json.RawMessage `json:"accuracy"`
}

// LocationEntry is a stored location fix stamped with its arrival time.
// Absent coordinates are stored as JSON null.
type LocationEntry struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
	Accuracy  json.RawMessage `json:"accuracy"`
	Timestamp time.Time       `json:"timestamp"`
}

var jsonNull = json.RawMessage("null")

// CloneRaw copies v, turning an absent value into JSON null.
func CloneRaw(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return append(json.RawMessage(nil), jsonNull...)
	}
	return append(json.RawMessage(nil), v...)
}

// Snapshot is the replace-on-write shape used by contacts and gallery.
// UpdatedAt stays nil until the first upload.
type Snapshot struct {
	Data      []json.RawMessage `json:"data"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// EmptySnapshot is what reads return before anything was uploaded.
func EmptySnapshot() Snapshot {
	return Snapshot{Data: []json.RawMessage{}}
}

// SMSInput is one opaque SMS object as uploaded. Field values are kept verbatim.
type SMSInput map[string]json.RawMessage

// SMSRecord is an uploaded SMS object plus the instant it was appended.
type SMSRecord struct {
	Fields     map[string]json.RawMessage
	ReceivedAt time.Time
}

// MarshalJSON flattens the record so received_at sits next to the device's own fields.
func (r SMSRecord) MarshalJSON() ([]byte, error) {
	at, err := json.Marshal(r.ReceivedAt)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = CloneRaw(v)
	}
	out["received_at"] = at
	return json.Marshal(out)
}
