package models

import (
	"time"
)

// Device is the identity record created once at registration.
type Device struct {
	ID             string    `json:"device_id"`
	Name           string    `json:"name"`
	RegisteredAt   time.Time `json:"registered_at"`
	Model          string    `json:"model"`
	AndroidVersion string    `json:"android_version"`
}

// DeviceInfo is the metadata view of a device without its id, as returned by login and fetch_all.
type DeviceInfo struct {
	Name           string    `json:"name"`
	RegisteredAt   time.Time `json:"registered_at"`
	Model          string    `json:"model"`
	AndroidVersion string    `json:"android_version"`
}

// Info strips the identifier.
func (d Device) Info() DeviceInfo {
	return DeviceInfo{
		Name:           d.Name,
		RegisteredAt:   d.RegisteredAt,
		Model:          d.Model,
		AndroidVersion: d.AndroidVersion,
	}
}
