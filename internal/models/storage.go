package models

import "time"

// StorageEntry is one durable key-value row. Deck state uses exactly two
// entries: the JSON-encoded deck collection and the active deck id.
type StorageEntry struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
