package entity

import (
	"encoding/json"
	"time"
)

// Setting is a durable client-side record: the last used identifier,
// per-user goals, reminder preferences.
type Setting struct {
	ID        string          `json:"id"`
	Category  string          `json:"category,omitempty"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSetting creates a new Setting stamped with the current time.
func NewSetting(id string, category string, value json.RawMessage) *Setting {
	return &Setting{ID: id, Category: category, Value: value, UpdatedAt: time.Now().UTC()}
}
