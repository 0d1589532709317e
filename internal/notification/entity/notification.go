package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle of a backend notification: pending -> read -> responded.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRead      Status = "read"
	StatusResponded Status = "responded"
)

func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRead:
		return 1
	case StatusResponded:
		return 2
	default:
		return -1
	}
}

// Notification is a health-check prompt the backend queued for a user.
type Notification struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user_id,omitempty"`
	Type      string    `json:"notification_type,omitempty"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`
}

// Advance moves the notification forward to next. It never regresses and
// reports whether the status changed.
func (n *Notification) Advance(next Status) bool {
	if next.rank() <= n.Status.rank() {
		return false
	}
	n.Status = next
	return true
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO form the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
