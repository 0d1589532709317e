package entity

import (
	goalentity "github.com/parkbj12/songil-ai/internal/goal/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/status"
)

// Result is the outcome of one manual check. Prediction is set once predict
// succeeded, even when the save that follows failed.
type Result struct {
	CheckID    string
	UserID     string
	Date       string
	Sample     remote.SensorSample
	Prediction *remote.Prediction
	Anomaly    status.Anomaly
	Saved      bool
	DocumentID string
	// Summary and Progress are refreshed after a save; nil when the refresh failed.
	Summary  *Summary
	Progress *goalentity.Progress
}

// Summary is today's at-a-glance state for the session user.
type Summary struct {
	Date         string
	CheckedToday bool
	// Score and Grade are only set when CheckedToday.
	Score        *int
	Grade        status.Grade
	ContactCount int
	Entry        *remote.HealthLogEntry
}
