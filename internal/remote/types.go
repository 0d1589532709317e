package remote

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the backend's calendar-day format.
const DateLayout = "2006-01-02"

// Day is the backend calendar day containing t. Days are UTC, as the backend keys them.
func Day(t time.Time) string { return t.UTC().Format(DateLayout) }

// SensorSample is one set of readings as the backend stores it.
type SensorSample struct {
	Time        string  `json:"time,omitempty"`
	HeartRate   float64 `json:"heart_rate"`
	Steps       float64 `json:"steps"`
	Sleep       float64 `json:"sleep"`
	Temperature float64 `json:"temperature"`
	Activity    float64 `json:"activity,omitempty"`
}

// HasMetrics reports whether at least one of heart rate, steps, sleep or
// temperature is nonzero.
func (s SensorSample) HasMetrics() bool {
	return s.HeartRate != 0 || s.Steps != 0 || s.Sleep != 0 || s.Temperature != 0
}

// Reading is a single metric value.
type Reading struct {
	Metric string
	Value  float64
}

// Readings flattens the sample into metric/value pairs.
func (s SensorSample) Readings() []Reading {
	out := []Reading{
		{Metric: "heart_rate", Value: s.HeartRate},
		{Metric: "steps", Value: s.Steps},
		{Metric: "sleep", Value: s.Sleep},
		{Metric: "temperature", Value: s.Temperature},
	}
	if s.Activity != 0 {
		out = append(out, Reading{Metric: "activity", Value: s.Activity})
	}
	return out
}

// HealthLogEntry is a saved daily log. The client only ever holds read-only copies.
type HealthLogEntry struct {
	ID              string         `json:"_id"`
	UserID          string         `json:"user_id"`
	Date            string         `json:"date"`
	SensorData      []SensorSample `json:"sensor_data"`
	AnomalyScore    *float64       `json:"anomaly_score"`
	AnomalyDetected bool           `json:"anomaly_detected"`
	Feedback        string         `json:"chatbot_feedback"`
	Threshold       float64        `json:"threshold,omitempty"`
}

// TotalSteps sums steps across the entry's samples.
func (e HealthLogEntry) TotalSteps() float64 {
	var sum float64
	for _, s := range e.SensorData {
		sum += s.Steps
	}
	return sum
}

// AverageSleep averages sleep across the entry's samples; zero when empty.
func (e HealthLogEntry) AverageSleep() float64 {
	if len(e.SensorData) == 0 {
		return 0
	}
	var sum float64
	for _, s := range e.SensorData {
		sum += s.Sleep
	}
	return sum / float64(len(e.SensorData))
}

// Filters narrows a user lookup.
type Filters struct {
	Limit int
	Date  string // YYYY-MM-DD
}

type LookupResult struct {
	UserID  string           `json:"user_id"`
	Entries []HealthLogEntry `json:"data"`
	Count   int              `json:"count"`
}

// FeatureScore is a [name, score] pair from the backend's feature analysis.
type FeatureScore struct {
	Name  string
	Score float64
}

func (f *FeatureScore) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("feature score: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &f.Score)
}

func (f FeatureScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.Name, f.Score})
}

type FeatureAnalysis struct {
	FeatureScores map[string]float64 `json:"feature_scores,omitempty"`
	TopFeatures   []FeatureScore     `json:"top_anomalous_features,omitempty"`
}

// NotificationOutcome reports whether the backend started alerting contacts.
type NotificationOutcome struct {
	Sent    any    `json:"sent"`
	Message string `json:"message"`
}

// Prediction is the backend's anomaly-detection result for a sample.
type Prediction struct {
	UserID              string               `json:"user_id"`
	AnomalyScore        float64              `json:"anomaly_score"`
	ReconstructionError float64              `json:"reconstruction_error"`
	Threshold           float64              `json:"threshold"`
	AnomalyDetected     bool                 `json:"anomaly_detected"`
	FeatureAnalysis     FeatureAnalysis      `json:"feature_analysis"`
	Feedback            string               `json:"chatbot_feedback"`
	Notification        *NotificationOutcome `json:"notification,omitempty"`
}

// TopAnomalousFeatures returns the highest-deviation features, most anomalous first.
func (p Prediction) TopAnomalousFeatures() []FeatureScore {
	return p.FeatureAnalysis.TopFeatures
}

// UploadResult is a prediction computed from an uploaded export file.
type UploadResult struct {
	Prediction
	Message    string         `json:"message"`
	SensorData []SensorSample `json:"sensor_data"`
}

type SaveResult struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Statistics struct {
	UserID          string  `json:"user_id"`
	TotalLogs       int     `json:"total_logs"`
	AnomalyCount    int     `json:"anomaly_count"`
	AnomalyRate     float64 `json:"anomaly_rate"`
	AvgAnomalyScore float64 `json:"avg_anomaly_score"`
	MaxAnomalyScore float64 `json:"max_anomaly_score"`
	MinAnomalyScore float64 `json:"min_anomaly_score"`
}

type ChatReply struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}
