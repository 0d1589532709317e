// Package status derives categorical health status from raw metrics.
// Every view classifies through these functions; thresholds live only here.
package status

import "math"

// DefaultThreshold applies when a log or prediction carries no per-user threshold.
const DefaultThreshold = 0.01

type HeartRate string

const (
	HeartRateLow    HeartRate = "low"
	HeartRateNormal HeartRate = "normal"
	HeartRateHigh   HeartRate = "high"
)

type Steps string

const (
	StepsInsufficient Steps = "insufficient"
	StepsModerate     Steps = "moderate"
	StepsGood         Steps = "good"
)

type Anomaly string

const (
	AnomalyNormal    Anomaly = "normal"
	AnomalyCaution   Anomaly = "caution"
	AnomalyAnomalous Anomaly = "anomalous"
)

// ClassifyHeartRate: <60 low, [60,100) normal, >=100 high.
func ClassifyHeartRate(bpm float64) HeartRate {
	switch {
	case bpm < 60:
		return HeartRateLow
	case bpm < 100:
		return HeartRateNormal
	default:
		return HeartRateHigh
	}
}

// ClassifySteps: <3000 insufficient, [3000,5000) moderate, >=5000 good.
func ClassifySteps(steps float64) Steps {
	switch {
	case steps < 3000:
		return StepsInsufficient
	case steps < 5000:
		return StepsModerate
	default:
		return StepsGood
	}
}

// ClassifyAnomaly compares score with threshold; a non-positive threshold means unset.
func ClassifyAnomaly(score, threshold float64) Anomaly {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	switch {
	case score > threshold:
		return AnomalyAnomalous
	case score > threshold*0.7:
		return AnomalyCaution
	default:
		return AnomalyNormal
	}
}

// ScoreInput is the data behind the composite health score.
// AnomalyScore is nil when no anomaly score is known.
type ScoreInput struct {
	AnomalyScore *float64
	Steps        float64
	Sleep        float64
	CheckedToday bool
}

// HealthScore returns the composite 0-100 wellness score.
func HealthScore(in ScoreInput) int {
	score := 100.0
	if in.AnomalyScore != nil {
		score -= math.Min(50, *in.AnomalyScore*5)
	}

	switch {
	case in.Steps >= 10000:
		score += 10
	case in.Steps < 1000:
		score -= 10
	}

	switch {
	case in.Sleep >= 7 && in.Sleep <= 9:
		score += 5
	case in.Sleep < 5 || in.Sleep > 10:
		score -= 10
	}

	if !in.CheckedToday {
		score -= 5
	}
	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// Grade buckets a health score for display.
type Grade string

const (
	GradeGood Grade = "good"
	GradeFair Grade = "fair"
	GradePoor Grade = "poor"
)

func GradeScore(score int) Grade {
	switch {
	case score >= 80:
		return GradeGood
	case score >= 60:
		return GradeFair
	default:
		return GradePoor
	}
}

// Activity estimates the activity value sent with a sample when none is supplied.
func Activity(steps float64) float64 {
	if steps > 0 {
		return math.Round(steps * 0.05)
	}
	return 300
}
