package entity

// HealthGoals are a user's daily targets. A nil target is unset.
type HealthGoals struct {
	Steps *float64 `json:"steps,omitempty"`
	Sleep *float64 `json:"sleep,omitempty"`
}

// Progress is percent of each goal reached, capped at 100. Nil when the goal
// is unset or there is nothing to measure.
type Progress struct {
	Steps *float64 `json:"steps,omitempty"`
	Sleep *float64 `json:"sleep,omitempty"`
}

func (p Progress) Empty() bool { return p.Steps == nil && p.Sleep == nil }
