package entity

import "time"

// Phase is where an identifier sits in validation: Empty, Invalid, Pending or Valid.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseInvalid
	PhasePending
	PhaseValid
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseInvalid:
		return "invalid"
	case PhasePending:
		return "pending"
	case PhaseValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Reason explains an Invalid phase.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonCharset Reason = "charset"
	ReasonLength  Reason = "length"
)

// State is a snapshot of the validator. Seq is the generation of the input
// that produced it.
type State struct {
	Phase     Phase
	Reason    Reason
	Candidate string
	// Existing is informational: the backend already holds logs for Candidate.
	Existing bool
	Seq      uint64
}

// ValidationRequest is an existence check issued for one settled input.
// A newer input supersedes it; only the request whose Seq is still current may commit.
type ValidationRequest struct {
	Seq         uint64
	CandidateID string
	IssuedAt    time.Time
}
