package domain

import (
	"time"

	"github.com/google/uuid"
)

type FetchResource string

const (
	ResourceUsers FetchResource = "users"
	ResourceUser  FetchResource = "user"
)

type FetchOutcome string

const (
	OutcomeSuccess FetchOutcome = "success"
	OutcomeFailure FetchOutcome = "failure"
)

// FetchRecord is one upstream request as written to the fetch journal.
type FetchRecord struct {
	ID        uuid.UUID     `json:"id"`
	Resource  FetchResource `json:"resource"`
	UserID    *int          `json:"user_id,omitempty"`
	Outcome   FetchOutcome  `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}
