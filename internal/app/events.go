package app

import "blindmaze/internal/domain"

// EventKind identifies emitted events for transport dispatch.
type EventKind string

const (
	EventAttemptStarted     EventKind = "attempt_started"
	EventAttemptScored      EventKind = "attempt_scored"
	EventPersonalBest       EventKind = "personal_best"
	EventLeaderboardUpdated EventKind = "leaderboard_updated"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type AttemptStartedPayload struct {
	Seed          domain.RoundSeed
	AttemptID     string
	AttemptNumber int
}

type AttemptScoredPayload struct {
	Seed       domain.RoundSeed
	AttemptID  string
	Evaluation domain.Evaluation
}

type PersonalBestPayload struct {
	Seed          domain.RoundSeed
	Score         float64
	PreviousScore float64
}

type LeaderboardUpdatedPayload struct {
	Seed       domain.RoundSeed
	PlayerName string
	Score      float64
	Rank       int
}
