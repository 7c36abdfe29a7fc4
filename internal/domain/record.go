package domain

import "errors"

var (
	ErrNoAttemptsLeft    = errors.New("no attempts left for this round")
	ErrAttemptInProgress = errors.New("an attempt is already in progress")
	ErrNotPlaying        = errors.New("no attempt in progress")
	ErrChoicesSubmitted  = errors.New("attempt already has submitted choices")
)

// PlayerRecord is a player's state for a single round.
type PlayerRecord struct {
	AttemptsUsed int     `json:"attemptsUsed"`
	BestScore    float64 `json:"bestScore"`

	Phase         Phase       `json:"phase,omitempty"`
	OpenAttemptID string      `json:"openAttemptId,omitempty"`
	Choices       Attempt     `json:"choices,omitempty"`
	LastResult    *Evaluation `json:"lastResult,omitempty"`
}

// CurrentPhase treats a zero-valued phase as the menu.
func (r PlayerRecord) CurrentPhase() Phase {
	if r.Phase == "" {
		return PhaseMenu
	}
	return r.Phase
}

// AttemptsLeft returns how many attempts may still be started under limit.
func (r PlayerRecord) AttemptsLeft(limit int) int {
	if left := limit - r.AttemptsUsed; left > 0 {
		return left
	}
	return 0
}

// Valid reports whether a decoded record satisfies its invariants.
func (r PlayerRecord) Valid(limit, steps int) bool {
	if r.AttemptsUsed < 0 || r.AttemptsUsed > limit {
		return false
	}
	if r.BestScore < 0 || r.BestScore > PerfectScore {
		return false
	}
	switch r.CurrentPhase() {
	case PhaseMenu, PhaseResult:
		return r.OpenAttemptID == "" && len(r.Choices) == 0
	case PhasePlaying:
		if r.OpenAttemptID == "" || len(r.Choices) >= steps {
			return false
		}
		for _, c := range r.Choices {
			if !c.Valid() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Begin handles StartAttempt: it counts a new attempt and moves to PhasePlaying.
func (r *PlayerRecord) Begin(attemptID string, limit int) error {
	if r.CurrentPhase() == PhasePlaying {
		return ErrAttemptInProgress
	}
	if r.AttemptsUsed >= limit {
		return ErrNoAttemptsLeft
	}
	r.AttemptsUsed++
	r.Phase = PhasePlaying
	r.OpenAttemptID = attemptID
	r.Choices = nil
	return nil
}

// Choose handles SubmitChoice and reports whether the attempt is now complete.
func (r *PlayerRecord) Choose(c Choice, steps int) (bool, error) {
	if r.CurrentPhase() != PhasePlaying {
		return false, ErrNotPlaying
	}
	if !c.Valid() {
		return false, ErrInvalidChoice
	}
	if len(r.Choices) >= steps {
		return true, nil
	}
	r.Choices = append(r.Choices, c)
	return len(r.Choices) == steps, nil
}

// Fill submits every choice of the open attempt at once.
func (r *PlayerRecord) Fill(attempt Attempt, steps int) error {
	if r.CurrentPhase() != PhasePlaying {
		return ErrNotPlaying
	}
	if len(r.Choices) > 0 {
		return ErrChoicesSubmitted
	}
	if len(attempt) != steps {
		return ErrAttemptLength
	}
	r.Choices = append(Attempt(nil), attempt...)
	return nil
}

// Complete handles AttemptComplete: it records the result and keeps the best score.
func (r *PlayerRecord) Complete(result Evaluation) {
	if result.Score > r.BestScore {
		r.BestScore = result.Score
	}
	r.Phase = PhaseResult
	r.OpenAttemptID = ""
	r.Choices = nil
	r.LastResult = &result
}

// ReturnToMenu leaves the result screen. It is a no-op from the menu.
func (r *PlayerRecord) ReturnToMenu() error {
	if r.CurrentPhase() == PhasePlaying {
		return ErrAttemptInProgress
	}
	r.Phase = PhaseMenu
	return nil
}
