package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Phase represents the lifecycle stage of a player's attempt within a round.
type Phase string

const (
	// PhaseMenu is the idle state where a new attempt can be started.
	PhaseMenu Phase = "menu"
	// PhasePlaying is the state where choices are being collected.
	PhasePlaying Phase = "playing"
	// PhaseResult is the state after an attempt has been scored.
	PhaseResult Phase = "result"
)

// Choice is a single blind direction taken at a maze step.
type Choice int

const (
	// Left turns left at a step.
	Left Choice = iota
	// Forward goes straight ahead.
	Forward
	// Right turns right at a step.
	Right
)

// ErrInvalidChoice is returned when a choice is outside the Left/Forward/Right alphabet.
var ErrInvalidChoice = errors.New("invalid choice")

// Valid reports whether c is one of Left, Forward or Right.
func (c Choice) Valid() bool {
	return c >= Left && c <= Right
}

func (c Choice) String() string {
	switch c {
	case Left:
		return "left"
	case Forward:
		return "forward"
	case Right:
		return "right"
	default:
		return "choice(" + strconv.Itoa(int(c)) + ")"
	}
}

// ParseChoice accepts "left"/"forward"/"right" (any case) or their numeric forms "0"/"1"/"2".
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "0":
		return Left, nil
	case "forward", "f", "1":
		return Forward, nil
	case "right", "r", "2":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// UnmarshalJSON accepts a bare number or any form ParseChoice understands.
// Numbers are not range checked here; callers validate with Valid.
// A null choice is rejected rather than decoded as Left.
func (c *Choice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return fmt.Errorf("%w: null", ErrInvalidChoice)
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseChoice(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidChoice, data)
	}
	*c = Choice(n)
	return nil
}

// Solution is the hidden path of a round. It is derived from the seed and never stored.
type Solution []Choice

// Attempt is the sequence of choices a player made for one try at the maze.
type Attempt []Choice

// RoundSeed identifies a time-bucketed round and partitions all persisted state.
type RoundSeed int64

// Round describes a seed together with its wall-clock boundaries.
type Round struct {
	Seed     RoundSeed `json:"seed"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Remaining returns how long the round still runs after now, never negative.
func (r Round) Remaining(now time.Time) time.Duration {
	if d := r.EndsAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
