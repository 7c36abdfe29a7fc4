package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"blindmaze/internal/domain"

	"github.com/shopspring/decimal"
)

// GameConfig holds the deploy-time rules of the blind maze.
type GameConfig struct {
	AttemptCost        decimal.Decimal `json:"attempt_cost"`
	RoundDurationHours int             `json:"round_duration_hours"`
	StepsPerAttempt    int             `json:"steps_per_attempt"`
	AttemptsPerMaze    int             `json:"attempts_per_maze"`
	CurveExponent      float64         `json:"curve_exponent"`
	// BaseMatchBonus is carried for compatibility with existing config files; scoring does not read it.
	BaseMatchBonus  float64         `json:"base_match_bonus"`
	LeaderboardSize int             `json:"leaderboard_size"`
	WelcomeBonus    decimal.Decimal `json:"welcome_bonus"`
	// TicketGraceMinutes lets an attempt started near the end of a round be finished after it.
	TicketGraceMinutes int `json:"ticket_grace_minutes"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the built-in rules.
func Default() *GameConfig {
	return &GameConfig{
		AttemptCost:        decimal.RequireFromString("1.00"),
		RoundDurationHours: domain.RoundDurationHours,
		StepsPerAttempt:    domain.StepsPerAttempt,
		AttemptsPerMaze:    domain.AttemptsPerMaze,
		CurveExponent:      domain.CurveExponent,
		BaseMatchBonus:     0.1,
		LeaderboardSize:    domain.LeaderboardSize,
		WelcomeBonus:       decimal.RequireFromString("25.00"),
		TicketGraceMinutes: 10,
	}
}

// Parse decodes a JSON config on top of the defaults and validates it.
func Parse(data []byte) (*GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects rules the game cannot run with.
func (c *GameConfig) Validate() error {
	var errs []error
	if c.AttemptCost.IsNegative() {
		errs = append(errs, errors.New("attempt_cost must not be negative"))
	}
	if c.RoundDurationHours <= 0 {
		errs = append(errs, errors.New("round_duration_hours must be positive"))
	}
	if c.StepsPerAttempt <= 0 {
		errs = append(errs, errors.New("steps_per_attempt must be positive"))
	}
	if c.AttemptsPerMaze <= 0 {
		errs = append(errs, errors.New("attempts_per_maze must be positive"))
	}
	if c.CurveExponent <= 0 {
		errs = append(errs, errors.New("curve_exponent must be positive"))
	}
	if c.LeaderboardSize <= 0 {
		errs = append(errs, errors.New("leaderboard_size must be positive"))
	}
	if c.WelcomeBonus.IsNegative() {
		errs = append(errs, errors.New("welcome_bonus must not be negative"))
	}
	if c.TicketGraceMinutes < 0 {
		errs = append(errs, errors.New("ticket_grace_minutes must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid game config: %w", errors.Join(errs...))
	}
	return nil
}

// TicketGrace returns the grace period as a duration.
func (c *GameConfig) TicketGrace() time.Duration {
	return time.Duration(c.TicketGraceMinutes) * time.Minute
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the loaded game configuration, or the defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}
