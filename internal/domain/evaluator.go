package domain

import (
	"errors"
	"fmt"
	"math"
)

const (
	prefixWeight = 0.7
	totalWeight  = 0.3

	// Attempts matching at least this share of positions earn the near-perfect bonus.
	bonusThreshold = 0.9
	bonusPoints    = 5.0

	// MaxImperfectScore is the ceiling for any attempt that is not a full match.
	MaxImperfectScore = 99.9
	// PerfectScore is awarded only when every position matches.
	PerfectScore = 100.0
)

// ErrAttemptLength is returned when an attempt is not exactly as long as the solution.
var ErrAttemptLength = errors.New("attempt length does not match solution")

// Evaluation is the scored outcome of a finalized attempt.
type Evaluation struct {
	ConsecutiveMatches int     `json:"consecutiveMatches"`
	TotalMatches       int     `json:"totalMatches"`
	Score              float64 `json:"score"`
}

// Evaluate scores attempt against solution.
//
// The longest matching prefix weighs 70% and the raw match count 30%. The blend is
// raised to curveExponent so only near-perfect play approaches 100. A full match
// scores exactly 100; at least 90% matching positions add a linear bonus of up to 5
// points, capped at 99.9. The result is rounded to one decimal place.
func Evaluate(attempt Attempt, solution Solution, curveExponent float64) (Evaluation, error) {
	if len(attempt) != len(solution) || len(solution) == 0 {
		return Evaluation{}, fmt.Errorf("%w: got %d choices, want %d", ErrAttemptLength, len(attempt), len(solution))
	}
	for i, c := range attempt {
		if !c.Valid() {
			return Evaluation{}, fmt.Errorf("%w at step %d", ErrInvalidChoice, i)
		}
	}

	consecutive := 0
	for i := range attempt {
		if attempt[i] != solution[i] {
			break
		}
		consecutive++
	}

	total := 0
	for i := range attempt {
		if attempt[i] == solution[i] {
			total++
		}
	}

	return Evaluation{
		ConsecutiveMatches: consecutive,
		TotalMatches:       total,
		Score:              curvedScore(consecutive, total, len(solution), curveExponent),
	}, nil
}

// curvedScore applies the weighting, curve and near-perfect rules.
// Explicit float64 conversions keep the compiler from fusing multiply-adds so the
// result does not depend on the target architecture.
func curvedScore(consecutive, total, steps int, curveExponent float64) float64 {
	if total == steps {
		return PerfectScore
	}

	n := float64(steps)
	consecutiveRatio := float64(consecutive) / n
	totalRatio := float64(total) / n
	base := float64(consecutiveRatio*prefixWeight) + float64(totalRatio*totalWeight)

	score := math.Pow(base, curveExponent) * 100

	threshold := float64(bonusThreshold * n)
	if float64(total) >= threshold {
		bonus := (float64(total) - threshold) / float64((1-bonusThreshold)*n) * bonusPoints
		score = math.Min(float64(score+bonus), MaxImperfectScore)
	}

	return roundTenth(score)
}

func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r < 0 {
		return 0
	}
	if r > PerfectScore {
		return PerfectScore
	}
	return r
}
