package domain

import "time"

// RoundClock buckets wall-clock time into fixed-length rounds.
type RoundClock struct {
	duration time.Duration
}

// NewRoundClock builds a clock for rounds of the given length in hours.
// Non-positive values fall back to RoundDurationHours.
func NewRoundClock(hours int) RoundClock {
	if hours <= 0 {
		hours = RoundDurationHours
	}
	return RoundClock{duration: time.Duration(hours) * time.Hour}
}

// DurationMillis returns the round length in milliseconds.
func (c RoundClock) DurationMillis() int64 {
	if c.duration <= 0 {
		return int64(RoundDurationHours * time.Hour / time.Millisecond)
	}
	return c.duration.Milliseconds()
}

// SeedAt returns floor(nowMillis / duration).
func (c RoundClock) SeedAt(nowMillis int64) RoundSeed {
	d := c.DurationMillis()
	q := nowMillis / d
	if nowMillis%d != 0 && nowMillis < 0 {
		q--
	}
	return RoundSeed(q)
}

// Bounds returns the inclusive start and exclusive end of a round in milliseconds.
func (c RoundClock) Bounds(seed RoundSeed) (startMillis, endMillis int64) {
	d := c.DurationMillis()
	startMillis = int64(seed) * d
	return startMillis, startMillis + d
}

// RoundAt resolves the round containing now.
func (c RoundClock) RoundAt(now time.Time) Round {
	return c.Round(c.SeedAt(now.UnixMilli()))
}

// Round resolves the boundaries of a known seed.
func (c RoundClock) Round(seed RoundSeed) Round {
	start, end := c.Bounds(seed)
	return Round{
		Seed:     seed,
		StartsAt: time.UnixMilli(start).UTC(),
		EndsAt:   time.UnixMilli(end).UTC(),
	}
}
