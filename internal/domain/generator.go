package domain

// Linear congruential recurrence shared by every client. Changing any of these
// values changes the winning path of rounds that are already running.
const (
	lcgMultiplier uint64 = 1103515245
	lcgIncrement  uint64 = 12345
	lcgModulus    uint64 = 1 << 31
)

// GenerateSolution derives the hidden path of a round.
// The same seed and step count always yield the same sequence.
func GenerateSolution(seed RoundSeed, steps int) Solution {
	if steps <= 0 {
		return Solution{}
	}

	m := int64(lcgModulus)
	state := uint64(((int64(seed) % m) + m) % m)

	out := make(Solution, steps)
	for i := range out {
		state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
		// floor(state / 2^31 * 3) without leaving integer arithmetic.
		c := Choice((state * 3) >> 31)
		if c > Right {
			c = Right
		}
		out[i] = c
	}
	return out
}
