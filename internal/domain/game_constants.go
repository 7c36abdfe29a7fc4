package domain

const (
	// StepsPerAttempt is the number of blind choices in one attempt.
	StepsPerAttempt = 25
	// AttemptsPerMaze caps how many attempts a player may start per round.
	AttemptsPerMaze = 5
	// CurveExponent shapes the score curve; higher values punish imperfect play harder.
	CurveExponent = 3.5
	// LeaderboardSize is the number of entries kept per round.
	LeaderboardSize = 100
	// RoundDurationHours is the default length of a round.
	RoundDurationHours = 24
)
