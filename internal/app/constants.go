package app

// Storage keys are partitioned by round seed.
const (
	playerRecordKeyPrefix = "player_record_"
	leaderboardKeyPrefix  = "leaderboard_"
)
