package nakama

// RPC ids registered with Nakama.
const (
	RpcRound         = "blindmaze_round"
	RpcStatus        = "blindmaze_status"
	RpcStartAttempt  = "blindmaze_start_attempt"
	RpcSubmitChoice  = "blindmaze_submit_choice"
	RpcSubmitAttempt = "blindmaze_submit_attempt"
	RpcReturnToMenu  = "blindmaze_return_to_menu"
	RpcLeaderboard   = "blindmaze_leaderboard"
)

const (
	// StorageCollection holds player records and round leaderboards.
	StorageCollection = "blindmaze"

	// WalletCurrency is the wallet key of the mock currency, in minor units.
	WalletCurrency = "coins"

	// Runtime env keys read at module init.
	EnvConfigPath   = "blindmaze_config_path"
	EnvTicketSecret = "blindmaze_ticket_secret"
	EnvTicketIssuer = "blindmaze_ticket_issuer"
)

// Notification codes for server events.
const (
	NotifyPersonalBest       = 101
	NotifyLeaderboardUpdated = 102
)
