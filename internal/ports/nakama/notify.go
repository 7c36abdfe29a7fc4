package nakama

import (
	"context"

	"blindmaze/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// notificationAPI is the slice of runtime.NakamaModule used to push events.
type notificationAPI interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

// dispatchEvents turns personal best and leaderboard events into in-app notifications.
// Other events are already part of the RPC response. Send failures are logged only.
func dispatchEvents(ctx context.Context, logger runtime.Logger, nk notificationAPI, events []app.Event) {
	for _, ev := range events {
		var (
			code    int
			content map[string]interface{}
		)
		switch p := ev.Payload.(type) {
		case app.PersonalBestPayload:
			code = NotifyPersonalBest
			content = map[string]interface{}{
				"seed":           int64(p.Seed),
				"score":          p.Score,
				"previous_score": p.PreviousScore,
			}
		case app.LeaderboardUpdatedPayload:
			code = NotifyLeaderboardUpdated
			content = map[string]interface{}{
				"seed":        int64(p.Seed),
				"player_name": p.PlayerName,
				"score":       p.Score,
				"rank":        p.Rank,
			}
		default:
			continue
		}

		for _, userID := range ev.Recipients {
			if err := nk.NotificationSend(ctx, userID, string(ev.Kind), content, code, "", false); err != nil {
				logger.Warn("dispatchEvents [User:%s]: failed to send %s: %v", userID, ev.Kind, err)
			}
		}
	}
}
