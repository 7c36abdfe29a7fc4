package nakama

import (
	"math"
	"strconv"

	"blindmaze/internal/domain"

	"github.com/heroiclabs/nakama-common/api"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// scoreToTenths stores a one-decimal score as an integer leaderboard score.
func scoreToTenths(score float64) int64 {
	return int64(math.Round(score * 10))
}

func leaderboardToProto(round domain.Round, lb domain.Leaderboard) *api.LeaderboardRecordList {
	id := strconv.FormatInt(int64(round.Seed), 10)
	out := &api.LeaderboardRecordList{
		Records:   make([]*api.LeaderboardRecord, 0, len(lb)),
		RankCount: int64(len(lb)),
	}
	for i, e := range lb {
		out.Records = append(out.Records, &api.LeaderboardRecord{
			LeaderboardId: id,
			Username:      wrapperspb.String(e.PlayerName),
			Score:         scoreToTenths(e.Score),
			NumScore:      1,
			Rank:          int64(i + 1),
			CreateTime:    timestamppb.New(round.StartsAt),
			ExpiryTime:    timestamppb.New(round.EndsAt),
		})
	}
	return out
}

var leaderboardMarshaler = protojson.MarshalOptions{UseProtoNames: true, EmitUnpopulated: false}

func marshalLeaderboard(round domain.Round, lb domain.Leaderboard) (string, error) {
	b, err := leaderboardMarshaler.Marshal(leaderboardToProto(round, lb))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
