package domain

import "sort"

// LeaderboardEntry is a player's best score in a round.
type LeaderboardEntry struct {
	PlayerName string  `json:"playerName"`
	Score      float64 `json:"score"`
}

// Leaderboard is a round's ranking, best first.
type Leaderboard []LeaderboardEntry

// Submit records score for name and returns the resulting board.
// The board changes only when score beats the player's existing entry and the
// entry survives truncation to limit. The receiver is never modified.
func (lb Leaderboard) Submit(name string, score float64, limit int) (Leaderboard, bool) {
	if name == "" || limit <= 0 {
		return lb, false
	}

	out := make(Leaderboard, 0, len(lb)+1)
	found := false
	for _, e := range lb {
		if e.PlayerName == name {
			if score <= e.Score {
				return lb, false
			}
			found = true
			e.Score = score
		}
		out = append(out, e)
	}
	if !found {
		out = append(out, LeaderboardEntry{PlayerName: name, Score: score})
	}

	sortEntries(out)
	if len(out) > limit {
		out = out[:limit]
	}
	if _, ok := out.Rank(name); !ok {
		return lb, false
	}
	return out, true
}

// Rank returns the 1-based position of name.
func (lb Leaderboard) Rank(name string) (int, bool) {
	for i, e := range lb {
		if e.PlayerName == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Normalize restores the board invariants on data read from storage: one entry per
// name holding that name's best score, sorted descending, at most limit entries.
func (lb Leaderboard) Normalize(limit int) Leaderboard {
	best := make(map[string]int, len(lb))
	out := make(Leaderboard, 0, len(lb))
	for _, e := range lb {
		if e.PlayerName == "" || e.Score < 0 || e.Score > PerfectScore {
			continue
		}
		if i, ok := best[e.PlayerName]; ok {
			if e.Score > out[i].Score {
				out[i].Score = e.Score
			}
			continue
		}
		best[e.PlayerName] = len(out)
		out = append(out, e)
	}
	sortEntries(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Ties keep their previous relative order so an earlier score stays ahead.
func sortEntries(entries Leaderboard) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
