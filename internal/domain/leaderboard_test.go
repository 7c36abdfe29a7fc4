package domain

import (
	"fmt"
	"testing"
)

func assertSorted(t *testing.T, lb Leaderboard) {
	t.Helper()
	for i := 1; i < len(lb); i++ {
		if lb[i].Score > lb[i-1].Score {
			t.Fatalf("board not sorted at %d: %v", i, lb)
		}
	}
}

func TestLeaderboardSubmitInsertsAndSorts(t *testing.T) {
	var lb Leaderboard
	lb, _ = lb.Submit("ann", 40, LeaderboardSize)
	lb, _ = lb.Submit("bob", 75.5, LeaderboardSize)
	lb, changed := lb.Submit("cat", 60, LeaderboardSize)
	if !changed {
		t.Fatal("expected change")
	}
	assertSorted(t, lb)
	if lb[0].PlayerName != "bob" || lb[2].PlayerName != "ann" {
		t.Fatalf("order = %v", lb)
	}
}

func TestLeaderboardLowerScoreKeepsEntry(t *testing.T) {
	lb := Leaderboard{{PlayerName: "ann", Score: 50}}
	got, changed := lb.Submit("ann", 49.9, LeaderboardSize)
	if changed || got[0].Score != 50 {
		t.Fatalf("lower score changed board: %v", got)
	}
	got, changed = lb.Submit("ann", 50, LeaderboardSize)
	if changed {
		t.Fatalf("equal score changed board: %v", got)
	}
}

func TestLeaderboardHigherScoreReplacesEntry(t *testing.T) {
	lb := Leaderboard{{PlayerName: "bob", Score: 80}, {PlayerName: "ann", Score: 50}}
	got, changed := lb.Submit("ann", 90, LeaderboardSize)
	if !changed {
		t.Fatal("expected change")
	}
	if len(got) != 2 || got[0].PlayerName != "ann" || got[0].Score != 90 {
		t.Fatalf("board = %v", got)
	}
	if lb[1].Score != 50 {
		t.Fatal("receiver was modified")
	}
}

func TestLeaderboardTruncatesToLimit(t *testing.T) {
	var lb Leaderboard
	for i := 0; i < LeaderboardSize+20; i++ {
		lb, _ = lb.Submit(fmt.Sprintf("p%03d", i), float64(i%97), LeaderboardSize)
	}
	if len(lb) != LeaderboardSize {
		t.Fatalf("len = %d, want %d", len(lb), LeaderboardSize)
	}
	assertSorted(t, lb)

	low := lb[len(lb)-1].Score
	if low <= 0 {
		t.Fatalf("expected lowest kept score above zero, got %v", low)
	}
	if _, changed := lb.Submit("newcomer", 0, LeaderboardSize); changed {
		t.Fatal("score below the cut should not change the board")
	}
}

func TestLeaderboardTiesKeepEarlierEntryFirst(t *testing.T) {
	var lb Leaderboard
	lb, _ = lb.Submit("first", 30, 10)
	lb, _ = lb.Submit("second", 30, 10)
	if rank, _ := lb.Rank("first"); rank != 1 {
		t.Fatalf("first rank = %d, want 1", rank)
	}
}

func TestLeaderboardNormalize(t *testing.T) {
	raw := Leaderboard{
		{PlayerName: "ann", Score: 10},
		{PlayerName: "bob", Score: 30},
		{PlayerName: "ann", Score: 20},
		{PlayerName: "", Score: 99},
		{PlayerName: "eve", Score: 150},
		{PlayerName: "cat", Score: 5},
	}
	got := raw.Normalize(2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if got[0] != (LeaderboardEntry{PlayerName: "bob", Score: 30}) || got[1] != (LeaderboardEntry{PlayerName: "ann", Score: 20}) {
		t.Fatalf("board = %v", got)
	}
}
