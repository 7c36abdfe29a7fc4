package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"blindmaze/internal/app"
	"blindmaze/internal/config"
	"blindmaze/internal/domain"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestHandler(nk *mockNakama) *rpcHandler {
	now := func() time.Time { return testNow }
	service := app.NewService(config.Default(), NewNakamaEconomyAdapter(nk), app.NewTicketIssuer("test-secret", "test", now), noopLogger{}, now)
	return &rpcHandler{
		service:  service,
		storage:  nk,
		accounts: NewNakamaAccountAdapter(nk),
		notifier: nk,
	}
}

func userContext(userID, username string) context.Context {
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
	if username != "" {
		ctx = context.WithValue(ctx, runtime.RUNTIME_CTX_USERNAME, username)
	}
	return ctx
}

func assertCode(t *testing.T, err error, want int) {
	t.Helper()
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		t.Fatalf("error %v is not a runtime error", err)
	}
	if int(rtErr.Code) != want {
		t.Fatalf("code = %d, want %d (%s)", rtErr.Code, want, rtErr.Message)
	}
}

func startAttempt(t *testing.T, h *rpcHandler, ctx context.Context) app.AttemptStarted {
	t.Helper()
	raw, err := h.rpcStartAttempt(ctx, noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("rpcStartAttempt error: %v", err)
	}
	var started app.AttemptStarted
	if err := json.Unmarshal([]byte(raw), &started); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}
	return started
}

func TestRpcRound(t *testing.T) {
	h := newTestHandler(newMockNakama())
	raw, err := h.rpcRound(context.Background(), noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("rpcRound error: %v", err)
	}
	var resp RoundResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RemainingSeconds != 12*3600 {
		t.Fatalf("remaining = %d, want %d", resp.RemainingSeconds, 12*3600)
	}
	if resp.Steps != 25 || resp.AttemptsPerMaze != 5 || resp.AttemptCost != "1.00" {
		t.Fatalf("unexpected rules %+v", resp)
	}
}

func TestRpcPerfectAttemptFlow(t *testing.T) {
	nk := newMockNakama()
	nk.wallets["alice"] = map[string]int64{WalletCurrency: 500}
	h := newTestHandler(nk)
	ctx := userContext("alice", "alice")

	started := startAttempt(t, h, ctx)
	if started.Ticket == "" || started.AttemptsLeft != 4 {
		t.Fatalf("unexpected start %+v", started)
	}
	if got := nk.wallets["alice"][WalletCurrency]; got != 400 {
		t.Fatalf("wallet = %d, want 400", got)
	}

	solution := domain.GenerateSolution(started.Round.Seed, 25)
	payload, _ := json.Marshal(map[string]interface{}{"ticket": started.Ticket, "choices": solution})
	raw, err := h.rpcSubmitAttempt(ctx, noopLogger{}, nil, nil, string(payload))
	if err != nil {
		t.Fatalf("rpcSubmitAttempt error: %v", err)
	}
	var result app.AttemptResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Evaluation.Score != 100 || !result.PersonalBest || result.Rank != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(nk.notifications) != 2 {
		t.Fatalf("notifications = %d, want 2", len(nk.notifications))
	}
	if nk.notifications[0].code != NotifyPersonalBest || nk.notifications[1].code != NotifyLeaderboardUpdated {
		t.Fatalf("unexpected notifications %+v", nk.notifications)
	}

	// A replayed ticket must not score twice.
	_, err = h.rpcSubmitAttempt(ctx, noopLogger{}, nil, nil, string(payload))
	assertCode(t, err, codeNotFound)

	lbRaw, err := h.rpcLeaderboard(ctx, noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("rpcLeaderboard error: %v", err)
	}
	var list api.LeaderboardRecordList
	if err := protojson.Unmarshal([]byte(lbRaw), &list); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(list.GetRecords()) != 1 {
		t.Fatalf("records = %d, want 1", len(list.GetRecords()))
	}
	rec := list.GetRecords()[0]
	if rec.GetUsername().GetValue() != "alice" || rec.GetScore() != 1000 || rec.GetRank() != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestRpcSubmitChoiceStepByStep(t *testing.T) {
	nk := newMockNakama()
	nk.wallets["bob"] = map[string]int64{WalletCurrency: 100}
	h := newTestHandler(nk)
	ctx := userContext("bob", "bob")

	started := startAttempt(t, h, ctx)
	for i := 0; i < 25; i++ {
		payload, _ := json.Marshal(map[string]interface{}{"ticket": started.Ticket, "choice": "left"})
		raw, err := h.rpcSubmitChoice(ctx, noopLogger{}, nil, nil, string(payload))
		if err != nil {
			t.Fatalf("step %d: rpcSubmitChoice error: %v", i, err)
		}
		var accepted app.ChoiceAccepted
		if err := json.Unmarshal([]byte(raw), &accepted); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if accepted.Step != i+1 {
			t.Fatalf("step = %d, want %d", accepted.Step, i+1)
		}
		if (i == 24) != accepted.Complete {
			t.Fatalf("step %d complete = %v", i, accepted.Complete)
		}
		if accepted.Complete && accepted.Result == nil {
			t.Fatal("completed attempt has no result")
		}
	}

	raw, err := h.rpcStatus(ctx, noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("rpcStatus error: %v", err)
	}
	var status app.Status
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Record.CurrentPhase() != domain.PhaseResult || status.CanStart {
		t.Fatalf("unexpected status %+v", status)
	}

	raw, err = h.rpcReturnToMenu(ctx, noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("rpcReturnToMenu error: %v", err)
	}
	var rec domain.PlayerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.CurrentPhase() != domain.PhaseMenu || rec.AttemptsUsed != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestRpcStartAttemptInsufficientFunds(t *testing.T) {
	h := newTestHandler(newMockNakama())
	_, err := h.rpcStartAttempt(userContext("carol", "carol"), noopLogger{}, nil, nil, "")
	assertCode(t, err, codeResourceExhausted)
}

func TestRpcRequiresUser(t *testing.T) {
	h := newTestHandler(newMockNakama())
	_, err := h.rpcStatus(context.Background(), noopLogger{}, nil, nil, "")
	assertCode(t, err, codeUnauthenticated)
}

func TestRpcSubmitChoiceRejectsBadPayloads(t *testing.T) {
	h := newTestHandler(newMockNakama())
	ctx := userContext("dave", "dave")

	tests := map[string]string{
		"empty":          "",
		"malformed":      "{",
		"missing choice": `{"ticket":"x"}`,
		"unknown choice": `{"ticket":"x","choice":"up"}`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := h.rpcSubmitChoice(ctx, noopLogger{}, nil, nil, payload)
			assertCode(t, err, codeInvalidArgument)
		})
	}
}

func TestRpcSubmitChoiceRejectsForgedTicket(t *testing.T) {
	h := newTestHandler(newMockNakama())
	_, err := h.rpcSubmitChoice(userContext("erin", "erin"), noopLogger{}, nil, nil, `{"ticket":"forged","choice":0}`)
	assertCode(t, err, codePermissionDenied)
}

func TestRpcPlayerFallsBackToAccountName(t *testing.T) {
	nk := newMockNakama()
	nk.usernames["frank"] = "frank_99"
	h := newTestHandler(nk)

	player, err := h.player(userContext("frank", ""), noopLogger{})
	if err != nil {
		t.Fatalf("player error: %v", err)
	}
	if player.Name != "frank_99" {
		t.Fatalf("name = %q, want frank_99", player.Name)
	}
}
