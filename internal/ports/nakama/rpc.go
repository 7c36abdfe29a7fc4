package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"blindmaze/internal/app"
	"blindmaze/internal/domain"
	"blindmaze/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeResourceExhausted  = 8
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

var errMissingPayload = errors.New("payload required")

// rpcHandler serves the blind maze RPCs. Nakama API slices are captured at init
// so handlers can run against fakes.
type rpcHandler struct {
	service  *app.Service
	storage  storageAPI
	accounts ports.AccountPort
	notifier notificationAPI
}

type submitChoiceRequest struct {
	Ticket string         `json:"ticket"`
	Choice *domain.Choice `json:"choice"`
}

type submitAttemptRequest struct {
	Ticket  string         `json:"ticket"`
	Choices domain.Attempt `json:"choices"`
}

type seedRequest struct {
	Seed *domain.RoundSeed `json:"seed,omitempty"`
}

// RoundResponse describes the live round.
type RoundResponse struct {
	Round            domain.Round `json:"round"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	Steps            int          `json:"steps_per_attempt"`
	AttemptsPerMaze  int          `json:"attempts_per_maze"`
	AttemptCost      string       `json:"attempt_cost"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, h *rpcHandler) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcRound:         h.rpcRound,
		RpcStatus:        h.rpcStatus,
		RpcStartAttempt:  h.rpcStartAttempt,
		RpcSubmitChoice:  h.rpcSubmitChoice,
		RpcSubmitAttempt: h.rpcSubmitAttempt,
		RpcReturnToMenu:  h.rpcReturnToMenu,
		RpcLeaderboard:   h.rpcLeaderboard,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

// player resolves the caller from the runtime context. The username is unique
// in Nakama, so it is used as the leaderboard name.
func (h *rpcHandler) player(ctx context.Context, logger runtime.Logger) (app.Player, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return app.Player{}, runtime.NewError("rpc requires an authenticated user", codeUnauthenticated)
	}
	name, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	if name == "" && h.accounts != nil {
		resolved, err := h.accounts.DisplayName(ctx, userID)
		if err != nil {
			logger.Warn("player [User:%s]: failed to resolve name: %v", userID, err)
		}
		name = resolved
	}
	return app.Player{ID: userID, Name: name}, nil
}

func (h *rpcHandler) rpcRound(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	round := h.service.CurrentRound()
	cfg := h.service.Config()
	return marshalResponse(logger, RoundResponse{
		Round:            round,
		RemainingSeconds: int64(round.Remaining(h.service.Now()).Seconds()),
		Steps:            cfg.StepsPerAttempt,
		AttemptsPerMaze:  cfg.AttemptsPerMaze,
		AttemptCost:      cfg.AttemptCost.StringFixed(2),
	})
}

func (h *rpcHandler) rpcStatus(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	player, err := h.player(ctx, logger)
	if err != nil {
		return "", err
	}
	status, err := h.service.Status(ctx, NewNakamaStorageAdapter(h.storage, player.ID), player)
	if err != nil {
		return "", mapError(logger, "RpcStatus", player.ID, err)
	}
	return marshalResponse(logger, status)
}

func (h *rpcHandler) rpcStartAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	player, err := h.player(ctx, logger)
	if err != nil {
		return "", err
	}
	started, events, err := h.service.StartAttempt(ctx, NewNakamaStorageAdapter(h.storage, player.ID), player)
	if err != nil {
		return "", mapError(logger, "RpcStartAttempt", player.ID, err)
	}
	if started.Resumed {
		logger.Info("RpcStartAttempt [User:%s]: resumed attempt %s", player.ID, started.AttemptID)
	} else {
		logger.Info("RpcStartAttempt [User:%s]: started attempt %s (%d left)", player.ID, started.AttemptID, started.AttemptsLeft)
	}
	dispatchEvents(ctx, logger, h.notifier, events)
	return marshalResponse(logger, started)
}

func (h *rpcHandler) rpcSubmitChoice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	player, err := h.player(ctx, logger)
	if err != nil {
		return "", err
	}
	var req submitChoiceRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", mapError(logger, "RpcSubmitChoice", player.ID, err)
	}
	if req.Choice == nil {
		return "", mapError(logger, "RpcSubmitChoice", player.ID, domain.ErrInvalidChoice)
	}
	accepted, events, err := h.service.SubmitChoice(ctx, NewNakamaStorageAdapter(h.storage, player.ID), player, req.Ticket, *req.Choice)
	if err != nil {
		return "", mapError(logger, "RpcSubmitChoice", player.ID, err)
	}
	if accepted.Result != nil {
		logger.Info("RpcSubmitChoice [User:%s]: attempt %s scored %.1f", player.ID, accepted.Result.AttemptID, accepted.Result.Evaluation.Score)
	}
	dispatchEvents(ctx, logger, h.notifier, events)
	return marshalResponse(logger, accepted)
}

func (h *rpcHandler) rpcSubmitAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	player, err := h.player(ctx, logger)
	if err != nil {
		return "", err
	}
	var req submitAttemptRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", mapError(logger, "RpcSubmitAttempt", player.ID, err)
	}
	result, events, err := h.service.SubmitAttempt(ctx, NewNakamaStorageAdapter(h.storage, player.ID), player, req.Ticket, req.Choices)
	if err != nil {
		return "", mapError(logger, "RpcSubmitAttempt", player.ID, err)
	}
	logger.Info("RpcSubmitAttempt [User:%s]: attempt %s scored %.1f", player.ID, result.AttemptID, result.Evaluation.Score)
	dispatchEvents(ctx, logger, h.notifier, events)
	return marshalResponse(logger, result)
}

func (h *rpcHandler) rpcReturnToMenu(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	player, err := h.player(ctx, logger)
	if err != nil {
		return "", err
	}
	seed, err := h.seedFromPayload(payload)
	if err != nil {
		return "", mapError(logger, "RpcReturnToMenu", player.ID, err)
	}
	rec, err := h.service.ReturnToMenu(ctx, NewNakamaStorageAdapter(h.storage, player.ID), player, seed)
	if err != nil {
		return "", mapError(logger, "RpcReturnToMenu", player.ID, err)
	}
	return marshalResponse(logger, rec)
}

// rpcLeaderboard answers with an api.LeaderboardRecordList; scores are in tenths.
func (h *rpcHandler) rpcLeaderboard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	seed, err := h.seedFromPayload(payload)
	if err != nil {
		return "", mapError(logger, "RpcLeaderboard", userID, err)
	}
	lb := h.service.Leaderboard(ctx, NewNakamaStorageAdapter(h.storage, userID), seed)
	out, err := marshalLeaderboard(h.service.Round(seed), lb)
	if err != nil {
		logger.Error("RpcLeaderboard [User:%s]: failed to marshal leaderboard: %v", userID, err)
		return "", runtime.NewError("internal error", codeInternal)
	}
	return out, nil
}

// seedFromPayload defaults to the live round when the payload names no seed.
func (h *rpcHandler) seedFromPayload(payload string) (domain.RoundSeed, error) {
	var req seedRequest
	if strings.TrimSpace(payload) != "" {
		if err := decodePayload(payload, &req); err != nil {
			return 0, err
		}
	}
	if req.Seed == nil {
		return h.service.CurrentRound().Seed, nil
	}
	return *req.Seed, nil
}

func decodePayload(payload string, v any) error {
	if strings.TrimSpace(payload) == "" {
		return errMissingPayload
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &payloadError{err: err}
	}
	return nil
}

type payloadError struct{ err error }

func (e *payloadError) Error() string { return "invalid payload: " + e.err.Error() }
func (e *payloadError) Unwrap() error { return e.err }

func marshalResponse(logger runtime.Logger, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal response: %v", err)
		return "", runtime.NewError("internal error", codeInternal)
	}
	return string(b), nil
}

// mapError turns app and domain errors into runtime errors with gRPC codes.
// Expected outcomes are logged at info, faults at error.
func mapError(logger runtime.Logger, rpc, userID string, err error) error {
	var payloadErr *payloadError
	code := codeInternal
	switch {
	case errors.Is(err, errMissingPayload), errors.As(err, &payloadErr),
		errors.Is(err, domain.ErrInvalidChoice), errors.Is(err, domain.ErrAttemptLength):
		code = codeInvalidArgument
	case errors.Is(err, app.ErrInvalidTicket), errors.Is(err, app.ErrTicketPlayerMismatch):
		code = codePermissionDenied
	case errors.Is(err, app.ErrUnknownPlayer):
		code = codeUnauthenticated
	case errors.Is(err, domain.ErrNoAttemptsLeft), errors.Is(err, app.ErrInsufficientFunds):
		code = codeResourceExhausted
	case errors.Is(err, app.ErrAttemptNotOpen):
		code = codeNotFound
	case errors.Is(err, domain.ErrAttemptInProgress), errors.Is(err, domain.ErrNotPlaying),
		errors.Is(err, domain.ErrChoicesSubmitted):
		code = codeFailedPrecondition
	}

	if code == codeInternal {
		logger.Error("%s [User:%s]: %v", rpc, userID, err)
		return runtime.NewError("internal error", codeInternal)
	}
	logger.Info("%s [User:%s]: rejected: %v", rpc, userID, err)
	return runtime.NewError(err.Error(), code)
}
