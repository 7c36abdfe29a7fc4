package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blindmaze/internal/app"
	"blindmaze/internal/app/onboarding"
	"blindmaze/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	defaultTicketSecret = "blindmaze-insecure-dev-secret"
	defaultTicketIssuer = "blindmaze"
)

// InitModule wires RPCs and hooks for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if path := env[EnvConfigPath]; path != "" {
		if err := config.LoadGameConfig(path); err != nil {
			return fmt.Errorf("failed to load game config: %w", err)
		}
	}
	cfg := config.GetGameConfig()

	secret := env[EnvTicketSecret]
	if secret == "" {
		logger.Warn("%s not set; attempt tickets use an insecure default secret", EnvTicketSecret)
		secret = defaultTicketSecret
	}
	issuer := env[EnvTicketIssuer]
	if issuer == "" {
		issuer = defaultTicketIssuer
	}

	tickets := app.NewTicketIssuer(secret, issuer, time.Now)
	service := app.NewService(cfg, NewNakamaEconomyAdapter(nk), tickets, logger, time.Now)
	handler := &rpcHandler{
		service:  service,
		storage:  nk,
		accounts: NewNakamaAccountAdapter(nk),
		notifier: nk,
	}

	if err := RegisterRPCs(initializer, handler); err != nil {
		return err
	}

	welcome := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaWelcomeBonusAdapter(nk), cfg.WelcomeBonus, nil)
	if err := initializer.RegisterAfterAuthenticateDevice(afterAuthenticateDevice(welcome)); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"steps":        cfg.StepsPerAttempt,
		"attempts":     cfg.AttemptsPerMaze,
		"attempt_cost": cfg.AttemptCost.StringFixed(2),
		"round_hours":  cfg.RoundDurationHours,
	}).Info("BlindMaze Go module loaded.")
	return nil
}
