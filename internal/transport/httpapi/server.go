// Package httpapi serves the game over plain HTTP for local development,
// without a Nakama server.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"blindmaze/internal/app"
	"blindmaze/internal/app/onboarding"
	"blindmaze/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/heroiclabs/nakama-common/runtime"
)

// PlayerHeader carries the mock identity of the caller.
const PlayerHeader = "X-Player-ID"

const maxBodyBytes = 64 << 10

// AccountDirectory tells whether a player has been onboarded.
type AccountDirectory interface {
	AccountExists(ctx context.Context, userID string) (bool, error)
}

// Onboarder prepares a new player's account.
type Onboarder interface {
	OnboardNewUser(ctx context.Context, userID string) (onboarding.Result, error)
}

// Server handles HTTP requests.
type Server struct {
	service   *app.Service
	stores    func(userID string) ports.KVStore
	accounts  AccountDirectory
	onboarder Onboarder
	logger    runtime.Logger
	timeout   time.Duration
}

// NewServer creates a new API server. stores binds the key-value scopes to a player.
func NewServer(service *app.Service, stores func(userID string) ports.KVStore, accounts AccountDirectory, onboarder Onboarder, logger runtime.Logger, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{
		service:   service,
		stores:    stores,
		accounts:  accounts,
		onboarder: onboarder,
		logger:    logger,
		timeout:   timeout,
	}
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/round", s.handleRound)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/leaderboard/{seed}", s.handleLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(s.identify)
			r.Get("/status", s.handleStatus)
			r.Post("/attempts", s.handleStartAttempt)
			r.Post("/attempts/choices", s.handleSubmitChoice)
			r.Post("/attempts/submit", s.handleSubmitAttempt)
			r.Post("/menu", s.handleReturnToMenu)
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("writeJSON: failed to encode response: %v", err)
	}
}

func (s *Server) logEvents(player app.Player, events []app.Event) {
	for _, ev := range events {
		s.logger.WithField("event", string(ev.Kind)).Info("player %s: %+v", player.ID, ev.Payload)
	}
}
