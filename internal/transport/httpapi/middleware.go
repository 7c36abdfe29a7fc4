package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"blindmaze/internal/app"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const playerKey ctxKey = iota

const maxPlayerIDLen = 128

func playerFrom(ctx context.Context) app.Player {
	p, _ := ctx.Value(playerKey).(app.Player)
	return p
}

// identify resolves the caller from PlayerHeader and onboards players seen for
// the first time.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(PlayerHeader))
		if id == "" || len(id) > maxPlayerIDLen {
			s.writeError(w, r, app.ErrUnknownPlayer)
			return
		}

		ctx := r.Context()
		known, err := s.accounts.AccountExists(ctx, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !known {
			result, err := s.onboarder.OnboardNewUser(ctx, id)
			if result.ProfileUpdateErr != nil {
				s.logger.Warn("identify: failed to update profile for user %s: %v", id, result.ProfileUpdateErr)
			}
			if err != nil {
				s.logger.Error("identify: onboarding failed for user %s: %v", id, err)
				s.writeError(w, r, err)
				return
			}
			s.logger.Info("Onboarded new user %s as %s", id, result.DisplayName)
		}

		// IDs are unique, display names are not, so the ID names leaderboard entries.
		player := app.Player{ID: id, Name: id}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, playerKey, player)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		}).Debug("%s %s", r.Method, r.URL.Path)
	})
}
