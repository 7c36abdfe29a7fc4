package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"blindmaze/internal/domain"

	"github.com/go-chi/chi/v5"
)

type roundResponse struct {
	Round            domain.Round `json:"round"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	Steps            int          `json:"steps_per_attempt"`
	AttemptsPerMaze  int          `json:"attempts_per_maze"`
	AttemptCost      string       `json:"attempt_cost"`
}

type leaderboardResponse struct {
	Round   domain.Round       `json:"round"`
	Entries domain.Leaderboard `json:"entries"`
}

type choiceRequest struct {
	Ticket string         `json:"ticket"`
	Choice *domain.Choice `json:"choice"`
}

type attemptRequest struct {
	Ticket  string         `json:"ticket"`
	Choices domain.Attempt `json:"choices"`
}

type menuRequest struct {
	Seed *domain.RoundSeed `json:"seed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.service.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	round := s.service.CurrentRound()
	cfg := s.service.Config()
	s.writeJSON(w, http.StatusOK, roundResponse{
		Round:            round,
		RemainingSeconds: int64(round.Remaining(s.service.Now()).Seconds()),
		Steps:            cfg.StepsPerAttempt,
		AttemptsPerMaze:  cfg.AttemptsPerMaze,
		AttemptCost:      cfg.AttemptCost.StringFixed(2),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	status, err := s.service.Status(r.Context(), s.stores(player.ID), player)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	started, events, err := s.service.StartAttempt(r.Context(), s.stores(player.ID), player)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logEvents(player, events)

	status := http.StatusCreated
	if started.Resumed {
		status = http.StatusOK
	}
	s.writeJSON(w, status, started)
}

func (s *Server) handleSubmitChoice(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	var req choiceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Choice == nil {
		s.writeError(w, r, fmt.Errorf("%w: choice is required", domain.ErrInvalidChoice))
		return
	}
	accepted, events, err := s.service.SubmitChoice(r.Context(), s.stores(player.ID), player, req.Ticket, *req.Choice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logEvents(player, events)
	s.writeJSON(w, http.StatusOK, accepted)
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	var req attemptRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, events, err := s.service.SubmitAttempt(r.Context(), s.stores(player.ID), player, req.Ticket, req.Choices)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logEvents(player, events)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReturnToMenu(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	var req menuRequest
	if err := s.decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, err)
		return
	}
	seed := s.service.CurrentRound().Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	rec, err := s.service.ReturnToMenu(r.Context(), s.stores(player.ID), player, seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	seed := s.service.CurrentRound().Seed
	if raw := chi.URLParam(r, "seed"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: seed %q", errBadRequest, raw))
			return
		}
		seed = domain.RoundSeed(n)
	}
	lb := s.service.Leaderboard(r.Context(), s.stores(""), seed)
	if lb == nil {
		lb = domain.Leaderboard{}
	}
	s.writeJSON(w, http.StatusOK, leaderboardResponse{
		Round:   s.service.Round(seed),
		Entries: lb,
	})
}

// decode reads a JSON body. An empty body is a bad request that also matches io.EOF.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body: %w", errBadRequest, io.EOF)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
