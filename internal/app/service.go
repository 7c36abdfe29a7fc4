package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blindmaze/internal/config"
	"blindmaze/internal/domain"
	"blindmaze/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownPlayer      = errors.New("player not identified")
	ErrInsufficientFunds  = errors.New("insufficient funds for an attempt")
	ErrAttemptNotOpen     = errors.New("attempt is not open")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Player identifies the caller. Name is what the leaderboard shows.
type Player struct {
	ID   string
	Name string
}

// DisplayName falls back to the ID when no name is known.
func (p Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Status is the menu screen view of a player's round.
type Status struct {
	Round        domain.Round        `json:"round"`
	Record       domain.PlayerRecord `json:"record"`
	Steps        int                 `json:"steps_per_attempt"`
	AttemptsLeft int                 `json:"attempts_left"`
	AttemptCost  decimal.Decimal     `json:"attempt_cost"`
	// Balance is nil when the economy could not be reached.
	Balance  *decimal.Decimal `json:"balance,omitempty"`
	CanStart bool             `json:"can_start"`
}

// AttemptStarted is returned when an attempt is opened or resumed.
type AttemptStarted struct {
	Ticket        string       `json:"ticket"`
	AttemptID     string       `json:"attempt_id"`
	Round         domain.Round `json:"round"`
	AttemptNumber int          `json:"attempt_number"`
	AttemptsLeft  int          `json:"attempts_left"`
	Steps         int          `json:"steps_per_attempt"`
	ChoicesMade   int          `json:"choices_made"`
	Resumed       bool         `json:"resumed"`
}

// AttemptResult is the outcome of a finalized attempt.
type AttemptResult struct {
	Seed         domain.RoundSeed  `json:"seed"`
	AttemptID    string            `json:"attempt_id"`
	Evaluation   domain.Evaluation `json:"evaluation"`
	BestScore    float64           `json:"best_score"`
	PersonalBest bool              `json:"personal_best"`
	// Rank is the leaderboard position after this attempt, 0 when the board did not change.
	Rank         int `json:"rank,omitempty"`
	AttemptsLeft int `json:"attempts_left"`
}

// ChoiceAccepted acknowledges a single choice.
type ChoiceAccepted struct {
	Step     int            `json:"step"`
	Steps    int            `json:"steps_per_attempt"`
	Complete bool           `json:"complete"`
	Result   *AttemptResult `json:"result,omitempty"`
}

// Service contains blind maze use-cases. Storage is passed per call because
// adapters are bound to the calling player.
type Service struct {
	cfg     *config.GameConfig
	clock   domain.RoundClock
	economy ports.EconomyPort
	tickets *TicketIssuer
	logger  runtime.Logger
	now     func() time.Time
	newID   func() string
}

// NewService constructs a Service. cfg may be nil to use the defaults and now may
// be nil to use time.Now.
func NewService(cfg *config.GameConfig, economy ports.EconomyPort, tickets *TicketIssuer, logger runtime.Logger, now func() time.Time) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:     cfg,
		clock:   domain.NewRoundClock(cfg.RoundDurationHours),
		economy: economy,
		tickets: tickets,
		logger:  logger,
		now:     now,
		newID:   uuid.NewString,
	}
}

// Config returns the rules the service runs with.
func (s *Service) Config() *config.GameConfig { return s.cfg }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// CurrentRound resolves the round at the injected clock's current time.
func (s *Service) CurrentRound() domain.Round {
	return s.clock.RoundAt(s.now())
}

// Round resolves the boundaries of seed.
func (s *Service) Round(seed domain.RoundSeed) domain.Round {
	return s.clock.Round(seed)
}

func (s *Service) repository(store ports.KVStore) *Repository {
	return NewRepository(store, s.logger, s.cfg.AttemptsPerMaze, s.cfg.StepsPerAttempt, s.cfg.LeaderboardSize)
}

// Status reports the player's record for the current round and whether a new attempt may start.
func (s *Service) Status(ctx context.Context, store ports.KVStore, player Player) (Status, error) {
	if player.ID == "" {
		return Status{}, ErrUnknownPlayer
	}

	round := s.CurrentRound()
	rec := s.repository(store).LoadPlayerRecord(ctx, round.Seed)

	st := Status{
		Round:        round,
		Record:       rec,
		Steps:        s.cfg.StepsPerAttempt,
		AttemptsLeft: rec.AttemptsLeft(s.cfg.AttemptsPerMaze),
		AttemptCost:  s.cfg.AttemptCost,
	}

	balance, err := s.economy.GetBalance(ctx, player.ID)
	if err != nil {
		s.logger.Warn("Status [User:%s]: balance unavailable: %v", player.ID, err)
	} else {
		st.Balance = &balance
	}

	st.CanStart = rec.CurrentPhase() != domain.PhasePlaying &&
		st.AttemptsLeft > 0 &&
		st.Balance != nil && !st.Balance.LessThan(s.cfg.AttemptCost)
	return st, nil
}

// StartAttempt opens a paid attempt in the current round, or resumes the open one.
//
// The record is saved before the cost is deducted so a storage failure never
// charges the player. A refused deduction restores the previous record. An
// unreadable record refuses the start instead of saving over it.
func (s *Service) StartAttempt(ctx context.Context, store ports.KVStore, player Player) (AttemptStarted, []Event, error) {
	if player.ID == "" {
		return AttemptStarted{}, nil, ErrUnknownPlayer
	}

	round := s.CurrentRound()
	repo := s.repository(store)
	rec, ok := repo.loadPlayerRecord(ctx, round.Seed)
	if !ok {
		return AttemptStarted{}, nil, fmt.Errorf("%w: player record unreadable", ErrStorageUnavailable)
	}

	if rec.CurrentPhase() == domain.PhasePlaying {
		ticket, err := s.issueTicket(player, rec.OpenAttemptID, round)
		if err != nil {
			return AttemptStarted{}, nil, err
		}
		return AttemptStarted{
			Ticket:        ticket,
			AttemptID:     rec.OpenAttemptID,
			Round:         round,
			AttemptNumber: rec.AttemptsUsed,
			AttemptsLeft:  rec.AttemptsLeft(s.cfg.AttemptsPerMaze),
			Steps:         s.cfg.StepsPerAttempt,
			ChoicesMade:   len(rec.Choices),
			Resumed:       true,
		}, nil, nil
	}

	if rec.AttemptsLeft(s.cfg.AttemptsPerMaze) == 0 {
		return AttemptStarted{}, nil, domain.ErrNoAttemptsLeft
	}

	balance, err := s.economy.GetBalance(ctx, player.ID)
	if err != nil {
		return AttemptStarted{}, nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if balance.LessThan(s.cfg.AttemptCost) {
		return AttemptStarted{}, nil, ErrInsufficientFunds
	}

	prev := rec
	attemptID := s.newID()
	if err := rec.Begin(attemptID, s.cfg.AttemptsPerMaze); err != nil {
		return AttemptStarted{}, nil, err
	}
	if err := repo.SavePlayerRecord(ctx, round.Seed, rec); err != nil {
		return AttemptStarted{}, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.cfg.AttemptCost.IsPositive() {
		metadata := map[string]interface{}{
			"reason":     "blindmaze_attempt",
			"seed":       int64(round.Seed),
			"attempt_id": attemptID,
		}
		ok, err := s.economy.Deduct(ctx, player.ID, s.cfg.AttemptCost, metadata)
		if err != nil || !ok {
			if rerr := repo.SavePlayerRecord(ctx, round.Seed, prev); rerr != nil {
				s.logger.Error("StartAttempt [User:%s]: failed to restore record after refused payment: %v", player.ID, rerr)
			}
			if err != nil {
				return AttemptStarted{}, nil, fmt.Errorf("failed to deduct attempt cost: %w", err)
			}
			return AttemptStarted{}, nil, ErrInsufficientFunds
		}
	}

	ticket, err := s.issueTicket(player, attemptID, round)
	if err != nil {
		// The attempt is paid for and open; calling StartAttempt again resumes it.
		s.logger.Error("StartAttempt [User:%s]: failed to issue ticket for %s: %v", player.ID, attemptID, err)
		return AttemptStarted{}, nil, err
	}

	events := []Event{{
		Kind: EventAttemptStarted,
		Payload: AttemptStartedPayload{
			Seed:          round.Seed,
			AttemptID:     attemptID,
			AttemptNumber: rec.AttemptsUsed,
		},
		Recipients: []string{player.ID},
	}}

	return AttemptStarted{
		Ticket:        ticket,
		AttemptID:     attemptID,
		Round:         round,
		AttemptNumber: rec.AttemptsUsed,
		AttemptsLeft:  rec.AttemptsLeft(s.cfg.AttemptsPerMaze),
		Steps:         s.cfg.StepsPerAttempt,
	}, events, nil
}

// SubmitChoice appends one choice to the open attempt. The choice that completes
// the attempt finalizes and scores it.
func (s *Service) SubmitChoice(ctx context.Context, store ports.KVStore, player Player, ticket string, choice domain.Choice) (ChoiceAccepted, []Event, error) {
	if !choice.Valid() {
		return ChoiceAccepted{}, nil, domain.ErrInvalidChoice
	}

	claims, repo, rec, err := s.openAttempt(ctx, store, player, ticket)
	if err != nil {
		return ChoiceAccepted{}, nil, err
	}

	complete, err := rec.Choose(choice, s.cfg.StepsPerAttempt)
	if err != nil {
		return ChoiceAccepted{}, nil, err
	}
	if !complete {
		if err := repo.SavePlayerRecord(ctx, claims.Seed, rec); err != nil {
			return ChoiceAccepted{}, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return ChoiceAccepted{Step: len(rec.Choices), Steps: s.cfg.StepsPerAttempt}, nil, nil
	}

	result, events, err := s.finalize(ctx, repo, player, claims, &rec)
	if err != nil {
		return ChoiceAccepted{}, nil, err
	}
	return ChoiceAccepted{
		Step:     s.cfg.StepsPerAttempt,
		Steps:    s.cfg.StepsPerAttempt,
		Complete: true,
		Result:   &result,
	}, events, nil
}

// SubmitAttempt finalizes the open attempt with every choice at once.
// Partial or over-long attempts are rejected, never padded or truncated.
func (s *Service) SubmitAttempt(ctx context.Context, store ports.KVStore, player Player, ticket string, attempt domain.Attempt) (AttemptResult, []Event, error) {
	if len(attempt) != s.cfg.StepsPerAttempt {
		return AttemptResult{}, nil, fmt.Errorf("%w: got %d choices, want %d", domain.ErrAttemptLength, len(attempt), s.cfg.StepsPerAttempt)
	}
	for i, c := range attempt {
		if !c.Valid() {
			return AttemptResult{}, nil, fmt.Errorf("%w at step %d", domain.ErrInvalidChoice, i)
		}
	}

	claims, repo, rec, err := s.openAttempt(ctx, store, player, ticket)
	if err != nil {
		return AttemptResult{}, nil, err
	}
	if err := rec.Fill(attempt, s.cfg.StepsPerAttempt); err != nil {
		return AttemptResult{}, nil, err
	}
	return s.finalize(ctx, repo, player, claims, &rec)
}

// ReturnToMenu moves the player's record for seed from the result screen back to the menu.
func (s *Service) ReturnToMenu(ctx context.Context, store ports.KVStore, player Player, seed domain.RoundSeed) (domain.PlayerRecord, error) {
	if player.ID == "" {
		return domain.PlayerRecord{}, ErrUnknownPlayer
	}
	repo := s.repository(store)
	rec, ok := repo.loadPlayerRecord(ctx, seed)
	if !ok {
		return rec, fmt.Errorf("%w: player record unreadable", ErrStorageUnavailable)
	}
	if rec.CurrentPhase() == domain.PhaseMenu {
		return rec, nil
	}
	if err := rec.ReturnToMenu(); err != nil {
		return rec, err
	}
	if err := repo.SavePlayerRecord(ctx, seed, rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return rec, nil
}

// Leaderboard returns the shared leaderboard of seed.
func (s *Service) Leaderboard(ctx context.Context, store ports.KVStore, seed domain.RoundSeed) domain.Leaderboard {
	return s.repository(store).LoadLeaderboard(ctx, seed)
}

func (s *Service) issueTicket(player Player, attemptID string, round domain.Round) (string, error) {
	return s.tickets.Issue(player.ID, attemptID, round.Seed, round.EndsAt.Add(s.cfg.TicketGrace()))
}

// openAttempt verifies the ticket and loads the record of the round it was issued for.
func (s *Service) openAttempt(ctx context.Context, store ports.KVStore, player Player, ticket string) (TicketClaims, *Repository, domain.PlayerRecord, error) {
	if player.ID == "" {
		return TicketClaims{}, nil, domain.PlayerRecord{}, ErrUnknownPlayer
	}
	claims, err := s.tickets.Verify(ticket)
	if err != nil {
		return TicketClaims{}, nil, domain.PlayerRecord{}, err
	}
	if claims.PlayerID() != player.ID {
		return TicketClaims{}, nil, domain.PlayerRecord{}, ErrTicketPlayerMismatch
	}

	repo := s.repository(store)
	rec, ok := repo.loadPlayerRecord(ctx, claims.Seed)
	if !ok {
		return TicketClaims{}, nil, domain.PlayerRecord{}, fmt.Errorf("%w: player record unreadable", ErrStorageUnavailable)
	}
	if rec.CurrentPhase() != domain.PhasePlaying || rec.OpenAttemptID != claims.AttemptID() {
		return TicketClaims{}, nil, domain.PlayerRecord{}, ErrAttemptNotOpen
	}
	return claims, repo, rec, nil
}

// finalize scores the collected choices and applies the personal best and leaderboard updates.
// Storage failures past this point are logged; the score is still returned.
// An unreadable leaderboard is left untouched.
func (s *Service) finalize(ctx context.Context, repo *Repository, player Player, claims TicketClaims, rec *domain.PlayerRecord) (AttemptResult, []Event, error) {
	seed := claims.Seed
	solution := domain.GenerateSolution(seed, s.cfg.StepsPerAttempt)
	eval, err := domain.Evaluate(rec.Choices, solution, s.cfg.CurveExponent)
	if err != nil {
		return AttemptResult{}, nil, err
	}

	prevBest := rec.BestScore
	rec.Complete(eval)
	if err := repo.SavePlayerRecord(ctx, seed, *rec); err != nil {
		s.logger.Error("finalize [User:%s]: failed to save record for round %d: %v", player.ID, seed, err)
	}

	result := AttemptResult{
		Seed:         seed,
		AttemptID:    claims.AttemptID(),
		Evaluation:   eval,
		BestScore:    rec.BestScore,
		AttemptsLeft: rec.AttemptsLeft(s.cfg.AttemptsPerMaze),
	}
	events := []Event{{
		Kind: EventAttemptScored,
		Payload: AttemptScoredPayload{
			Seed:       seed,
			AttemptID:  claims.AttemptID(),
			Evaluation: eval,
		},
		Recipients: []string{player.ID},
	}}

	if eval.Score <= prevBest {
		return result, events, nil
	}

	result.PersonalBest = true
	events = append(events, Event{
		Kind: EventPersonalBest,
		Payload: PersonalBestPayload{
			Seed:          seed,
			Score:         eval.Score,
			PreviousScore: prevBest,
		},
		Recipients: []string{player.ID},
	})

	name := player.DisplayName()
	current, ok := repo.loadLeaderboard(ctx, seed)
	if !ok {
		s.logger.Warn("finalize [User:%s]: leaderboard for round %d unreadable, skipping update", player.ID, seed)
		return result, events, nil
	}
	updated, changed := current.Submit(name, eval.Score, s.cfg.LeaderboardSize)
	if !changed {
		return result, events, nil
	}
	if err := repo.SaveLeaderboard(ctx, seed, updated); err != nil {
		s.logger.Error("finalize [User:%s]: failed to save leaderboard for round %d: %v", player.ID, seed, err)
		return result, events, nil
	}

	result.Rank, _ = updated.Rank(name)
	events = append(events, Event{
		Kind: EventLeaderboardUpdated,
		Payload: LeaderboardUpdatedPayload{
			Seed:       seed,
			PlayerName: name,
			Score:      eval.Score,
			Rank:       result.Rank,
		},
		Recipients: []string{player.ID},
	})
	return result, events, nil
}
