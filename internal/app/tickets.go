package app

import (
	"errors"
	"fmt"
	"time"

	"blindmaze/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

var (
	ErrInvalidTicket        = errors.New("invalid attempt ticket")
	ErrTicketPlayerMismatch = errors.New("attempt ticket belongs to another player")
)

// TicketClaims binds an open attempt to a player and a round.
type TicketClaims struct {
	Seed domain.RoundSeed `json:"seed"`
	jwt.StandardClaims
}

// AttemptID returns the attempt the ticket was issued for.
func (c TicketClaims) AttemptID() string { return c.Id }

// PlayerID returns the player the ticket was issued to.
func (c TicketClaims) PlayerID() string { return c.Subject }

// TicketIssuer signs and verifies attempt tickets.
type TicketIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTicketIssuer builds an issuer. now may be nil to use time.Now.
func NewTicketIssuer(secret, issuer string, now func() time.Time) *TicketIssuer {
	if now == nil {
		now = time.Now
	}
	return &TicketIssuer{secret: []byte(secret), issuer: issuer, now: now}
}

// Issue signs a ticket for attemptID that expires at expiresAt.
func (s *TicketIssuer) Issue(playerID, attemptID string, seed domain.RoundSeed, expiresAt time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("ticket issuer is nil")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("ticket secret is not configured")
	}
	if playerID == "" || attemptID == "" {
		return "", fmt.Errorf("player and attempt are required")
	}

	claims := TicketClaims{
		Seed: seed,
		StandardClaims: jwt.StandardClaims{
			Id:        attemptID,
			Subject:   playerID,
			Issuer:    s.issuer,
			IssuedAt:  s.now().Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, expiry and issuer of a ticket and returns its claims.
func (s *TicketIssuer) Verify(ticket string) (TicketClaims, error) {
	if s == nil || len(s.secret) == 0 {
		return TicketClaims{}, fmt.Errorf("%w: issuer not configured", ErrInvalidTicket)
	}

	// Time-based claims are checked below against the injected clock.
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	var claims TicketClaims
	token, err := parser.ParseWithClaims(ticket, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return TicketClaims{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if !token.Valid {
		return TicketClaims{}, ErrInvalidTicket
	}
	if claims.ExpiresAt != 0 && s.now().Unix() > claims.ExpiresAt {
		return TicketClaims{}, fmt.Errorf("%w: expired", ErrInvalidTicket)
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return TicketClaims{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidTicket, claims.Issuer)
	}
	if claims.Id == "" || claims.Subject == "" {
		return TicketClaims{}, fmt.Errorf("%w: missing attempt or player", ErrInvalidTicket)
	}
	return claims, nil
}
