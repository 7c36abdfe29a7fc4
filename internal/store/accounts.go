package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blindmaze/internal/ports"
)

// AccountExists reports whether userID has been onboarded.
func (s *SQLiteStore) AccountExists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE user_id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read account: %w", err)
	}
	return true, nil
}

// UpdateProfile creates the account or updates its names. An empty username
// keeps the stored one.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO accounts (user_id, username, display_name, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
	username = CASE WHEN excluded.username = '' THEN accounts.username ELSE excluded.username END,
	display_name = excluded.display_name
`, userID, username, displayName, s.nowMillis())
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", userID, err)
	}
	return nil
}

// DisplayName returns the stored display name, or "" for unknown users.
func (s *SQLiteStore) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT display_name FROM accounts WHERE user_id = ?`, userID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read account: %w", err)
	}
	return name, nil
}

var _ ports.AccountPort = (*SQLiteStore)(nil)
