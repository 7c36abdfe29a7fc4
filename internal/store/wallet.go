package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"blindmaze/internal/domain"
	"blindmaze/internal/ports"

	"github.com/shopspring/decimal"
)

// GetBalance returns the user's balance; users without a wallet have zero.
func (s *SQLiteStore) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var units int64
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM wallets WHERE user_id = ?`, userID).Scan(&units)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read wallet: %w", err)
	}
	return domain.FromMinorUnits(units), nil
}

// Deduct removes amount only if the balance covers it, in one guarded update.
func (s *SQLiteStore) Deduct(ctx context.Context, userID string, amount decimal.Decimal, metadata map[string]interface{}) (bool, error) {
	units := domain.ToMinorUnits(amount)
	if units <= 0 {
		return true, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin deduction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = balance - ? WHERE user_id = ? AND balance >= ?`,
		units, userID, units,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update wallet for user %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update wallet for user %s: %w", userID, err)
	}
	if n == 0 {
		return false, nil
	}
	if err := s.appendLedger(ctx, tx, userID, -units, metadata); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit deduction: %w", err)
	}
	return true, nil
}

// deposit adds amount to the user's wallet in its own transaction, creating it if needed.
func (s *SQLiteStore) deposit(ctx context.Context, userID string, amount decimal.Decimal, metadata map[string]interface{}) error {
	units := domain.ToMinorUnits(amount)
	if units <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin credit: %w", err)
	}
	defer tx.Rollback()

	if err := s.credit(ctx, tx, userID, units, metadata); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit credit: %w", err)
	}
	return nil
}

// GrantWelcomeBonusOnce credits the bonus and records a marker in one transaction.
func (s *SQLiteStore) GrantWelcomeBonusOnce(ctx context.Context, userID string, amount decimal.Decimal, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	units := domain.ToMinorUnits(amount)
	if units <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin welcome bonus: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO welcome_bonuses (user_id, amount, granted_at) VALUES (?, ?, ?)`,
		userID, units, s.nowMillis(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record welcome bonus: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("failed to record welcome bonus: %w", err)
	} else if n == 0 {
		return false, nil
	}

	if err := s.credit(ctx, tx, userID, units, metadata); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to grant welcome bonus: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) credit(ctx context.Context, tx *sql.Tx, userID string, units int64, metadata map[string]interface{}) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO wallets (user_id, balance) VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET balance = balance + excluded.balance
`, userID, units)
	if err != nil {
		return fmt.Errorf("failed to update wallet for user %s: %w", userID, err)
	}
	return s.appendLedger(ctx, tx, userID, units, metadata)
}

func (s *SQLiteStore) appendLedger(ctx context.Context, tx *sql.Tx, userID string, delta int64, metadata map[string]interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger (user_id, delta, metadata, created_at) VALUES (?, ?, ?, ?)`,
		userID, delta, string(meta), s.nowMillis(),
	); err != nil {
		return fmt.Errorf("failed to append ledger: %w", err)
	}
	return nil
}

var (
	_ ports.EconomyPort      = (*SQLiteStore)(nil)
	_ ports.WelcomeBonusPort = (*SQLiteStore)(nil)
)
