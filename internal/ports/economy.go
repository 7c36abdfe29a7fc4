package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// EconomyPort defines the interface for the mock in-app currency.
type EconomyPort interface {
	// GetBalance retrieves the current coin balance for a user.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// Deduct removes amount from the user's balance.
	// It either fully succeeds (true) or leaves the balance untouched (false).
	Deduct(ctx context.Context, userID string, amount decimal.Decimal, metadata map[string]interface{}) (bool, error)
}
