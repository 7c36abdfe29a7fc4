package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"blindmaze/internal/domain"
	"blindmaze/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/shopspring/decimal"
)

// walletAPI is the slice of runtime.NakamaModule used for the mock currency.
type walletAPI interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error)
}

// NakamaEconomyAdapter implements ports.EconomyPort using Nakama's wallet system.
type NakamaEconomyAdapter struct {
	nk walletAPI
}

// NewNakamaEconomyAdapter creates a new economy adapter.
func NewNakamaEconomyAdapter(nk walletAPI) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{
		nk: nk,
	}
}

// GetBalance retrieves the current coin balance for a user.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	units, err := a.balanceUnits(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.FromMinorUnits(units), nil
}

func (a *NakamaEconomyAdapter) balanceUnits(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account.GetWallet() == "" {
		return 0, nil
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.GetWallet()), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[WalletCurrency], nil
}

// Deduct removes amount from the wallet. Nakama rejects updates that would leave
// a negative balance, which is reported as a refusal when the balance is short.
func (a *NakamaEconomyAdapter) Deduct(ctx context.Context, userID string, amount decimal.Decimal, metadata map[string]interface{}) (bool, error) {
	units := domain.ToMinorUnits(amount)
	if units <= 0 {
		return true, nil
	}

	_, _, err := a.nk.WalletUpdate(ctx, userID, map[string]int64{WalletCurrency: -units}, metadata, true)
	if err == nil {
		return true, nil
	}

	balance, berr := a.balanceUnits(ctx, userID)
	if berr == nil && balance < units {
		return false, nil
	}
	return false, fmt.Errorf("failed to update wallet for user %s: %w", userID, err)
}

var _ ports.EconomyPort = (*NakamaEconomyAdapter)(nil)
