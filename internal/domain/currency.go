package domain

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places stored for currency amounts.
const CurrencyPlaces = 2

// ToMinorUnits converts an amount to integer cents, truncating extra precision.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(CurrencyPlaces).IntPart()
}

// FromMinorUnits converts integer cents back to an amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -CurrencyPlaces)
}
