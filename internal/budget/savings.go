package budget

import (
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"

	"github.com/shopspring/decimal"
)

// NormalizeAmount rounds a money amount to cents and rejects anything not
// strictly positive.
func NormalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	return amount, nil
}

// Deposit returns the balance after adding amount.
func Deposit(current, amount decimal.Decimal) (decimal.Decimal, error) {
	amount, err := NormalizeAmount(amount)
	if err != nil {
		return current, err
	}
	return current.Add(amount), nil
}

// Withdraw returns the balance after removing amount. Taking out more than
// the balance fails and leaves current untouched.
func Withdraw(current, amount decimal.Decimal) (decimal.Decimal, error) {
	amount, err := NormalizeAmount(amount)
	if err != nil {
		return current, err
	}
	if amount.GreaterThan(current) {
		return current, apperrors.ErrInsufficientBalance
	}
	return current.Sub(amount), nil
}

// Progress returns current as a percentage of target, clamped to 100.
// A box without a goal reports 0.
func Progress(current, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return percent(current, target)
}
