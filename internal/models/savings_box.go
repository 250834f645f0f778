package models

import "github.com/shopspring/decimal"

// SavingsBox is a named, goal-tracked sub-balance of a family group.
type SavingsBox struct {
	Base
	GroupID       string          `gorm:"type:uuid;not null;index" json:"group_id"`
	CreatedBy     string          `gorm:"type:uuid;not null" json:"created_by"`
	Name          string          `gorm:"not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"current_amount"`
}

// HasGoal reports whether a target amount was set for the box.
func (b *SavingsBox) HasGoal() bool {
	return b.TargetAmount.IsPositive()
}

// MovementKind is the direction of a savings box movement.
type MovementKind string

const (
	MovementDeposit  MovementKind = "deposit"
	MovementWithdraw MovementKind = "withdraw"
)

// SavingsBoxMovement records one deposit or withdrawal and the balance it left.
type SavingsBoxMovement struct {
	Base
	BoxID        string          `gorm:"type:uuid;not null;index" json:"box_id"`
	GroupID      string          `gorm:"type:uuid;not null" json:"group_id"`
	UserID       string          `gorm:"type:uuid;not null" json:"user_id"`
	Kind         MovementKind    `gorm:"not null" json:"kind"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"balance_after"`
}
