package models

import "github.com/shopspring/decimal"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// CategoryGroup is one of the three 50/30/20 buckets an expense can be tagged with.
type CategoryGroup string

const (
	CategoryGroupNeeds   CategoryGroup = "needs"
	CategoryGroupWants   CategoryGroup = "wants"
	CategoryGroupSavings CategoryGroup = "savings"
)

// CategoryGroups lists the buckets in display order.
var CategoryGroups = []CategoryGroup{CategoryGroupNeeds, CategoryGroupWants, CategoryGroupSavings}

// Valid reports whether g is one of the known buckets.
func (g CategoryGroup) Valid() bool {
	switch g {
	case CategoryGroupNeeds, CategoryGroupWants, CategoryGroupSavings:
		return true
	}
	return false
}

// PaymentMethod represents how a transaction was paid.
type PaymentMethod string

const (
	PaymentMethodDebit      PaymentMethod = "debit"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodCash       PaymentMethod = "cash"
)

// TransactionStatus tells whether the money already left the account.
type TransactionStatus string

const (
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusPending TransactionStatus = "pending"
)

// StatusFor derives the initial status of a transaction from its payment method:
// credit card purchases stay pending until the bill is paid.
func StatusFor(method PaymentMethod) TransactionStatus {
	if method == PaymentMethodCreditCard {
		return TransactionStatusPending
	}
	return TransactionStatusPaid
}

// Transaction represents one income or expense event of a family group.
type Transaction struct {
	Base
	GroupID       string            `gorm:"type:uuid;not null;index:idx_transactions_group_date,priority:1" json:"group_id"`
	CreatedBy     string            `gorm:"type:uuid;not null" json:"created_by"`
	Description   string            `gorm:"not null" json:"description"`
	Amount        decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type          TransactionType   `gorm:"not null" json:"type"`
	CategoryGroup *CategoryGroup    `json:"category_group,omitempty"`
	SubcategoryID *string           `json:"subcategory_id,omitempty"`
	PaymentMethod PaymentMethod     `gorm:"not null" json:"payment_method"`
	Status        TransactionStatus `gorm:"not null" json:"status"`
	Date          Date              `gorm:"not null;index:idx_transactions_group_date,priority:2" json:"date"`
	DueDate       *Date             `json:"due_date,omitempty"`
}

// IsIncome reports whether the transaction adds money.
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// BudgetGroup returns the bucket the transaction counts toward, if any.
// Income never counts toward a bucket.
func (t *Transaction) BudgetGroup() (CategoryGroup, bool) {
	if t.IsIncome() || t.CategoryGroup == nil || !t.CategoryGroup.Valid() {
		return "", false
	}
	return *t.CategoryGroup, true
}
