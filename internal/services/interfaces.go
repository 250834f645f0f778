package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/pagination"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// SubcategoryServicer defines the contract for a group's category settings.
type SubcategoryServicer interface {
	ListSubcategories(sess session.Session) ([]models.Subcategory, error)
	CreateSubcategory(sess session.Session, group models.CategoryGroup, code, name string) (*models.Subcategory, error)
	DeleteSubcategory(sess session.Session, id string) error
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	Description   string
	Amount        decimal.Decimal
	Type          models.TransactionType
	CategoryGroup *models.CategoryGroup
	SubcategoryID *string
	PaymentMethod models.PaymentMethod
	Date          models.Date
	DueDate       *models.Date
}

// TransactionUpdate holds the fields to change; nil fields are left as is.
// ClearDueDate removes an existing due date. ClearCategoryGroup leaves an
// expense ungrouped and drops its subcategory.
type TransactionUpdate struct {
	Description        *string
	Amount             *decimal.Decimal
	Type               *models.TransactionType
	CategoryGroup      *models.CategoryGroup
	SubcategoryID      *string
	PaymentMethod      *models.PaymentMethod
	Status             *models.TransactionStatus
	Date               *models.Date
	DueDate            *models.Date
	ClearDueDate       bool
	ClearCategoryGroup bool
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(sess session.Session, input TransactionInput) (*models.Transaction, error)
	GetTransactionByID(sess session.Session, transactionID string) (*models.Transaction, error)
	GetPeriodTransactions(sess session.Session, period budget.Period) ([]models.Transaction, error)
	GetGroupTransactions(sess session.Session, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	UpdateTransaction(sess session.Session, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(sess session.Session, transactionID string) error
}

// SavingsBoxServicer defines the contract for savings box balances.
type SavingsBoxServicer interface {
	CreateBox(sess session.Session, name string, target, initial decimal.Decimal) (*models.SavingsBox, error)
	GetGroupBoxes(sess session.Session) ([]models.SavingsBox, error)
	GetBoxByID(sess session.Session, boxID string) (*models.SavingsBox, error)
	Deposit(sess session.Session, boxID string, amount decimal.Decimal) (*models.SavingsBox, error)
	Withdraw(sess session.Session, boxID string, amount decimal.Decimal) (*models.SavingsBox, error)
	DeleteBox(sess session.Session, boxID string) error
	GetMovements(sess session.Session, boxID string) ([]models.SavingsBoxMovement, error)
}

// Dashboard is everything the monthly screen shows for one group.
type Dashboard struct {
	Period       budget.Period        `json:"period"`
	Previous     budget.Period        `json:"previous"`
	Next         budget.Period        `json:"next"`
	Summary      budget.Summary       `json:"summary"`
	Buckets      []budget.BucketCard  `json:"buckets"`
	DueSoonCount int                  `json:"due_soon_count"`
	DueSoon      []models.Transaction `json:"due_soon"`
	Transactions []models.Transaction `json:"transactions"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// DashboardServicer builds period snapshots. It is keyed by group rather than
// session so the live feed can rebuild snapshots without a request.
type DashboardServicer interface {
	GetDashboard(groupID string, period budget.Period) (*Dashboard, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(sess session.Session, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

// ChangeNotifier is told, after commit, that a group's ledger changed.
type ChangeNotifier interface {
	Notify(groupID string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

func notifierOrNop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Notifiers tells every notifier in order.
type Notifiers []ChangeNotifier

// Notify implements ChangeNotifier.
func (ns Notifiers) Notify(groupID string) {
	for _, n := range ns {
		if n != nil {
			n.Notify(groupID)
		}
	}
}
