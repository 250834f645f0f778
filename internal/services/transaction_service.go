package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/pagination"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

const transactionOrder = "date DESC, created_at DESC"

// transactionService handles transaction-related business logic.
type transactionService struct {
	db       *gorm.DB
	notifier ChangeNotifier
	now      func() time.Time
}

// NewTransactionService creates a new TransactionServicer. notifier is told
// about every committed change; it may be nil.
func NewTransactionService(db *gorm.DB, notifier ChangeNotifier) TransactionServicer {
	return &transactionService{
		db:       db,
		notifier: notifierOrNop(notifier),
		now:      time.Now,
	}
}

// CreateTransaction records an income or expense for the session's group.
// The status is derived from the payment method.
func (s *transactionService) CreateTransaction(sess session.Session, input TransactionInput) (*models.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		GroupID:       sess.GroupID,
		CreatedBy:     sess.UserID,
		Description:   input.Description,
		Amount:        input.Amount,
		Type:          input.Type,
		CategoryGroup: input.CategoryGroup,
		SubcategoryID: input.SubcategoryID,
		PaymentMethod: input.PaymentMethod,
		Status:        models.StatusFor(input.PaymentMethod),
		Date:          input.Date,
		DueDate:       input.DueDate,
	}
	if transaction.Date.IsZero() {
		transaction.Date = models.DateOf(s.now())
	}
	if err := normalizeTransaction(transaction); err != nil {
		return nil, err
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, storeError(err, nil)
	}

	logger.Get().Infow("transaction created",
		"transaction_id", transaction.ID,
		"group_id", transaction.GroupID,
		"type", transaction.Type,
	)
	s.notifier.Notify(sess.GroupID)
	return transaction, nil
}

// normalizeTransaction validates t and clears the fields income does not use.
func normalizeTransaction(t *models.Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	if len([]rune(t.Description)) < 2 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must have at least 2 characters")
	}

	amount, err := budget.NormalizeAmount(t.Amount)
	if err != nil {
		return err
	}
	t.Amount = amount

	switch t.Type {
	case models.TransactionTypeIncome:
		t.CategoryGroup = nil
		t.SubcategoryID = nil
		t.DueDate = nil
	case models.TransactionTypeExpense:
		if t.CategoryGroup != nil && !t.CategoryGroup.Valid() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "category group must be needs, wants or savings")
		}
		if t.SubcategoryID != nil && *t.SubcategoryID == "" {
			t.SubcategoryID = nil
		}
		if t.SubcategoryID != nil && t.CategoryGroup == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "a subcategory requires a category group")
		}
	default:
		return apperrors.ErrInvalidTransactionType
	}

	switch t.PaymentMethod {
	case models.PaymentMethodDebit, models.PaymentMethodCreditCard, models.PaymentMethodCash:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "payment method must be debit, credit_card or cash")
	}

	switch t.Status {
	case models.TransactionStatusPaid, models.TransactionStatusPending:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be paid or pending")
	}
	return nil
}

// GetTransactionByID retrieves a transaction of the session's group.
func (s *transactionService) GetTransactionByID(sess session.Session, transactionID string) (*models.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	var transaction models.Transaction
	if err := s.db.Where("id = ? AND group_id = ?", transactionID, sess.GroupID).First(&transaction).Error; err != nil {
		return nil, storeError(err, apperrors.ErrTransactionNotFound)
	}
	return &transaction, nil
}

// GetPeriodTransactions returns the group's transactions dated within period,
// newest first.
func (s *transactionService) GetPeriodTransactions(sess session.Session, period budget.Period) ([]models.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return periodTransactions(s.db, sess.GroupID, period)
}

func periodTransactions(db *gorm.DB, groupID string, period budget.Period) ([]models.Transaction, error) {
	first, last := period.Range()

	transactions := []models.Transaction{}
	if err := db.Where("group_id = ? AND date >= ? AND date <= ?", groupID, first, last).
		Order(transactionOrder).
		Find(&transactions).Error; err != nil {
		return nil, storeError(err, nil)
	}
	return transactions, nil
}

// GetGroupTransactions pages through the group's whole history, newest first.
func (s *transactionService) GetGroupTransactions(sess session.Session, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("group_id = ?", sess.GroupID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storeError(err, nil)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order(transactionOrder).
		Find(&transactions).Error; err != nil {
		return nil, storeError(err, nil)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateTransaction changes the given fields. Changing the payment method
// without an explicit status re-derives the status.
func (s *transactionService) UpdateTransaction(sess session.Session, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(sess, transactionID)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		transaction.Description = *update.Description
	}
	if update.Amount != nil {
		transaction.Amount = *update.Amount
	}
	if update.Type != nil {
		transaction.Type = *update.Type
	}
	if update.ClearCategoryGroup {
		transaction.CategoryGroup = nil
		transaction.SubcategoryID = nil
	} else {
		if update.CategoryGroup != nil {
			transaction.CategoryGroup = update.CategoryGroup
		}
		if update.SubcategoryID != nil {
			transaction.SubcategoryID = update.SubcategoryID
		}
	}
	if update.PaymentMethod != nil && *update.PaymentMethod != transaction.PaymentMethod {
		transaction.PaymentMethod = *update.PaymentMethod
		transaction.Status = models.StatusFor(transaction.PaymentMethod)
	}
	if update.Status != nil {
		transaction.Status = *update.Status
	}
	if update.Date != nil {
		transaction.Date = *update.Date
	}
	if update.ClearDueDate {
		transaction.DueDate = nil
	} else if update.DueDate != nil {
		transaction.DueDate = update.DueDate
	}

	if err := normalizeTransaction(transaction); err != nil {
		return nil, err
	}

	res := s.db.Model(transaction).
		Where("group_id = ?", sess.GroupID).
		Select("description", "amount", "type", "category_group", "subcategory_id",
			"payment_method", "status", "date", "due_date", "updated_at").
		Updates(transaction)
	if res.Error != nil {
		return nil, storeError(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrTransactionNotFound
	}

	s.notifier.Notify(sess.GroupID)
	return transaction, nil
}

// DeleteTransaction permanently removes a transaction.
func (s *transactionService) DeleteTransaction(sess session.Session, transactionID string) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	res := s.db.Where("id = ? AND group_id = ?", transactionID, sess.GroupID).Delete(&models.Transaction{})
	if res.Error != nil {
		return storeError(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	logger.Get().Infow("transaction deleted", "transaction_id", transactionID, "group_id", sess.GroupID)
	s.notifier.Notify(sess.GroupID)
	return nil
}
