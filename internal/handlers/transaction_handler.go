package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/pagination"
	"github.com/Antonio-217/controle-financeiro/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	now                func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService, now: time.Now}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Description   string                 `json:"description" binding:"required,min=2,max=500"`
	Amount        decimal.Decimal        `json:"amount" binding:"required,money"`
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	CategoryGroup *models.CategoryGroup  `json:"category_group" binding:"omitempty,category_group"`
	SubcategoryID *string                `json:"subcategory_id"`
	PaymentMethod models.PaymentMethod   `json:"payment_method" binding:"required,payment_method"`
	Date          *models.Date           `json:"date"`
	DueDate       *models.Date           `json:"due_date"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or an expense for the family group. Credit card expenses start pending, everything else paid.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.TransactionInput{
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		CategoryGroup: req.CategoryGroup,
		SubcategoryID: req.SubcategoryID,
		PaymentMethod: req.PaymentMethod,
		Date:          models.DateOf(h.now()),
		DueDate:       req.DueDate,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	transaction, err := h.transactionService.CreateTransaction(sess, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditCreateTransaction, "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "amount": transaction.Amount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions handles the retrieval of the group's transactions
// @Summary     List transactions
// @Description With period, every transaction dated in that month, newest first. Without it, the paginated full history.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       period    query string false "Month as YYYY-MM"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, hasPeriod, err := parsePeriodQuery(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if hasPeriod {
		transactions, err := h.transactionService.GetPeriodTransactions(sess, period)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"period": period, "transactions": transactions})
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetGroupTransactions(sess, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction of the family group
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(sess, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Description        *string                   `json:"description" binding:"omitempty,min=2,max=500"`
	Amount             *decimal.Decimal          `json:"amount" binding:"omitempty,money"`
	Type               *models.TransactionType   `json:"type" binding:"omitempty,transaction_type"`
	CategoryGroup      *models.CategoryGroup     `json:"category_group" binding:"omitempty,category_group"`
	SubcategoryID      *string                   `json:"subcategory_id"`
	PaymentMethod      *models.PaymentMethod     `json:"payment_method" binding:"omitempty,payment_method"`
	Status             *models.TransactionStatus `json:"status" binding:"omitempty,transaction_status"`
	Date               *models.Date              `json:"date"`
	DueDate            *models.Date              `json:"due_date"`
	ClearDueDate       bool                      `json:"clear_due_date"`
	ClearCategoryGroup bool                      `json:"clear_category_group"`
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update an existing transaction. Setting status marks a pending expense as paid; changing the payment method alone re-derives the status. clear_category_group leaves an expense ungrouped and drops its subcategory.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(sess, txID, services.TransactionUpdate{
		Description:        req.Description,
		Amount:             req.Amount,
		Type:               req.Type,
		CategoryGroup:      req.CategoryGroup,
		SubcategoryID:      req.SubcategoryID,
		PaymentMethod:      req.PaymentMethod,
		Status:             req.Status,
		Date:               req.Date,
		DueDate:            req.DueDate,
		ClearDueDate:       req.ClearDueDate,
		ClearCategoryGroup: req.ClearCategoryGroup,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditUpdateTransaction, "transaction", txID, c.ClientIP(),
		map[string]interface{}{"status": transaction.Status, "amount": transaction.Amount.StringFixed(2)})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Permanently delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(sess, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditDeleteTransaction, "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
