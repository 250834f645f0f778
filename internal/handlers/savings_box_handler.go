package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/services"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

// SavingsBoxHandler handles savings box requests.
type SavingsBoxHandler struct {
	savingsBoxService services.SavingsBoxServicer
	auditService      services.AuditServicer
}

// NewSavingsBoxHandler creates a new SavingsBoxHandler.
func NewSavingsBoxHandler(savingsBoxService services.SavingsBoxServicer, auditService services.AuditServicer) *SavingsBoxHandler {
	return &SavingsBoxHandler{savingsBoxService: savingsBoxService, auditService: auditService}
}

// CreateSavingsBoxRequest represents the request payload for creating a savings box
type CreateSavingsBoxRequest struct {
	Name          string          `json:"name" binding:"required,min=2,max=100"`
	TargetAmount  decimal.Decimal `json:"target_amount" binding:"money"`
	InitialAmount decimal.Decimal `json:"initial_amount" binding:"money"`
}

// MovementRequest represents a deposit or withdrawal
type MovementRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,money"`
}

// SavingsBoxResponse is a box with its progress towards the goal.
type SavingsBoxResponse struct {
	models.SavingsBox
	Progress decimal.Decimal `json:"progress"`
}

func savingsBoxResponse(box *models.SavingsBox) SavingsBoxResponse {
	return SavingsBoxResponse{
		SavingsBox: *box,
		Progress:   budget.Progress(box.CurrentAmount, box.TargetAmount),
	}
}

// CreateBox creates a savings box
// @Summary     Create a savings box
// @Description Create a savings box with an optional goal (0 means no goal) and an optional initial deposit
// @Tags        savings-boxes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSavingsBoxRequest true "Savings box details"
// @Success     201 {object} SavingsBoxResponse "Savings box created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /savings-boxes [post]
func (h *SavingsBoxHandler) CreateBox(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingsBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	box, err := h.savingsBoxService.CreateBox(sess, req.Name, req.TargetAmount, req.InitialAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditCreateSavingsBox, "savings_box", box.ID, c.ClientIP(),
		map[string]interface{}{"name": box.Name, "target_amount": box.TargetAmount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"savings_box": savingsBoxResponse(box)})
}

// ListBoxes lists the group's savings boxes
// @Summary     List savings boxes
// @Description Get the family group's savings boxes, newest first
// @Tags        savings-boxes
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} SavingsBoxResponse "Savings boxes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /savings-boxes [get]
func (h *SavingsBoxHandler) ListBoxes(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	boxes, err := h.savingsBoxService.GetGroupBoxes(sess)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]SavingsBoxResponse, 0, len(boxes))
	for i := range boxes {
		resp = append(resp, savingsBoxResponse(&boxes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"savings_boxes": resp})
}

// GetBox returns one savings box
// @Summary     Get savings box
// @Description Get a savings box of the family group
// @Tags        savings-boxes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Savings box ID"
// @Success     200 {object} SavingsBoxResponse "Savings box"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings box not found"
// @Router      /savings-boxes/{id} [get]
func (h *SavingsBoxHandler) GetBox(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	boxID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	box, err := h.savingsBoxService.GetBoxByID(sess, boxID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"savings_box": savingsBoxResponse(box)})
}

// Deposit adds money to a savings box
// @Summary     Deposit
// @Description Add an amount to a savings box balance
// @Tags        savings-boxes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Savings box ID"
// @Param       request body MovementRequest true "Amount"
// @Success     200 {object} SavingsBoxResponse "Updated savings box"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings box not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /savings-boxes/{id}/deposit [post]
func (h *SavingsBoxHandler) Deposit(c *gin.Context) {
	h.move(c, services.AuditDeposit, h.savingsBoxService.Deposit)
}

// Withdraw takes money out of a savings box
// @Summary     Withdraw
// @Description Take an amount out of a savings box. Fails without changes when the balance is too low.
// @Tags        savings-boxes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Savings box ID"
// @Param       request body MovementRequest true "Amount"
// @Success     200 {object} SavingsBoxResponse "Updated savings box"
// @Failure     400 {object} ErrorResponse "Invalid amount or insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings box not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /savings-boxes/{id}/withdraw [post]
func (h *SavingsBoxHandler) Withdraw(c *gin.Context) {
	h.move(c, services.AuditWithdraw, h.savingsBoxService.Withdraw)
}

type movementFunc func(sess session.Session, boxID string, amount decimal.Decimal) (*models.SavingsBox, error)

func (h *SavingsBoxHandler) move(c *gin.Context, action string, apply movementFunc) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	boxID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	box, err := apply(sess, boxID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, action, "savings_box", boxID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.StringFixed(2), "balance": box.CurrentAmount.StringFixed(2)})

	c.JSON(http.StatusOK, gin.H{"savings_box": savingsBoxResponse(box)})
}

// DeleteBox permanently deletes a savings box
// @Summary     Delete savings box
// @Description Permanently delete a savings box and its movements
// @Tags        savings-boxes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Savings box ID"
// @Success     200 {object} MessageResponse "Savings box deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings box not found"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /savings-boxes/{id} [delete]
func (h *SavingsBoxHandler) DeleteBox(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	boxID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.savingsBoxService.DeleteBox(sess, boxID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditDeleteSavingsBox, "savings_box", boxID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Savings box deleted successfully"})
}

// ListMovements lists a box's deposits and withdrawals
// @Summary     List savings box movements
// @Description Deposits and withdrawals of a savings box, newest first, with the balance after each one
// @Tags        savings-boxes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Savings box ID"
// @Success     200 {array} models.SavingsBoxMovement "Movements"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Savings box not found"
// @Router      /savings-boxes/{id}/movements [get]
func (h *SavingsBoxHandler) ListMovements(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	boxID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	movements, err := h.savingsBoxService.GetMovements(sess, boxID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": movements})
}
