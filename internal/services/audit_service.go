package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

// Audit actions.
const (
	AuditRegister          = "REGISTER"
	AuditLogin             = "LOGIN"
	AuditCreateTransaction = "CREATE_TRANSACTION"
	AuditUpdateTransaction = "UPDATE_TRANSACTION"
	AuditDeleteTransaction = "DELETE_TRANSACTION"
	AuditCreateSavingsBox  = "CREATE_SAVINGS_BOX"
	AuditDeleteSavingsBox  = "DELETE_SAVINGS_BOX"
	AuditDeposit           = "DEPOSIT"
	AuditWithdraw          = "WITHDRAW"
	AuditCreateSubcategory = "CREATE_SUBCATEGORY"
	AuditDeleteSubcategory = "DELETE_SUBCATEGORY"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(sess session.Session, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       sess.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}
	if sess.GroupID != "" {
		entry.GroupID = &sess.GroupID
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", sess.UserID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
