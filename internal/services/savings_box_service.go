package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

// savingsBoxService handles savings box balances. Balance changes are applied
// as a single conditional UPDATE so concurrent movements never lose an update.
type savingsBoxService struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

// NewSavingsBoxService creates a new SavingsBoxServicer.
func NewSavingsBoxService(db *gorm.DB, notifier ChangeNotifier) SavingsBoxServicer {
	return &savingsBoxService{db: db, notifier: notifierOrNop(notifier)}
}

// CreateBox opens a box with an optional goal (zero means none) and an
// optional initial balance, which is recorded as a first deposit.
func (s *savingsBoxService) CreateBox(sess session.Session, name string, target, initial decimal.Decimal) (*models.SavingsBox, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must have at least 2 characters")
	}
	target, initial = target.Round(2), initial.Round(2)
	if target.IsNegative() || initial.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amounts cannot be negative")
	}

	box := &models.SavingsBox{
		GroupID:       sess.GroupID,
		CreatedBy:     sess.UserID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: initial,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(box).Error; err != nil {
			return err
		}
		if !initial.IsPositive() {
			return nil
		}
		return tx.Create(&models.SavingsBoxMovement{
			BoxID:        box.ID,
			GroupID:      box.GroupID,
			UserID:       sess.UserID,
			Kind:         models.MovementDeposit,
			Amount:       initial,
			BalanceAfter: initial,
		}).Error
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	s.notifier.Notify(sess.GroupID)
	return box, nil
}

// GetGroupBoxes lists the group's boxes, newest first.
func (s *savingsBoxService) GetGroupBoxes(sess session.Session) ([]models.SavingsBox, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	boxes := []models.SavingsBox{}
	if err := s.db.Where("group_id = ?", sess.GroupID).
		Order("created_at DESC, id DESC").
		Find(&boxes).Error; err != nil {
		return nil, storeError(err, nil)
	}
	return boxes, nil
}

// GetBoxByID retrieves one of the group's boxes.
func (s *savingsBoxService) GetBoxByID(sess session.Session, boxID string) (*models.SavingsBox, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return findBox(s.db, sess.GroupID, boxID)
}

func findBox(db *gorm.DB, groupID, boxID string) (*models.SavingsBox, error) {
	var box models.SavingsBox
	if err := db.Where("id = ? AND group_id = ?", boxID, groupID).First(&box).Error; err != nil {
		return nil, storeError(err, apperrors.ErrSavingsBoxNotFound)
	}
	return &box, nil
}

// Deposit adds amount to the box balance.
func (s *savingsBoxService) Deposit(sess session.Session, boxID string, amount decimal.Decimal) (*models.SavingsBox, error) {
	return s.move(sess, boxID, models.MovementDeposit, amount)
}

// Withdraw removes amount from the box balance. A withdrawal larger than the
// balance fails with INSUFFICIENT_BALANCE and changes nothing.
func (s *savingsBoxService) Withdraw(sess session.Session, boxID string, amount decimal.Decimal) (*models.SavingsBox, error) {
	return s.move(sess, boxID, models.MovementWithdraw, amount)
}

func (s *savingsBoxService) move(sess session.Session, boxID string, kind models.MovementKind, amount decimal.Decimal) (*models.SavingsBox, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	amount, err := budget.NormalizeAmount(amount)
	if err != nil {
		return nil, err
	}

	var box *models.SavingsBox
	err = s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.SavingsBox{}).Where("id = ? AND group_id = ?", boxID, sess.GroupID)
		expr := gorm.Expr("current_amount + ?", amount)
		if kind == models.MovementWithdraw {
			q = q.Where("current_amount >= ?", amount)
			expr = gorm.Expr("current_amount - ?", amount)
		}

		res := q.Updates(map[string]interface{}{
			"current_amount": expr,
			"updated_at":     time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either the box is gone or the balance was too low.
			if _, err := findBox(tx, sess.GroupID, boxID); err != nil {
				return err
			}
			return apperrors.ErrInsufficientBalance
		}

		updated, err := findBox(tx, sess.GroupID, boxID)
		if err != nil {
			return err
		}
		updated.CurrentAmount = updated.CurrentAmount.Round(2)
		box = updated

		return tx.Create(&models.SavingsBoxMovement{
			BoxID:        box.ID,
			GroupID:      box.GroupID,
			UserID:       sess.UserID,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: box.CurrentAmount,
		}).Error
	})
	if err != nil {
		return nil, storeError(err, apperrors.ErrSavingsBoxNotFound)
	}

	logger.Get().Infow("savings box movement",
		"box_id", box.ID,
		"group_id", box.GroupID,
		"kind", kind,
		"amount", amount.String(),
		"balance", box.CurrentAmount.String(),
	)
	s.notifier.Notify(sess.GroupID)
	return box, nil
}

// DeleteBox permanently removes a box and its movement history.
func (s *savingsBoxService) DeleteBox(sess session.Session, boxID string) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND group_id = ?", boxID, sess.GroupID).Delete(&models.SavingsBox{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrSavingsBoxNotFound
		}
		return tx.Where("box_id = ?", boxID).Delete(&models.SavingsBoxMovement{}).Error
	})
	if err != nil {
		return storeError(err, nil)
	}

	logger.Get().Infow("savings box deleted", "box_id", boxID, "group_id", sess.GroupID)
	s.notifier.Notify(sess.GroupID)
	return nil
}

// GetMovements returns the box's deposits and withdrawals, newest first.
func (s *savingsBoxService) GetMovements(sess session.Session, boxID string) ([]models.SavingsBoxMovement, error) {
	if _, err := s.GetBoxByID(sess, boxID); err != nil {
		return nil, err
	}

	movements := []models.SavingsBoxMovement{}
	if err := s.db.Where("box_id = ?", boxID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error; err != nil {
		return nil, storeError(err, nil)
	}
	return movements, nil
}
