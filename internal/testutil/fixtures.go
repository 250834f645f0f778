package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/session"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateTestGroup creates an empty family group.
func CreateTestGroup(t *testing.T, db *gorm.DB) *models.Group {
	t.Helper()

	group := &models.Group{Name: fmt.Sprintf("Family %d", nextID())}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateTestUser creates a user with a hashed password and unique email in a new group.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email in a new group.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return CreateTestMember(t, db, CreateTestGroup(t, db), email)
}

// CreateTestMember creates a user that belongs to group.
func CreateTestMember(t *testing.T, db *gorm.DB, group *models.Group, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:          email,
		Password:       string(hash),
		FirstName:      "Test",
		IsActive:       true,
		CurrentGroupID: &group.ID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SessionFor returns the session a logged-in user would carry.
func SessionFor(user *models.User) session.Session {
	return session.Session{UserID: user.ID, GroupID: user.GroupID(), Email: user.Email}
}

// CreateTestTransaction creates a paid debit transaction on date. A non-empty
// group tags the record with that bucket.
func CreateTestTransaction(t *testing.T, db *gorm.DB, user *models.User, txType models.TransactionType, amount string, group models.CategoryGroup, date models.Date) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		GroupID:       user.GroupID(),
		CreatedBy:     user.ID,
		Description:   fmt.Sprintf("Test Transaction %d", nextID()),
		Amount:        decimal.RequireFromString(amount),
		Type:          txType,
		PaymentMethod: models.PaymentMethodDebit,
		Status:        models.TransactionStatusPaid,
		Date:          date,
	}
	if group != "" {
		tx.CategoryGroup = &group
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestSavingsBox creates a savings box with the given balance and target.
func CreateTestSavingsBox(t *testing.T, db *gorm.DB, user *models.User, current, target string) *models.SavingsBox {
	t.Helper()

	box := &models.SavingsBox{
		GroupID:       user.GroupID(),
		CreatedBy:     user.ID,
		Name:          fmt.Sprintf("Test Box %d", nextID()),
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.RequireFromString(current),
	}
	if err := db.Create(box).Error; err != nil {
		t.Fatalf("failed to create test savings box: %v", err)
	}
	return box
}
