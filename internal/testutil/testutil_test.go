package testutil_test

import (
	"testing"
	"time"

	"github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"family_groups", "users", "subcategories", "transactions", "savings_boxes", "savings_box_movements", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolation(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("second database sees %d users from the first", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" || user.GroupID() == "" {
		t.Fatalf("user fixture missing ids: %+v", user)
	}

	today := models.DateOf(time.Now())
	tx := testutil.CreateTestTransaction(t, db, user, models.TransactionTypeExpense, "12.50", models.CategoryGroupNeeds, today)

	var loaded models.Transaction
	testutil.AssertNoError(t, db.First(&loaded, "id = ?", tx.ID).Error)
	testutil.AssertDecimal(t, loaded.Amount, "12.50")
	if loaded.CategoryGroup == nil || *loaded.CategoryGroup != models.CategoryGroupNeeds {
		t.Errorf("category group not persisted: %v", loaded.CategoryGroup)
	}
	if loaded.Date.String() != today.String() {
		t.Errorf("date = %s, want %s", loaded.Date, today)
	}
	if loaded.DueDate != nil {
		t.Errorf("due date should be NULL, got %v", loaded.DueDate)
	}

	box := testutil.CreateTestSavingsBox(t, db, user, "100", "1000")
	if box.ID == "" {
		t.Fatal("savings box fixture missing id")
	}

	sess := testutil.SessionFor(user)
	if sess.Validate() != nil {
		t.Errorf("fixture session should be valid: %+v", sess)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrInvalidAmount, "INVALID_AMOUNT")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrPersistenceFailure, nil), "PERSISTENCE_FAILURE")
}
