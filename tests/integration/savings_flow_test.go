package integration

import (
	"net/http"
	"testing"
)

func TestSavingsFlow_DepositWithdraw(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "saver@test.com", "password123")

	// Step 1: Open a box with a goal and an initial balance
	rec := app.request(http.MethodPost, "/api/v1/savings-boxes",
		`{"name":"Trip to Lisbon","target_amount":"4000","initial_amount":"1000"}`, token)
	mustStatus(t, rec, http.StatusCreated)
	box := object(t, parseJSON(t, rec), "savings_box")
	boxID := box["id"].(string)
	assertAmount(t, box["current_amount"], "1000")
	assertAmount(t, box["progress"], "25")

	// Step 2: Deposit
	rec = app.request(http.MethodPost, "/api/v1/savings-boxes/"+boxID+"/deposit", `{"amount":"500.50"}`, token)
	mustStatus(t, rec, http.StatusOK)
	assertAmount(t, object(t, parseJSON(t, rec), "savings_box")["current_amount"], "1500.5")

	// Step 3: Withdrawing more than the balance fails without changing it
	rec = app.request(http.MethodPost, "/api/v1/savings-boxes/"+boxID+"/withdraw", `{"amount":"2000"}`, token)
	mustStatus(t, rec, http.StatusBadRequest)
	if code := errorCode(t, rec); code != "INSUFFICIENT_BALANCE" {
		t.Errorf("expected INSUFFICIENT_BALANCE, got %s", code)
	}
	rec = app.request(http.MethodGet, "/api/v1/savings-boxes/"+boxID, "", token)
	mustStatus(t, rec, http.StatusOK)
	assertAmount(t, object(t, parseJSON(t, rec), "savings_box")["current_amount"], "1500.5")

	// Step 4: Zero amounts are rejected before persistence
	rec = app.request(http.MethodPost, "/api/v1/savings-boxes/"+boxID+"/deposit", `{"amount":"0"}`, token)
	mustStatus(t, rec, http.StatusBadRequest)
	if code := errorCode(t, rec); code != "INVALID_AMOUNT" {
		t.Errorf("expected INVALID_AMOUNT, got %s", code)
	}

	// Step 5: Withdraw the exact balance
	rec = app.request(http.MethodPost, "/api/v1/savings-boxes/"+boxID+"/withdraw", `{"amount":"1500.50"}`, token)
	mustStatus(t, rec, http.StatusOK)
	assertAmount(t, object(t, parseJSON(t, rec), "savings_box")["current_amount"], "0")

	// Step 6: History has the initial deposit and both movements, newest first
	rec = app.request(http.MethodGet, "/api/v1/savings-boxes/"+boxID+"/movements", "", token)
	mustStatus(t, rec, http.StatusOK)
	movements := parseJSON(t, rec)["movements"].([]interface{})
	if len(movements) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(movements))
	}
	latest := movements[0].(map[string]interface{})
	if latest["kind"] != "withdraw" {
		t.Errorf("expected newest movement to be the withdrawal, got %v", latest["kind"])
	}
	assertAmount(t, latest["balance_after"], "0")

	// Step 7: Delete
	rec = app.request(http.MethodDelete, "/api/v1/savings-boxes/"+boxID, "", token)
	mustStatus(t, rec, http.StatusOK)
	rec = app.request(http.MethodGet, "/api/v1/savings-boxes/"+boxID, "", token)
	mustStatus(t, rec, http.StatusNotFound)
}

func TestSavingsFlow_ListIsScopedToGroup(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "boxes@test.com", "password123")
	otherToken, _, _ := app.registerUser(t, "boxes-other@test.com", "password123")

	for _, body := range []string{`{"name":"Emergency"}`, `{"name":"New car","target_amount":"30000"}`} {
		rec := app.request(http.MethodPost, "/api/v1/savings-boxes", body, token)
		mustStatus(t, rec, http.StatusCreated)
	}

	rec := app.request(http.MethodGet, "/api/v1/savings-boxes", "", token)
	mustStatus(t, rec, http.StatusOK)
	boxes := parseJSON(t, rec)["savings_boxes"].([]interface{})
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	// newest first
	if boxes[0].(map[string]interface{})["name"] != "New car" {
		t.Errorf("expected newest box first, got %v", boxes[0])
	}

	rec = app.request(http.MethodGet, "/api/v1/savings-boxes", "", otherToken)
	mustStatus(t, rec, http.StatusOK)
	if boxes := parseJSON(t, rec)["savings_boxes"].([]interface{}); len(boxes) != 0 {
		t.Errorf("expected no boxes for another family, got %d", len(boxes))
	}
}
