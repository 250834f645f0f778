package budget

import (
	"sort"

	"github.com/Antonio-217/controle-financeiro/internal/models"
)

// DefaultDueWindowDays is how many days ahead of today a bill counts as due soon.
const DefaultDueWindowDays = 3

// DueNotifier finds expenses whose due date falls within WindowDays of today.
type DueNotifier struct {
	WindowDays int
}

// NewDueNotifier returns a notifier; a negative window falls back to the default.
func NewDueNotifier(windowDays int) DueNotifier {
	if windowDays < 0 {
		windowDays = DefaultDueWindowDays
	}
	return DueNotifier{WindowDays: windowDays}
}

// DueSoon returns the expenses due in [today, today+WindowDays], earliest first.
// Dates are compared as whole calendar days.
func (n DueNotifier) DueSoon(records []models.Transaction, today models.Date) []models.Transaction {
	var due []models.Transaction
	for i := range records {
		if n.isDueSoon(&records[i], today) {
			due = append(due, records[i])
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.Before(due[j].DueDate.Time)
	})
	return due
}

// Count returns len(DueSoon(records, today)) without allocating.
func (n DueNotifier) Count(records []models.Transaction, today models.Date) int {
	count := 0
	for i := range records {
		if n.isDueSoon(&records[i], today) {
			count++
		}
	}
	return count
}

func (n DueNotifier) isDueSoon(r *models.Transaction, today models.Date) bool {
	if r.IsIncome() || r.DueDate == nil {
		return false
	}
	days := today.DaysUntil(*r.DueDate)
	return days >= 0 && days <= n.WindowDays
}

// DueSoonCount counts expenses due within the default window.
func DueSoonCount(records []models.Transaction, today models.Date) int {
	return NewDueNotifier(DefaultDueWindowDays).Count(records, today)
}
