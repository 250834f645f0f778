package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	"github.com/Antonio-217/controle-financeiro/internal/models"
)

// dashboardService builds the monthly 50/30/20 view of a group.
type dashboardService struct {
	db       *gorm.DB
	notifier budget.DueNotifier
	now      func() time.Time
}

// NewDashboardService creates a new DashboardServicer. Bills due within
// dueWindowDays of today are reported as due soon.
func NewDashboardService(db *gorm.DB, dueWindowDays int) DashboardServicer {
	return &dashboardService{
		db:       db,
		notifier: budget.NewDueNotifier(dueWindowDays),
		now:      time.Now,
	}
}

// GetDashboard aggregates the group's transactions dated within period.
func (s *dashboardService) GetDashboard(groupID string, period budget.Period) (*Dashboard, error) {
	transactions, err := periodTransactions(s.db, groupID, period)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := models.DateOf(now)
	summary := budget.Aggregate(transactions)
	dueSoon := s.notifier.DueSoon(transactions, today)
	if dueSoon == nil {
		dueSoon = []models.Transaction{}
	}

	return &Dashboard{
		Period:       period,
		Previous:     period.Previous(),
		Next:         period.Next(),
		Summary:      summary,
		Buckets:      summary.Buckets(),
		DueSoonCount: len(dueSoon),
		DueSoon:      dueSoon,
		Transactions: transactions,
		GeneratedAt:  now.UTC(),
	}, nil
}
