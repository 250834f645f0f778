package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Antonio-217/controle-financeiro/internal/models"
)

// recordingNotifier remembers every group it was told about.
type recordingNotifier struct {
	mu     sync.Mutex
	groups []string
}

func (n *recordingNotifier) Notify(groupID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.groups = append(n.groups, groupID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.groups)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func date(y int, m time.Month, d int) models.Date {
	return models.NewDate(y, m, d)
}
