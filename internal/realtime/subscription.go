package realtime

import (
	"errors"
	"sync"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	"github.com/Antonio-217/controle-financeiro/internal/services"
)

// ErrHubClosed is returned when subscribing to a hub that is shutting down.
var ErrHubClosed = errors.New("realtime: hub closed")

// ErrNoPeriod is returned when moving a view that has no period selected.
var ErrNoPeriod = errors.New("realtime: no period selected")

// Subscription receives the snapshots of one group and period. Only the
// latest undelivered snapshot is kept.
type Subscription struct {
	id      string
	groupID string
	period  budget.Period
	hub     *Hub

	mu      sync.Mutex
	lastSeq uint64
	stopped bool
	updates chan *services.Dashboard
}

func newSubscription(h *Hub, groupID string, period budget.Period) *Subscription {
	return &Subscription{
		id:      newSubscriptionID(),
		groupID: groupID,
		period:  period,
		hub:     h,
		updates: make(chan *services.Dashboard, 1),
	}
}

// ID returns the subscription id.
func (s *Subscription) ID() string { return s.id }

// Period returns the subscribed period.
func (s *Subscription) Period() budget.Period { return s.period }

// Updates yields snapshots until Stop closes it.
func (s *Subscription) Updates() <-chan *services.Dashboard { return s.updates }

// deliver replaces any pending snapshot with dash. Snapshots loaded before
// the last delivered one are dropped.
func (s *Subscription) deliver(seq uint64, dash *services.Dashboard) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || seq <= s.lastSeq {
		return false
	}
	s.lastSeq = seq
	select {
	case <-s.updates:
	default:
	}
	s.updates <- dash
	return true
}

// Stop unregisters the subscription. No snapshot is delivered after Stop
// returns, including one that was pending.
func (s *Subscription) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	select {
	case <-s.updates:
	default:
	}
	close(s.updates)
	s.mu.Unlock()

	s.hub.remove(s)
}
