// Package realtime pushes dashboard snapshots to live clients. A Hub keeps
// the subscriptions of every group and rebuilds their snapshots whenever a
// group's ledger changes.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/services"
	"github.com/Antonio-217/controle-financeiro/internal/uuid"
)

// DefaultFanOut bounds how many periods of one group are rebuilt at once.
const DefaultFanOut = 4

// Loader builds the snapshot of a group for a period.
type Loader interface {
	GetDashboard(groupID string, period budget.Period) (*services.Dashboard, error)
}

// Hub fans ledger changes out to live subscriptions.
type Hub struct {
	loader Loader
	fanOut int
	log    *zap.SugaredLogger

	// seq orders snapshot loads. A load that started earlier never
	// overwrites one that started later.
	seq atomic.Uint64

	mu     sync.Mutex
	groups map[string]map[string]*Subscription
	closed bool
	wg     sync.WaitGroup
}

// NewHub creates a Hub. fanOut <= 0 uses DefaultFanOut.
func NewHub(loader Loader, fanOut int) *Hub {
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	return &Hub{
		loader: loader,
		fanOut: fanOut,
		log:    logger.Named("realtime"),
		groups: make(map[string]map[string]*Subscription),
	}
}

// Subscribe registers a subscription and delivers its first snapshot before
// returning. The caller must Stop it.
func (h *Hub) Subscribe(groupID string, period budget.Period) (*Subscription, error) {
	sub := newSubscription(h, groupID, period)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	subs, ok := h.groups[groupID]
	if !ok {
		subs = make(map[string]*Subscription)
		h.groups[groupID] = subs
	}
	subs[sub.id] = sub
	h.mu.Unlock()

	seq := h.seq.Add(1)
	dash, err := h.loader.GetDashboard(groupID, period)
	if err != nil {
		sub.Stop()
		return nil, err
	}
	sub.deliver(seq, dash)

	h.log.Debugw("Subscription started",
		"subscription_id", sub.id,
		"group_id", groupID,
		"period", period.String(),
	)
	return sub, nil
}

// Notify schedules a rebuild of every snapshot of the group. It does not
// block the caller.
func (h *Hub) Notify(groupID string) {
	h.mu.Lock()
	if h.closed || len(h.groups[groupID]) == 0 {
		h.mu.Unlock()
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		if err := h.Refresh(context.Background(), groupID); err != nil {
			h.log.Warnw("Snapshot refresh failed", "group_id", groupID, "error", err)
		}
	}()
}

// Refresh rebuilds the group's snapshots, loading each subscribed period
// once. Subscribers of a period whose load fails keep their last snapshot.
func (h *Hub) Refresh(ctx context.Context, groupID string) error {
	byPeriod := h.subscribersByPeriod(groupID)
	if len(byPeriod) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.fanOut)
	for period, subs := range byPeriod {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seq := h.seq.Add(1)
			dash, err := h.loader.GetDashboard(groupID, period)
			if err != nil {
				return err
			}
			delivered := 0
			for _, sub := range subs {
				if sub.deliver(seq, dash) {
					delivered++
				}
			}
			h.log.Debugw("Snapshot delivered",
				"group_id", groupID,
				"period", period.String(),
				"subscribers", delivered,
			)
			return nil
		})
	}
	return g.Wait()
}

// Subscribers returns how many live subscriptions the group has.
func (h *Hub) Subscribers(groupID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[groupID])
}

// Close stops every subscription and waits for scheduled refreshes.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*Subscription
	for _, subs := range h.groups {
		for _, sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Stop()
	}
	h.wg.Wait()
}

func (h *Hub) subscribersByPeriod(groupID string) map[budget.Period][]*Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[budget.Period][]*Subscription)
	for _, sub := range h.groups[groupID] {
		out[sub.period] = append(out[sub.period], sub)
	}
	return out
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.groups[sub.groupID]
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(h.groups, sub.groupID)
	}
}

func newSubscriptionID() string {
	return uuid.New()
}
