package realtime

import (
	"sync"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	"github.com/Antonio-217/controle-financeiro/internal/services"
)

// Snapshot is a dashboard tagged with the view generation it belongs to.
type Snapshot struct {
	Generation uint64
	Dashboard  *services.Dashboard
}

// View follows one group through period changes. Each period change starts
// a new generation; snapshots of an older generation are discarded.
type View struct {
	hub     *Hub
	groupID string

	mu     sync.Mutex
	gen    uint64
	sub    *Subscription
	closed bool
	out    chan Snapshot
	wg     sync.WaitGroup
}

// NewView creates a view with no period selected.
func NewView(hub *Hub, groupID string) *View {
	return &View{
		hub:     hub,
		groupID: groupID,
		out:     make(chan Snapshot, 1),
	}
}

// Snapshots yields the latest snapshot of the current generation. It is
// closed by Close.
func (v *View) Snapshots() <-chan Snapshot { return v.out }

// Period returns the selected period and whether one is selected.
func (v *View) Period() (budget.Period, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sub == nil {
		return budget.Period{}, false
	}
	return v.sub.Period(), true
}

// Generation returns the current generation.
func (v *View) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen
}

// Select replaces the current subscription with one for period.
func (v *View) Select(period budget.Period) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrHubClosed
	}
	v.gen++
	gen := v.gen
	old := v.sub
	v.sub = nil
	select {
	case <-v.out:
	default:
	}
	v.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	sub, err := v.hub.Subscribe(v.groupID, period)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.closed || v.gen != gen {
		// superseded while subscribing
		v.mu.Unlock()
		sub.Stop()
		return nil
	}
	v.sub = sub
	v.wg.Add(1)
	v.mu.Unlock()

	go v.forward(gen, sub)
	return nil
}

// Next moves to the following month.
func (v *View) Next() error {
	return v.shift(budget.Period.Next)
}

// Previous moves to the month before.
func (v *View) Previous() error {
	return v.shift(budget.Period.Previous)
}

func (v *View) shift(move func(budget.Period) budget.Period) error {
	p, ok := v.Period()
	if !ok {
		return ErrNoPeriod
	}
	return v.Select(move(p))
}

// Close stops the current subscription and closes Snapshots.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
	v.wg.Wait()
	close(v.out)
}

func (v *View) forward(gen uint64, sub *Subscription) {
	defer v.wg.Done()
	for dash := range sub.Updates() {
		v.emit(gen, dash)
	}
}

func (v *View) emit(gen uint64, dash *services.Dashboard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen {
		return
	}
	select {
	case <-v.out:
	default:
	}
	v.out <- Snapshot{Generation: gen, Dashboard: dash}
}
