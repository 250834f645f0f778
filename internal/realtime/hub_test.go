package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	"github.com/Antonio-217/controle-financeiro/internal/services"
)

var (
	october  = budget.Period{Year: 2026, Month: time.October}
	november = budget.Period{Year: 2026, Month: time.November}
)

// fakeLoader numbers every snapshot it builds through DueSoonCount.
type fakeLoader struct {
	mu    sync.Mutex
	calls map[budget.Period]int
	total int
	err   error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{calls: make(map[budget.Period]int)}
}

func (f *fakeLoader) GetDashboard(groupID string, period budget.Period) (*services.Dashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls[period]++
	f.total++
	return &services.Dashboard{Period: period, DueSoonCount: f.total}, nil
}

func (f *fakeLoader) callsFor(p budget.Period) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[p]
}

func receive(t *testing.T, ch <-chan *services.Dashboard) *services.Dashboard {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "updates channel closed")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func assertNothingPending(t *testing.T, ch <-chan *services.Dashboard) {
	t.Helper()
	select {
	case d, ok := <-ch:
		if ok {
			t.Fatalf("unexpected snapshot %+v", d)
		}
	default:
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	hub := NewHub(newFakeLoader(), 0)
	defer hub.Close()

	sub, err := hub.Subscribe("g1", october)
	require.NoError(t, err)
	defer sub.Stop()

	d := receive(t, sub.Updates())
	assert.Equal(t, october, d.Period)
	assert.Equal(t, 1, hub.Subscribers("g1"))
	assert.NotEmpty(t, sub.ID())
}

func TestSubscribeLoadFailure(t *testing.T) {
	loader := newFakeLoader()
	loader.err = errors.New("store down")
	hub := NewHub(loader, 0)
	defer hub.Close()

	_, err := hub.Subscribe("g1", october)
	require.Error(t, err)
	assert.Equal(t, 0, hub.Subscribers("g1"))
}

func TestRefresh(t *testing.T) {
	t.Run("reaches_every_subscriber_of_the_group", func(t *testing.T) {
		loader := newFakeLoader()
		hub := NewHub(loader, 0)
		defer hub.Close()

		a, err := hub.Subscribe("g1", october)
		require.NoError(t, err)
		b, err := hub.Subscribe("g1", november)
		require.NoError(t, err)
		other, err := hub.Subscribe("g2", october)
		require.NoError(t, err)
		receive(t, a.Updates())
		receive(t, b.Updates())
		receive(t, other.Updates())

		require.NoError(t, hub.Refresh(context.Background(), "g1"))

		assert.Equal(t, october, receive(t, a.Updates()).Period)
		assert.Equal(t, november, receive(t, b.Updates()).Period)
		assertNothingPending(t, other.Updates())
	})

	t.Run("loads_each_period_once", func(t *testing.T) {
		loader := newFakeLoader()
		hub := NewHub(loader, 2)
		defer hub.Close()

		for i := 0; i < 5; i++ {
			_, err := hub.Subscribe("g1", october)
			require.NoError(t, err)
		}
		require.Equal(t, 5, loader.callsFor(october))

		require.NoError(t, hub.Refresh(context.Background(), "g1"))
		assert.Equal(t, 6, loader.callsFor(october))
	})

	t.Run("keeps_only_the_latest_snapshot", func(t *testing.T) {
		hub := NewHub(newFakeLoader(), 0)
		defer hub.Close()

		sub, err := hub.Subscribe("g1", october)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			require.NoError(t, hub.Refresh(context.Background(), "g1"))
		}

		assert.Equal(t, 4, receive(t, sub.Updates()).DueSoonCount)
		assertNothingPending(t, sub.Updates())
	})

	t.Run("load_error_is_returned", func(t *testing.T) {
		loader := newFakeLoader()
		hub := NewHub(loader, 0)
		defer hub.Close()

		sub, err := hub.Subscribe("g1", october)
		require.NoError(t, err)
		receive(t, sub.Updates())

		loader.mu.Lock()
		loader.err = errors.New("store down")
		loader.mu.Unlock()

		require.Error(t, hub.Refresh(context.Background(), "g1"))
		assertNothingPending(t, sub.Updates())
	})

	t.Run("no_subscribers_is_a_noop", func(t *testing.T) {
		loader := newFakeLoader()
		hub := NewHub(loader, 0)
		defer hub.Close()

		require.NoError(t, hub.Refresh(context.Background(), "nobody"))
		assert.Equal(t, 0, loader.total)
	})
}

func TestDeliverDropsStaleLoads(t *testing.T) {
	hub := NewHub(newFakeLoader(), 0)
	defer hub.Close()
	sub, err := hub.Subscribe("g1", october)
	require.NoError(t, err)
	receive(t, sub.Updates())

	assert.True(t, sub.deliver(10, &services.Dashboard{DueSoonCount: 10}))
	assert.False(t, sub.deliver(9, &services.Dashboard{DueSoonCount: 9}))
	assert.Equal(t, 10, receive(t, sub.Updates()).DueSoonCount)
}

func TestNotify(t *testing.T) {
	loader := newFakeLoader()
	hub := NewHub(loader, 0)
	defer hub.Close()

	sub, err := hub.Subscribe("g1", october)
	require.NoError(t, err)
	receive(t, sub.Updates())

	hub.Notify("g1")
	assert.Equal(t, october, receive(t, sub.Updates()).Period)

	hub.Notify("g2")
	assert.Equal(t, 2, loader.total)
}

func TestStop(t *testing.T) {
	hub := NewHub(newFakeLoader(), 0)
	defer hub.Close()

	sub, err := hub.Subscribe("g1", october)
	require.NoError(t, err)

	// the initial snapshot is still pending
	sub.Stop()
	sub.Stop()

	_, ok := <-sub.Updates()
	assert.False(t, ok, "pending snapshot must be dropped and the channel closed")
	assert.Equal(t, 0, hub.Subscribers("g1"))

	require.NoError(t, hub.Refresh(context.Background(), "g1"))
	assert.False(t, sub.deliver(100, &services.Dashboard{}))
}

func TestHubClose(t *testing.T) {
	hub := NewHub(newFakeLoader(), 0)
	sub, err := hub.Subscribe("g1", october)
	require.NoError(t, err)

	hub.Close()
	hub.Close()

	for range sub.Updates() {
	}
	_, err = hub.Subscribe("g1", october)
	assert.ErrorIs(t, err, ErrHubClosed)
}
