package breathing

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) current(t *testing.T) *manualTicker {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.tickers)
	return c.tickers[len(c.tickers)-1]
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type harness struct {
	clock  *manualClock
	m      *Machine
	events chan Event
	pulses atomic.Int32
	notify atomic.Bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: &manualClock{}, events: make(chan Event, 256)}
	h.notify.Store(true)
	h.m = NewMachine(
		WithClock(h.clock),
		WithHaptics(HapticsFunc(func() { h.pulses.Add(1) })),
		WithNotifications(h.notify.Load),
	)
	h.m.Subscribe(func(_ State, ev Event) { h.events <- ev })
	t.Cleanup(h.m.Close)
	return h
}

// tick delivers n ticks and waits until each has been processed.
func (h *harness) tick(t *testing.T, n int) []Event {
	t.Helper()
	var seen []Event
	for i := 0; i < n; i++ {
		select {
		case h.clock.current(t).c <- time.Now():
		case <-time.After(time.Second):
			t.Fatalf("tick %d not consumed", i)
		}
		for {
			ev := h.wait(t)
			seen = append(seen, ev)
			if ev.Kind == EventTick {
				break
			}
		}
	}
	return seen
}

func (h *harness) wait(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestMachine_RunsToCompletion(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Start(technique(7, 4, 5)))
	assert.Equal(t, EventStarted, h.wait(t).Kind)

	seen := h.tick(t, 7)

	var completed *Event
	for i := range seen {
		if seen[i].Kind == EventCompleted {
			completed = &seen[i]
		}
	}
	require.NotNil(t, completed)
	assert.Equal(t, 1, completed.Final.PhaseIndex)
	assert.Equal(t, 2, completed.Final.PhaseRemaining)
	assert.Equal(t, Idle(), h.m.State())
	assert.Equal(t, int32(1), h.pulses.Load())

	// The loop is gone: nothing reads the ticker any more.
	select {
	case h.clock.current(t).c <- time.Now():
		t.Fatal("tick consumed after completion")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMachine_HapticsFollowNotificationSetting(t *testing.T) {
	h := newHarness(t)
	h.notify.Store(false)
	require.NoError(t, h.m.Start(technique(60, 1, 1)))
	h.wait(t)

	h.tick(t, 4)
	assert.Equal(t, int32(0), h.pulses.Load())

	h.notify.Store(true)
	h.tick(t, 2)
	assert.Equal(t, int32(2), h.pulses.Load())
	assert.Equal(t, 3, h.m.State().Cycles)
}

func TestMachine_PauseCancelsTicker(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Start(technique(60, 4, 6)))
	h.wait(t)
	h.tick(t, 3)

	first := h.clock.current(t)
	require.True(t, h.m.Pause())
	assert.Equal(t, EventPaused, h.wait(t).Kind)
	assert.True(t, first.stopped.Load())
	before := h.m.State()

	select {
	case first.c <- time.Now():
		t.Fatal("paused machine consumed a tick")
	case <-time.After(50 * time.Millisecond):
	}

	require.True(t, h.m.Resume())
	assert.Equal(t, EventResumed, h.wait(t).Kind)
	after := h.m.State()
	assert.Equal(t, before.PhaseRemaining, after.PhaseRemaining)
	assert.Equal(t, before.SessionRemaining, after.SessionRemaining)
	assert.Equal(t, 2, h.clock.count())

	h.tick(t, 1)
	assert.Equal(t, 56, h.m.State().SessionRemaining)
}

func TestMachine_MisuseIsNoop(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.m.Pause())
	assert.False(t, h.m.Resume())
	h.m.Stop()
	assert.Equal(t, Idle(), h.m.State())
	assert.Equal(t, 0, h.clock.count())
	assert.Empty(t, h.events)

	require.NoError(t, h.m.Start(technique(60, 4, 6)))
	h.wait(t)
	assert.False(t, h.m.Resume())
}

func TestMachine_StopResetsAndReportsFinal(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Start(technique(60, 2, 2)))
	h.wait(t)
	h.tick(t, 9)

	h.m.Stop()
	ev := h.wait(t)
	require.Equal(t, EventStopped, ev.Kind)
	assert.Equal(t, 2, ev.Final.Cycles)
	assert.Equal(t, 51, ev.Final.SessionRemaining)
	assert.Equal(t, Idle(), h.m.State())
	assert.True(t, h.clock.current(t).stopped.Load())
}

func TestMachine_StartIsReentrant(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Start(technique(60, 4, 6)))
	h.wait(t)
	h.tick(t, 5)
	old := h.clock.current(t)

	require.NoError(t, h.m.Start(technique(30, 3, 3)))
	assert.Equal(t, EventStarted, h.wait(t).Kind)
	assert.True(t, old.stopped.Load())

	s := h.m.State()
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 3, s.PhaseRemaining)
	assert.Equal(t, 30, s.SessionRemaining)
	assert.Equal(t, 0, s.Cycles)
}

func TestMachine_StartAfterClose(t *testing.T) {
	h := newHarness(t)
	h.m.Close()
	assert.ErrorIs(t, h.m.Start(technique(60, 4, 6)), ErrClosed)
}

func TestMachine_Unsubscribe(t *testing.T) {
	m := NewMachine(WithClock(&manualClock{}))
	t.Cleanup(m.Close)

	var calls atomic.Int32
	unsubscribe := m.Subscribe(func(State, Event) { calls.Add(1) })
	require.NoError(t, m.Start(technique(60, 4, 6)))
	unsubscribe()
	m.Stop()

	assert.Equal(t, int32(1), calls.Load())
}
