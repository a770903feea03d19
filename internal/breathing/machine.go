package breathing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/faycal55/respira/internal/domain"
)

// Haptics emits the short vibration played on every phase change.
type Haptics interface {
	Pulse()
}

// HapticsFunc adapts a function to Haptics.
type HapticsFunc func()

func (f HapticsFunc) Pulse() { f() }

// Observer receives every transition. Observers run on the machine's
// goroutine while it holds its lock, so they must not call back into the
// Machine.
type Observer func(State, Event)

type Option func(*Machine)

func WithClock(c Clock) Option { return func(m *Machine) { m.clock = c } }

func WithInterval(d time.Duration) Option { return func(m *Machine) { m.interval = d } }

func WithHaptics(h Haptics) Option { return func(m *Machine) { m.haptics = h } }

// WithNotifications gates haptic pulses, usually on the settings store.
func WithNotifications(enabled func() bool) Option {
	return func(m *Machine) { m.notifications = enabled }
}

func WithLogger(l *slog.Logger) Option { return func(m *Machine) { m.logger = l } }

// Machine owns one session and the ticker that advances it. At most one tick
// loop is alive at a time and a cancelled loop never mutates state.
type Machine struct {
	mu            sync.Mutex
	state         State
	clock         Clock
	interval      time.Duration
	haptics       Haptics
	notifications func() bool
	logger        *slog.Logger

	observers map[int]Observer
	nextObs   int

	gen    uint64
	ticker Ticker
	done   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state:         Idle(),
		clock:         SystemClock{},
		interval:      time.Second,
		notifications: func() bool { return true },
		logger:        slog.Default(),
		observers:     make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the session.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn and returns its unsubscribe func.
func (m *Machine) Subscribe(fn Observer) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// Start begins a session on t. A running session is reset first.
func (m *Machine) Start(t *domain.BreathingTechnique) error {
	next, err := Start(t)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.cancelLocked()
	m.state = next
	m.scheduleLocked()

	p, _ := next.Phase()
	m.logger.Debug("breathing session started",
		slog.String("technique", t.ID),
		slog.Int("total_duration", t.TotalDuration),
	)
	m.emitLocked(Event{Kind: EventStarted, Phase: p})
	return nil
}

// Pause freezes a running session and reports whether it did anything.
func (m *Machine) Pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != StatusRunning {
		return false
	}
	m.cancelLocked()
	m.state = Pause(m.state)
	m.emitLocked(Event{Kind: EventPaused, PhaseIndex: m.state.PhaseIndex})
	return true
}

// Resume continues a paused session.
func (m *Machine) Resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != StatusPaused || m.closed {
		return false
	}
	m.state = Resume(m.state)
	m.scheduleLocked()
	m.emitLocked(Event{Kind: EventResumed, PhaseIndex: m.state.PhaseIndex})
	return true
}

// Stop ends the session from any state.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// Close stops the session and waits for the tick loop to exit.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopLocked()
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Machine) stopLocked() {
	final := m.state
	m.cancelLocked()
	m.state = Stop(m.state)
	if final.Status == StatusIdle {
		return
	}
	observeEnd(final, "stopped")
	m.emitLocked(Event{Kind: EventStopped, PhaseIndex: final.PhaseIndex, Final: final})
}

func (m *Machine) scheduleLocked() {
	m.gen++
	m.ticker = m.clock.NewTicker(m.interval)
	m.done = make(chan struct{})
	m.wg.Add(1)
	go m.loop(m.gen, m.ticker, m.done)
}

func (m *Machine) cancelLocked() {
	m.gen++
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
		m.ticker = nil
		m.done = nil
	}
}

func (m *Machine) loop(gen uint64, t Ticker, done <-chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-t.C():
			if !m.onTick(gen) {
				return
			}
		}
	}
}

func (m *Machine) onTick(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.state.Status != StatusRunning {
		return false
	}

	next, events := Advance(m.state, 1)
	m.state = next
	for _, ev := range events {
		switch ev.Kind {
		case EventPhaseChanged:
			if m.haptics != nil && m.notifications() {
				m.haptics.Pulse()
			}
		case EventCompleted:
			observeEnd(ev.Final, "completed")
			m.logger.Debug("breathing session completed",
				slog.Int("cycles", ev.Final.Cycles),
				slog.Int("phase_index", ev.Final.PhaseIndex),
			)
		}
		m.emitLocked(ev)
	}
	m.emitLocked(Event{Kind: EventTick, PhaseIndex: m.state.PhaseIndex})

	if m.state.Status != StatusRunning {
		m.cancelLocked()
		return false
	}
	return true
}

func (m *Machine) emitLocked(ev Event) {
	for _, fn := range m.observers {
		fn(m.state, ev)
	}
}
