package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// persistence writes the latest snapshot of one store in the background.
// Writes are coalesced: if several Sets happen while a write is in flight only
// the newest snapshot is written next, so storage never goes backwards.
type persistence struct {
	name      string
	key       string
	persister Persister
	logger    *slog.Logger
	timeout   time.Duration

	mu      sync.Mutex
	pending []byte
	dirty   bool
	running bool
	idle    chan struct{}
}

func (p *persistence) schedule(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = data
	p.dirty = true
	if p.running {
		return
	}
	p.running = true
	p.idle = make(chan struct{})
	go p.drain(p.idle)
}

func (p *persistence) drain(idle chan struct{}) {
	for {
		p.mu.Lock()
		if !p.dirty {
			p.running = false
			p.mu.Unlock()
			close(idle)
			return
		}
		data := p.pending
		p.dirty = false
		p.mu.Unlock()

		p.write(data)
	}
}

func (p *persistence) write(data []byte) {
	timeout := p.timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := p.persister.Save(ctx, p.key, data); err != nil {
		writeFailures.WithLabelValues(p.name).Inc()
		p.logger.Warn("store: persist failed, keeping in-memory state",
			slog.String("store", p.name),
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
		return
	}
	writesTotal.WithLabelValues(p.name).Inc()
}

func (p *persistence) flush(ctx context.Context) error {
	for {
		p.mu.Lock()
		if !p.running {
			p.mu.Unlock()
			return nil
		}
		idle := p.idle
		p.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
