package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// fetchFunc performs one poll tick for a data source.
type fetchFunc func(ctx context.Context) error

// poller drives one data source's loop. At most one fetch is in flight at a
// time: Trigger and Stop cancel the pending fetch before anything else
// happens, so a superseded response can never commit after a newer one
// started. A fetch that fails with anything other than cancellation is
// retried after retryInterval; cancellation ends the loop instance silently.
type poller struct {
	name          string
	interval      time.Duration
	retryInterval time.Duration
	fetch         fetchFunc
	logger        zerolog.Logger

	mu     sync.Mutex
	parent context.Context
	cancel context.CancelFunc
}

func newPoller(name string, interval, retryInterval time.Duration, fetch fetchFunc, logger zerolog.Logger) *poller {
	return &poller{
		name:          name,
		interval:      interval,
		retryInterval: retryInterval,
		fetch:         fetch,
		logger:        logger,
	}
}

// bind attaches the poller to a parent context without starting a loop
// instance; gated loops bind at startup and trigger later.
func (p *poller) bind(ctx context.Context) {
	p.mu.Lock()
	p.parent = ctx
	p.mu.Unlock()
}

// Start binds the poller to a parent context and begins the first loop
// instance immediately.
func (p *poller) Start(ctx context.Context) {
	p.bind(ctx)
	p.Trigger()
}

// Trigger supersedes the current loop instance: the in-flight fetch (if any)
// is cancelled and a fresh instance starts with an immediate fetch. Safe to
// call concurrently with a running tick; the later call wins.
func (p *poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parent == nil || p.parent.Err() != nil {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(p.parent)
	p.cancel = cancel
	go p.run(ctx)
}

// Stop cancels the current loop instance without starting another.
func (p *poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *poller) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := p.fetch(ctx)

		var wait time.Duration
		switch {
		case err == nil:
			wait = p.interval
		case errors.Is(err, context.Canceled):
			// Superseded; the new loop instance owns all future scheduling.
			return
		default:
			p.logger.Warn().
				Err(err).
				Str("source", p.name).
				Msg("Poll failed, retrying")
			wait = p.retryInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
