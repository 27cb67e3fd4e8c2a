// Package poller periodically fetches a list from a remote source and
// publishes the latest result to the UI.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
)

// FetchFunc retrieves the full current list from a source.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Snapshot is the state of a poller after a fetch cycle. Items keeps the
// last successful result even when LastError is set.
type Snapshot[T any] struct {
	Source    string
	Items     []T
	LastError error
	UpdatedAt time.Time
}

// Config describes one poller.
type Config struct {
	Source   string
	Interval time.Duration
	// Floor is the shortest interval allowed; shorter intervals are raised
	// to it.
	Floor time.Duration
	// Timeout bounds a single fetch. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration
}

// Clamp raises interval to floor.
func Clamp(interval, floor time.Duration) time.Duration {
	if interval < floor {
		return floor
	}
	return interval
}

// Poller runs FetchFunc once on start and then on every interval. Ticks that
// arrive while a fetch is running are dropped; an explicit Refresh during a
// fetch schedules exactly one more fetch after it.
type Poller[T any] struct {
	source   string
	interval time.Duration
	timeout  time.Duration
	fetch    FetchFunc[T]
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	items    []T
	lastErr  error
	updated  time.Time
	fetching bool
	pending  bool
	closed   bool

	updates chan Snapshot[T]
}

// New creates a poller. The interval is clamped to cfg.Floor.
func New[T any](cfg Config, fetch FetchFunc[T], log *logger.Logger) *Poller[T] {
	return &Poller[T]{
		source:   cfg.Source,
		interval: Clamp(cfg.Interval, cfg.Floor),
		timeout:  cfg.Timeout,
		fetch:    fetch,
		log:      log.With("source", cfg.Source),
		now:      time.Now,
		updates:  make(chan Snapshot[T], 1),
	}
}

// Interval returns the effective polling interval.
func (p *Poller[T]) Interval() time.Duration {
	return p.interval
}

// Timeout returns the bound on a single fetch, zero when unbounded.
func (p *Poller[T]) Timeout() time.Duration {
	return p.timeout
}

// Updates delivers a snapshot after every fetch cycle. Only the newest
// snapshot is buffered. The channel closes when Run returns.
func (p *Poller[T]) Updates() <-chan Snapshot[T] {
	return p.updates
}

// Snapshot returns the current state.
func (p *Poller[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Run polls until ctx is done.
func (p *Poller[T]) Run(ctx context.Context) {
	defer p.close()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, false)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, false)
		}
	}
}

// Refresh fetches now. If a fetch is already running, one more fetch is
// queued to run right after it and Refresh returns immediately.
func (p *Poller[T]) Refresh(ctx context.Context) {
	p.poll(ctx, true)
}

func (p *Poller[T]) poll(ctx context.Context, requested bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.fetching {
		if requested {
			p.pending = true
		}
		p.mu.Unlock()
		return
	}
	p.fetching = true
	p.mu.Unlock()

	for {
		p.fetchOnce(ctx)

		p.mu.Lock()
		if p.pending && ctx.Err() == nil && !p.closed {
			p.pending = false
			p.mu.Unlock()
			continue
		}
		p.pending = false
		p.fetching = false
		p.mu.Unlock()
		return
	}
}

func (p *Poller[T]) fetchOnce(ctx context.Context) {
	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	items, err := p.fetch(fetchCtx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if err != nil {
		p.lastErr = err
		if ctx.Err() == nil {
			p.log.Warn(err, "fetch failed, keeping previous items")
		}
	} else {
		p.items = items
		p.lastErr = nil
		p.updated = p.now()
		p.log.Debug("fetch succeeded", "items", len(items))
	}

	snap := p.snapshotLocked()
	select {
	case p.updates <- snap:
		return
	default:
	}
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- snap:
	default:
	}
}

func (p *Poller[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(p.items))
	copy(items, p.items)
	return Snapshot[T]{
		Source:    p.source,
		Items:     items,
		LastError: p.lastErr,
		UpdatedAt: p.updated,
	}
}

func (p *Poller[T]) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.updates)
}
