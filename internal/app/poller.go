package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/reading"
	"github.com/five82/shelf/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute

	flightRefresh = "refresh"
)

type reportLoader interface {
	LoadReport(ctx context.Context) ([]catalog.Book, reading.Report, error)
}

// Refresher is the single writer of the store. The poller and manual
// refreshes from the UI share one flight key, so a newer load cancels an
// older one and only the latest result reaches the store.
type Refresher struct {
	store  *state.Store
	loader reportLoader
	logger *zap.Logger
	flight *state.Flight

	// commitMu makes Commit and the store write one step.
	commitMu sync.Mutex
}

// NewRefresher returns a Refresher whose loads stop when ctx is done.
func NewRefresher(ctx context.Context, store *state.Store, loader reportLoader, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		store:  store,
		loader: loader,
		logger: logger,
		flight: state.NewFlight(ctx),
	}
}

// Refresh loads one report into the store, superseding any load already
// running. A load that is superseded or cancelled returns context.Canceled
// and leaves the store untouched; it is not recorded as a failure.
func (r *Refresher) Refresh(ctx context.Context) error {
	flightCtx, ticket := r.flight.Begin(flightRefresh)
	loadCtx, cancel := context.WithCancel(flightCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	books, report, err := r.loader.LoadReport(loadCtx)

	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	// Aggregation degrades to empty inputs on cancellation, so a nil error
	// does not mean the report is usable.
	if loadCtx.Err() != nil || !r.flight.Commit(ticket) {
		r.logger.Debug("refresh discarded", zap.Error(err))
		return context.Canceled
	}
	if err != nil {
		r.store.Fail(err)
		r.logger.Warn("refresh failed", zap.Error(err))
		return err
	}
	r.store.Update(books, report)
	r.logger.Debug("refresh complete",
		zap.Int("books", len(books)),
		zap.String("source", string(report.Source)),
	)
	return nil
}

// Close cancels any load in flight. Later refreshes are discarded.
func (r *Refresher) Close() {
	r.flight.Close()
}

// StartPoller launches a background goroutine that refreshes the store. After
// a failure the wait doubles per consecutive failure, up to maxBackoff. It
// returns immediately.
func StartPoller(ctx context.Context, r *Refresher, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			_ = r.Refresh(ctx)
			wait := calculateBackoff(r.store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff returns base * 2^failures, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
