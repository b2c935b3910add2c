package statelet

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Refresher periodically re-runs a read pipeline to keep a store's cached
// state in sync with the remote source.
//
// A Refresher knows nothing about stores or producers; it runs any
// refresh function on a fixed interval, starting with an immediate run.
// Failures are logged and do not stop the loop, matching the read
// pipelines' best-effort semantics.
type Refresher struct {
	interval time.Duration
	refresh  func(context.Context) error
	logger   *slog.Logger
}

// NewRefresher creates a [Refresher] running refresh every interval.
//
// If logger is nil, [slog.Default] is used. Returns an error if the
// interval is not positive or refresh is nil.
func NewRefresher(interval time.Duration, refresh func(context.Context) error, logger *slog.Logger) (*Refresher, error) {
	if interval <= 0 {
		return nil, errors.New("refresh interval must be positive")
	}
	if refresh == nil {
		return nil, errors.New("refresh function is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		interval: interval,
		refresh:  refresh,
		logger:   logger,
	}, nil
}

// Run refreshes immediately, then on every interval tick, until ctx is
// cancelled. It always returns nil after cancellation; refresh failures
// are logged, not returned.
func (r *Refresher) Run(ctx context.Context) error {
	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context) {
	if err := r.refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Warn("refresh failed", "error", err)
		return
	}
	r.logger.Debug("refresh completed")
}
