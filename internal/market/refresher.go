package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher periodically pulls quotes for every symbol in a Book.
type Refresher struct {
	Book    *Book
	Fetcher Fetcher
	Timeout time.Duration

	cron *cron.Cron
}

// NewRefresher creates a Refresher with a per-run timeout of 30 seconds.
func NewRefresher(book *Book, fetcher Fetcher) *Refresher {
	return &Refresher{
		Book:    book,
		Fetcher: fetcher,
		Timeout: 30 * time.Second,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start schedules RefreshOnce on the given six-field cron spec.
func (r *Refresher) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return fmt.Errorf("register quote refresh: %w", err)
	}
	r.cron.Start()
	slog.Info("quote refresher started", "source", r.Fetcher.Name(), "cron", spec)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	slog.Info("quote refresher stopped")
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	if _, err := r.RefreshOnce(ctx); err != nil {
		slog.Warn("quote refresh incomplete", "error", err)
	}
}

// RefreshOnce fetches every known symbol and applies the results. Symbols that
// fail keep their previous quote; the returned error summarises the failures.
func (r *Refresher) RefreshOnce(ctx context.Context) (int, error) {
	symbols := r.Book.Symbols()
	updated, failed := 0, 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		q, err := r.Fetcher.FetchQuote(ctx, symbol)
		if err != nil {
			failed++
			slog.Warn("quote fetch failed", "symbol", symbol, "source", r.Fetcher.Name(), "error", err)
			continue
		}
		q.Symbol = symbol
		r.Book.Apply(q)
		updated++
	}
	slog.Debug("quote refresh done", "updated", updated, "failed", failed)
	if failed > 0 {
		return updated, fmt.Errorf("%d of %d quotes failed to refresh", failed, len(symbols))
	}
	return updated, nil
}
