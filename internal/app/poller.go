package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/ferry/internal/api"
	"github.com/five82/ferry/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// fetcher is the subset of api.Service the poller needs.
type fetcher interface {
	CheckHealth(ctx context.Context) api.Result[api.Health]
	ListItems(ctx context.Context) api.Result[api.ItemList]
	ListFiles(ctx context.Context) api.Result[api.FileList]
}

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while the backend keeps failing. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, client fetcher, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		for {
			if err := refresh(ctx, store, client); err != nil {
				failures++
			} else {
				failures = 0
			}
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// refresh fetches health, items and files concurrently. Any failed call fails
// the whole refresh so the store never mixes fresh and stale data.
func refresh(ctx context.Context, store *state.Store, client fetcher) error {
	var (
		health api.Result[api.Health]
		items  api.Result[api.ItemList]
		files  api.Result[api.FileList]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health = client.CheckHealth(gctx)
		if err := health.Err(); err != nil {
			return fmt.Errorf("health: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		items = client.ListItems(gctx)
		if err := items.Err(); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		files = client.ListFiles(gctx)
		if err := files.Err(); err != nil {
			return fmt.Errorf("files: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		store.Update(state.Refresh{}, err)
		if ctx.Err() == nil {
			log.Printf("poll failed: %v", err)
		}
		return err
	}

	store.Update(state.Refresh{
		Health: health.Data,
		Items:  items.Data.Items,
		Files:  files.Data,
	}, nil)
	return nil
}
