// Package sweeper runs the periodic job that expires due appointments.
package sweeper

import (
	"context"
	"log"
	"time"

	"apptbook/internal/cache"
	"apptbook/internal/repository"
	"apptbook/internal/service"
)

// Sweeper periodically flips ACTIVE appointments whose scheduled time has
// passed to EXPIRED. It runs independently of request handling; a failed sweep
// is only logged, since the next tick covers the same rows again.
type Sweeper struct {
	repo     repository.AppointmentRepository
	cache    *cache.Client
	interval time.Duration
	done     chan struct{}
}

// New creates a sweeper running at the given interval.
func New(repo repository.AppointmentRepository, cache *cache.Client, interval time.Duration) *Sweeper {
	return &Sweeper{
		repo:     repo,
		cache:    cache,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine. The loop stops when ctx
// is canceled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				if n, err := s.Sweep(ctx); err != nil {
					log.Printf("sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("expired %d appointment(s)", n)
				}
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (s *Sweeper) Stop() {
	close(s.done)
}

// Sweep performs one bulk expiration pass and returns how many appointments
// were flipped. Cached lists of the affected owners are invalidated so reads
// observe the new status immediately.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := time.Now()

	owners, err := s.repo.DueOwners(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(owners) == 0 {
		return 0, nil
	}

	n, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, ownerID := range owners {
		_ = s.cache.Delete(ctx, service.ListCacheKey(ownerID))
	}

	return n, nil
}
