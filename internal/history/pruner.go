package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const pruneTimeout = time.Minute

// Pruner periodically deletes records older than the retention window.
type Pruner struct {
	store     *Store
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewPruner schedules pruning on a standard cron spec (descriptors such as @hourly allowed).
func NewPruner(store *Store, schedule string, retention time.Duration) (*Pruner, error) {
	if store == nil {
		return nil, errors.New("store must not be nil")
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}

	p := &Pruner{
		store:     store,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
	}
	if _, err := p.cron.AddFunc(schedule, p.runOnce); err != nil {
		return nil, fmt.Errorf("schedule history pruning %q: %w", schedule, err)
	}
	return p, nil
}

// Start runs the schedule in the background.
func (p *Pruner) Start() {
	p.cron.Start()
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Pruner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	if _, err := p.Prune(ctx); err != nil {
		slog.Error("history pruning failed", "err", err)
	}
}

// Prune deletes records older than the retention window now.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	removed, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		slog.Info("pruned history records", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
