// Package worker runs the background maintenance jobs.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// AuditStore is the part of the store the pruner needs.
type AuditStore interface {
	PruneAudit(ctx context.Context, keep int) (int64, error)
}

// DefaultInterval is used when AuditPruner.Interval is not positive.
const DefaultInterval = time.Hour

// AuditPruner keeps the audit log at its newest Keep entries.
type AuditPruner struct {
	Store    AuditStore
	Keep     int
	Interval time.Duration
	Logger   *slog.Logger
}

// Run prunes once immediately and then on every tick until ctx is done.
// Failures are logged and retried on the next tick.
func (p *AuditPruner) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Logger.Info("audit pruner started", "keep", p.Keep, "interval", interval.String())
	for {
		p.RunOnce(ctx)
		select {
		case <-ctx.Done():
			p.Logger.Info("audit pruner stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single prune pass.
func (p *AuditPruner) RunOnce(ctx context.Context) {
	removed, err := p.Store.PruneAudit(ctx, p.Keep)
	if err != nil {
		if ctx.Err() == nil {
			p.Logger.Error("pruning audit log", "error", err)
		}
		return
	}
	if removed > 0 {
		p.Logger.Info("pruned audit log", "removed", removed, "keep", p.Keep)
	}
}
