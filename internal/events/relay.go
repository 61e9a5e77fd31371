package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	"github.com/yungbote/marketplace-backend/internal/events/bus"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

// RelayMetrics is satisfied by *observability.Metrics.
type RelayMetrics interface {
	ObserveOutboxPublished(topic string, n int)
	IncOutboxFailure(stage string)
	SetOutboxBacklog(n int)
}

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// Retention is how long delivered events are kept. Zero disables pruning.
	Retention time.Duration
}

// Relay moves committed outbox rows onto the bus in creation order and marks them
// published. Delivery is at-least-once: a crash between Publish and MarkPublished
// republishes the batch on the next poll.
type Relay struct {
	log     *logger.Logger
	repo    repos.OutboxEventRepo
	bus     bus.Bus
	metrics RelayMetrics
	cfg     RelayConfig
	now     func() time.Time
}

func NewRelay(log *logger.Logger, repo repos.OutboxEventRepo, b bus.Bus, metrics RelayMetrics, cfg RelayConfig) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{
		log:     log.With("service", "OutboxRelay"),
		repo:    repo,
		bus:     b,
		metrics: metrics,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is done. It returns nil on cancellation.
func (r *Relay) Run(ctx context.Context) error {
	if r == nil || r.repo == nil || r.bus == nil {
		return fmt.Errorf("outbox relay not configured")
	}
	r.log.Info("outbox relay started", "interval", r.cfg.PollInterval.String(), "batch", r.cfg.BatchSize)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			for {
				n, err := r.RunOnce(ctx)
				if err != nil {
					if ctx.Err() == nil {
						r.log.Warn("outbox relay pass failed", "error", err)
					}
					break
				}
				// Drain a backlog without waiting for the next tick.
				if n < r.cfg.BatchSize {
					break
				}
			}
		}
	}
}

// RunOnce publishes up to one batch and returns how many events were delivered.
// A publish failure stops the batch; events before it are still marked.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	dbc := dbctx.Background(ctx)
	rows, err := r.repo.ListUnpublished(dbc, r.cfg.BatchSize)
	if err != nil {
		r.fail("list")
		return 0, err
	}
	r.backlog(len(rows))

	delivered := make([]uuid.UUID, 0, len(rows))
	perTopic := map[string]int{}
	var pubErr error
	for _, row := range rows {
		msg := bus.Message{
			ID:        row.ID.String(),
			Topic:     row.Topic,
			Key:       row.Key,
			Payload:   json.RawMessage(row.Payload),
			CreatedAt: row.CreatedAt,
		}
		if err := r.bus.Publish(ctx, msg); err != nil {
			r.fail("publish")
			pubErr = fmt.Errorf("publish %s (%s): %w", row.ID, row.Topic, err)
			break
		}
		delivered = append(delivered, row.ID)
		perTopic[row.Topic]++
	}

	if len(delivered) > 0 {
		if err := r.repo.MarkPublished(dbc, delivered, r.now()); err != nil {
			r.fail("mark")
			return 0, err
		}
		for topic, n := range perTopic {
			if r.metrics != nil {
				r.metrics.ObserveOutboxPublished(topic, n)
			}
		}
	}
	if pubErr != nil {
		return len(delivered), pubErr
	}

	if r.cfg.Retention > 0 {
		if pruned, err := r.repo.DeletePublishedBefore(dbc, r.now().Add(-r.cfg.Retention)); err != nil {
			r.fail("prune")
			r.log.Warn("outbox prune failed", "error", err)
		} else if pruned > 0 {
			r.log.Debug("outbox pruned", "rows", pruned)
		}
	}
	return len(delivered), nil
}

func (r *Relay) fail(stage string) {
	if r.metrics != nil {
		r.metrics.IncOutboxFailure(stage)
	}
}

func (r *Relay) backlog(n int) {
	if r.metrics != nil {
		r.metrics.SetOutboxBacklog(n)
	}
}
