// Package kafkaconsumer applies image invalidation events from Kafka to the
// image URL caches.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	obs "github.com/rescuedogs/rescue-edge/internal/core/observability"
	"github.com/rescuedogs/rescue-edge/internal/invalidation"
	mylog "github.com/rescuedogs/rescue-edge/internal/logger"
)

// Invalidator is implemented by resolver.Resolver.
type Invalidator interface {
	Invalidate(ctx context.Context, src string) (int, error)
	InvalidateAll(ctx context.Context) error
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	inv    Invalidator
	ver    *versionDedupe
}

func New(cfg Config, logger *slog.Logger, inv Invalidator) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		inv:    inv,
		ver:    newVersionDedupe(cfg.DedupeSize),
	}
}

// Start blocks consuming until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.inv == nil {
		return errors.New("kafkaconsumer: missing invalidator")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne, logger: c.logger}

	c.logger.Info("image invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("image invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("consumer error", "err", err, "topic", c.cfg.Topic)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(2 * time.Second):
				}
			}
		}
	}
}

// ProcessOne applies a single message. Undecodable, invalid and stale events
// are skipped (nil) so they do not block the partition; cache failures are
// returned so the message is redelivered.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()
	ctx = mylog.WithComponent(ctx, "invalidation")

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncInvalidationSkipped("decode")
		c.logger.WarnContext(ctx, "skipping undecodable invalidation event",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncInvalidationSkipped("invalid")
		c.logger.WarnContext(ctx, "skipping invalid invalidation event",
			"offset", msg.Offset, "op", ev.Op, "err", err)
		return nil
	}
	undo, ok := c.ver.claim(ev.DedupeKey(), ev.TS.UnixNano())
	if !ok {
		obs.IncInvalidationSkipped("stale")
		c.logger.DebugContext(ctx, "skipping stale invalidation event", "url", ev.ImageURL, "ts", ev.TS)
		return nil
	}

	if ev.Op == invalidation.OpPurgeAll {
		err := c.inv.InvalidateAll(ctx)
		obs.ObserveInvalidation(ev.Op, err, time.Since(start).Seconds())
		if err != nil {
			undo()
			return fmt.Errorf("purge all: %w", err)
		}
		c.logger.InfoContext(ctx, "purged image url caches", "source", ev.Source)
		return nil
	}

	n, err := c.inv.Invalidate(ctx, ev.ImageURL)
	obs.ObserveInvalidation(ev.Op, err, time.Since(start).Seconds())
	if err != nil {
		undo()
		return fmt.Errorf("invalidate %q: %w", ev.ImageURL, err)
	}
	c.logger.DebugContext(ctx, "invalidated image url", "url", ev.ImageURL, "op", ev.Op, "entries", n)
	return nil
}
