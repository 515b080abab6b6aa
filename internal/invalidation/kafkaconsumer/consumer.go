// Package kafkaconsumer purges cached tile bytes when the tile pipeline
// announces a re-generated identifier.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/openglam/tilegate/internal/core/observability"
	"github.com/openglam/tilegate/internal/invalidation"
)

// Purger drops cached artifacts for one identifier.
type Purger interface {
	Purge(ctx context.Context, identifier string) (int, error)
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	purger Purger
	dedupe *seqDedupe
}

func New(cfg Config, logger *slog.Logger, purger Purger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		purger: purger,
		dedupe: newSeqDedupe(cfg.DedupeWindow),
	}
}

// Start joins the consumer group and processes events until ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.purger == nil {
		return errors.New("kafkaconsumer: purger is required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
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

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("tile invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.logger.Error("consume loop error, rejoining", "err", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// ProcessOne handles a single event. Malformed events are logged and
// skipped, not retried; a purge failure is returned so the offset is
// not committed.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		observability.IncInvalidation("error")
		c.logger.Warn("dropping undecodable invalidation event",
			"offset", msg.Offset, "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		observability.IncInvalidation("error")
		c.logger.Warn("dropping invalid invalidation event",
			"offset", msg.Offset, "err", err)
		return nil
	}

	if !c.dedupe.shouldApply(ev.Identifier, ev.Seq) {
		observability.IncInvalidation("skipped")
		return nil
	}

	n, err := c.purger.Purge(ctx, ev.Identifier)
	if err != nil {
		observability.IncInvalidation("error")
		return fmt.Errorf("purge %q: %w", ev.Identifier, err)
	}
	c.dedupe.record(ev.Identifier, ev.Seq)
	observability.IncInvalidation("applied")
	c.logger.Info("purged cached tiles", "identifier", ev.Identifier, "keys", n)
	return nil
}
