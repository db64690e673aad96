package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nextbet/platform/internal/infra"
)

// Topics drained by the audit consumer. Each carries events published
// by the outbox poller; consumers dedupe on event_id.
var topics = []string{
	"nextbet.profile.created",
	"nextbet.transaction.posted",
	"nextbet.coupon.placed",
	"nextbet.coupon.settled",
	"nextbet.match.settled",
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.KafkaEnabled || cfg.KafkaBrokers == "" {
		return fmt.Errorf("kafka is disabled; set KAFKA_ENABLED=true and KAFKA_BROKERS")
	}

	groupID := os.Getenv("OUTBOX_CONSUMER_GROUP")
	if groupID == "" {
		groupID = "nextbet-audit"
	}

	logger.Info("outbox-consumer starting", "brokers", cfg.KafkaBrokers, "group", groupID, "topics", len(topics))

	var wg sync.WaitGroup
	for _, topic := range topics {
		consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, groupID, cfg.KafkaEnabled, logger)
		defer consumer.Close()

		wg.Add(1)
		go func(topic string, c *infra.KafkaConsumer) {
			defer wg.Done()
			consume(ctx, topic, c, logger)
		}(topic, consumer)
	}

	wg.Wait()
	logger.Info("outbox-consumer stopped")
	return nil
}

func consume(ctx context.Context, topic string, c *infra.KafkaConsumer, logger *slog.Logger) {
	for {
		msg, err := c.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error("read message", "topic", topic, "error", err)
			continue
		}
		logger.Info("event consumed",
			"topic", topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"payload", string(msg.Value),
		)
	}
}
