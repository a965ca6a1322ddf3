package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/config"
	kafkax "github.com/ariefcatur/go-commerce-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/redisx"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/statuscache"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", cfg.ServiceName+"-statuscache"))

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &statuscache.Service{
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName + "-statuscache",
	}

	group := getenv("STATUSCACHE_GROUP", "statuscache-svc")
	workers := mustAtoi(os.Getenv("STATUSCACHE_WORKERS"), "4")

	// one consumer per order topic, all feeding the same handler
	topics := []string{orders.TopicOrderCreated, orders.TopicOrderStatus, orders.TopicOrderConfirmed}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, logger)
		go func(topic string) {
			logger.Info("consumer started",
				zap.String("group", group),
				zap.String("topic", topic),
				zap.Int("workers", workers))
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				logger.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumers")
	cancel()
}
