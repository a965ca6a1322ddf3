package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/catalog"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/config"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/customers"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/httpx"
	kafkax "github.com/ariefcatur/go-commerce-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/payments"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/redisx"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store/postgres"
)

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
	logger = logger.With(zap.String("service", cfg.ServiceName))

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, logger)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024, logger)
	pConfirmed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderConfirmed, 1024, logger)
	pPayment := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentProcessed, 1024, logger)
	pPayStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentStatus, 1024, logger)
	producers := []*kafkax.Producer{pCreated, pStatus, pConfirmed, pPayment, pPayStatus}
	for _, p := range producers {
		p.Start(ctx)
	}

	// Engines, repos, handlers
	gw := postgres.New(db)
	orderEngine := orders.NewEngine(gw, logger)
	paymentEngine := payments.NewEngine(gw, logger)

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Engine:    orderEngine,
		Created:   pCreated,
		Status:    pStatus,
		Confirmed: pConfirmed,
		Redis:     rdb,
		Service:   cfg.ServiceName,
	}
	oh.Register(router)
	ph := &httpx.PaymentsHandler{
		Engine:    paymentEngine,
		Orders:    oh,
		Processed: pPayment,
		Status:    pPayStatus,
	}
	ph.Register(router)
	(&httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}}).Register(router)
	(&httpx.CustomersHandler{Repo: &customers.Repo{DB: db}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // close inbox -> flush & close writer
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}
