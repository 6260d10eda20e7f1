package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"expense-tracker/internal/clients/cache"
	"expense-tracker/internal/clients/kafka"
	"expense-tracker/internal/config"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/reports"
	"expense-tracker/internal/model/storage"
)

func main() {
	logger.Info("Reporter init - start")

	conf, err := config.New()
	if err != nil {
		log.Fatal("failed to init config:", err)
	}

	closer, err := initTracing("expense-tracker-reporter")
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer closeQuietly(closer)

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}
	defer db.Close()

	memcached, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached", zap.Error(err))
	}

	generator := reports.NewGenerator(db)

	consumer, err := kafka.NewConsumer(conf.Kafka(), generator, memcached)
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}

	logger.Info("Reporter init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}
}

func initTracing(serviceName string) (io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close tracer", zap.Error(err))
	}
}
