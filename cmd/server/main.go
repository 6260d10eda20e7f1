package main

import (
	"io"
	"log"

	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"expense-tracker/internal/clients/cache"
	"expense-tracker/internal/clients/kafka"
	"expense-tracker/internal/config"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/expenses"
	"expense-tracker/internal/model/storage"
	"expense-tracker/internal/server"
)

func main() {
	conf, err := config.New()
	if err != nil {
		log.Fatal("failed to init config:", err)
	}

	closer, err := initTracing("expense-tracker")
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer closeQuietly(closer)

	var service *expenses.Service
	if conf.Server().InMemory() {
		logger.Info("using in-memory storage")
		service = expenses.NewService(storage.NewInMemStorage())
	} else {
		db, err := storage.NewPostgresStorage(conf.Postgres())
		if err != nil {
			logger.Fatal("failed to init postgres", zap.Error(err))
		}
		defer db.Close()
		service = expenses.NewService(db)
	}

	producer, err := kafka.NewProducer(conf.Kafka())
	if err != nil {
		logger.Warn("kafka unavailable, report generation disabled", zap.Error(err))
		producer = nil
	} else {
		defer producer.Close()
	}

	memcached, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Warn("memcached unavailable, report reads disabled", zap.Error(err))
		memcached = nil
	}

	srv := buildServer(service, producer, memcached)
	if err = srv.Run(conf.Server().ListenAddr()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildServer keeps the nil checks in one place. A typed nil passed
// straight to server.New would not compare equal to nil inside it.
func buildServer(service *expenses.Service, producer *kafka.Producer, memcached *cache.MemcacheClient) *server.Server {
	if producer == nil {
		if memcached == nil {
			return server.New(service, nil, nil)
		}
		return server.New(service, nil, memcached)
	}
	if memcached == nil {
		return server.New(service, producer, nil)
	}
	return server.New(service, producer, memcached)
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
