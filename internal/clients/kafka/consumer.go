package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/reports"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type reportGenerator interface {
	Generate(ctx context.Context, year, month int) (reports.Monthly, error)
}

type reportSink interface {
	StoreReport(key string, payload []byte) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	generator     reportGenerator
	sink          reportSink
}

func NewConsumer(cfg consumerConfig, generator reportGenerator, sink reportSink) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.ReportsTopic(),
		generator:     generator,
		sink:          sink,
	}, err
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var req reports.Request
		err := json.Unmarshal(message.Value, &req)
		if err != nil {
			logger.Error("cannot unmarshal kafka message", zap.Error(err))
		} else {
			logger.Info(
				"received report request",
				zap.ByteString("key", message.Key),
				zap.Int("year", req.Year),
				zap.Int("month", req.Month),
			)
			c.processRequest(session.Context(), req)
		}
		session.MarkMessage(message, "")
	}

	return nil
}

func (c *Consumer) processRequest(ctx context.Context, req reports.Request) {
	monthly, err := c.generator.Generate(ctx, req.Year, req.Month)
	if err != nil {
		logger.Error("failed to generate report", zap.Error(err))
		return
	}
	payload, err := json.Marshal(monthly)
	if err != nil {
		logger.Error("failed to marshal report", zap.Error(err))
		return
	}
	if err = c.sink.StoreReport(reports.CacheKey(req.Year, req.Month), payload); err != nil {
		logger.Error("failed to store report", zap.Error(err))
	}
}
