package kafka

import (
	"encoding/json"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/reports"
)

type producerConfig interface {
	Brokers() []string
	ReportsTopic() string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	return &Producer{
		producer: producer,
		topic:    cfg.ReportsTopic(),
	}, err
}

// RequestReport enqueues a report request for the reporter to pick up.
func (p *Producer) RequestReport(req reports.Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal report request")
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	})
	return errors.Wrap(err, "produce report request")
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
