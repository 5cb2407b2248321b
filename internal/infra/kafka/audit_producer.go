package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/domain"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/config"
)

// AuditProducer publishes security audit events through a Sarama async
// producer. Publishing never blocks the request path; delivery errors are
// logged and dropped.
type AuditProducer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	topic    string
	done     chan struct{}
}

// NewAuditProducer initializes the Kafka async producer and starts its error
// handler goroutine.
func NewAuditProducer(cfg config.KafkaSettings, logger *zap.Logger) (*AuditProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0

	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Flush.Messages = 100
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &AuditProducer{
		producer: producer,
		logger:   logger,
		topic:    cfg.AuditTopic,
		done:     make(chan struct{}),
	}

	go p.handleErrors()

	logger.Info("Kafka audit producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.AuditTopic),
	)

	return p, nil
}

// Publish serializes the event and enqueues it for async delivery.
func (p *AuditProducer) Publish(_ context.Context, event domain.AuditEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Type),
		Value: sarama.ByteEncoder(payload),
	}

	select {
	case p.producer.Input() <- msg:
		return nil
	default:
		p.logger.Warn("Kafka input channel full, dropping audit event",
			zap.String("type", string(event.Type)))
		return nil
	}
}

func (p *AuditProducer) handleErrors() {
	for {
		select {
		case err := <-p.producer.Errors():
			if err != nil {
				p.logger.Error("Kafka producer error",
					zap.Error(err.Err),
					zap.String("topic", err.Msg.Topic),
				)
			}
		case <-p.done:
			return
		}
	}
}

// Close drains the producer and stops the error handler.
func (p *AuditProducer) Close() error {
	close(p.done)
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var _ port.AuditPublisher = (*AuditProducer)(nil)
