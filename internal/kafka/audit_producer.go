package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
)

// AuditProducer publishes query audit events. A nil producer means the audit
// pipeline is disabled.
type AuditProducer interface {
	Produce(ctx context.Context, events []model.QueryAuditEvent) error
	Close() error
}

type kafkaAuditProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaAuditProducer(lc fx.Lifecycle, cfg *config.Config) (AuditProducer, error) {
	if !cfg.Audit.Enabled {
		log.Info().Msg("Audit pipeline disabled, query audit events will not be produced")
		return nil, nil
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    cfg.Audit.BatchSize,
		BatchTimeout: cfg.Audit.MaxWait,
		Async:        true,
	})
	p := &kafkaAuditProducer{
		writer: writer,
		topic:  cfg.Kafka.AuditTopic,
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka audit producer")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.AuditTopic).Msg("Kafka audit producer initialized")
	return p, nil
}

func (p *kafkaAuditProducer) Produce(ctx context.Context, events []model.QueryAuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to marshal audit event for Kafka")
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.Username),
			Value: value,
		})
	}
	if len(messages) == 0 {
		log.Warn().Msg("No valid audit messages to produce.")
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write audit messages to Kafka")
		return err
	}
	log.Debug().Int("message_count", len(messages)).Str("topic", p.topic).Msg("Produced audit messages to Kafka")
	return nil
}

func (p *kafkaAuditProducer) Close() error {
	return p.writer.Close()
}
