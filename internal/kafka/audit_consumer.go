package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
)

// AuditConsumer reads query audit events back off the topic for indexing.
type AuditConsumer interface {
	FetchMessage(ctx context.Context) (*model.QueryAuditEvent, kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaAuditConsumer struct {
	reader *kafka.Reader
}

func NewKafkaAuditConsumer(lc fx.Lifecycle, cfg *config.Config) (AuditConsumer, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topic:          cfg.Kafka.AuditTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        10 * time.Second,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	c := &kafkaAuditConsumer{
		reader: reader,
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Str("group", cfg.Kafka.ConsumerGroup).Msg("Closing Kafka audit consumer")
			return c.Close()
		},
	})
	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.AuditTopic).
		Str("group", cfg.Kafka.ConsumerGroup).
		Msg("Kafka audit consumer initialized")
	return c, nil
}

func (c *kafkaAuditConsumer) FetchMessage(ctx context.Context) (*model.QueryAuditEvent, kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		log.Debug().Msg("Fail when fetching Kafka audit message.")
		return nil, kafka.Message{}, err
	}
	log.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Fetched audit message from Kafka")
	var event model.QueryAuditEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal Kafka audit message value")
		return nil, msg, err
	}
	return &event, msg, nil
}

func (c *kafkaAuditConsumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Int("count", len(msgs)).Msg("Failed to commit Kafka audit messages")
		return err
	}
	log.Debug().Int("count", len(msgs)).Int64("last_offset", msgs[len(msgs)-1].Offset).Msg("Committed Kafka audit messages")
	return nil
}

func (c *kafkaAuditConsumer) Close() error {
	return c.reader.Close()
}
