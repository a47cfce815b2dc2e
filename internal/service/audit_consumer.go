package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/elasticsearch"
	"kpi-dashboard-backend/internal/kafka"
	"kpi-dashboard-backend/internal/model"
)

// AuditConsumerService drains audit events from Kafka into Elasticsearch.
type AuditConsumerService interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

type auditConsumerService struct {
	consumer    kafka.AuditConsumer
	auditStore  elasticsearch.AuditStore
	batchSize   int
	maxWaitTime time.Duration
}

func NewAuditConsumerService(
	consumer kafka.AuditConsumer,
	auditStore elasticsearch.AuditStore,
	cfg *config.Config,
) AuditConsumerService {
	if consumer == nil || auditStore == nil {
		return nil
	}
	return &auditConsumerService{
		consumer:    consumer,
		auditStore:  auditStore,
		batchSize:   cfg.Audit.BatchSize,
		maxWaitTime: cfg.Audit.MaxWait,
	}
}

func (s *auditConsumerService) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Msg("Starting audit consumer loop...")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Audit consumer loop stopping due to context cancellation.")
			return
		default:
		}

		err := s.processBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info().Msg("Context cancelled during audit batch processing.")
				return
			}
			log.Error().Err(err).Msg("Error processing audit consumer batch")
			time.Sleep(1 * time.Second)
		}
	}
}

func (s *auditConsumerService) processBatch(ctx context.Context) error {
	events := make([]*model.QueryAuditEvent, 0, s.batchSize)
	originalMessages := make([]kafkaGo.Message, 0, s.batchSize)
	batchStartTime := time.Now()
	commitNeeded := false

	for len(events) < s.batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.maxWaitTime-time.Since(batchStartTime))
		event, originalMsg, err := s.consumer.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				// Waited long enough, process whatever we have collected
				log.Debug().Int("batch_size", len(events)).Msg("Max wait time reached for batch, processing partial batch.")
				break
			}
			// A non-nil message with an error means the payload failed to
			// unmarshal; track it so its offset still gets committed.
			if originalMsg.Topic != "" {
				originalMessages = append(originalMessages, originalMsg)
				events = append(events, event)
				log.Warn().Int64("offset", originalMsg.Offset).Msg("Adding message with unmarshal error to batch for commit tracking.")
				continue
			}

			log.Error().Err(err).Msg("Failed to fetch message, stopping batch accumulation for now.")
			return fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		events = append(events, event)
		originalMessages = append(originalMessages, originalMsg)
		commitNeeded = true

		if len(events) >= s.batchSize {
			break
		}
	}

	if len(events) == 0 {
		return nil
	}

	log.Debug().Int("batch_size", len(events)).Msg("Processing collected audit batch...")

	validEvents := make([]model.QueryAuditEvent, 0, len(events))
	for _, event := range events {
		if event != nil {
			validEvents = append(validEvents, *event)
		}
	}
	errStore := s.auditStore.StoreEvents(ctx, validEvents)
	if errStore != nil {
		// Do not commit; the batch will be reprocessed.
		log.Error().Err(errStore).Msg("Failed to store audit events to Elasticsearch")
		return fmt.Errorf("failed storing audit events: %w", errStore)
	}

	if commitNeeded {
		errCommit := s.consumer.CommitMessages(ctx, originalMessages...)
		if errCommit != nil {
			log.Error().Err(errCommit).Msg("Failed to commit Kafka messages after successful storage")
			return fmt.Errorf("failed committing kafka messages: %w", errCommit)
		}
		log.Info().Int("batch_size", len(events)).Msg("Successfully processed and committed audit batch.")
	} else {
		log.Debug().Msg("No valid messages processed, skipping commit.")
	}

	return nil
}
