package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/connstore"
	"kpi-dashboard-backend/internal/postgres"
)

// SchemaRefreshService re-introspects every active registered connection so
// cached schemas track DDL changes in the underlying databases.
type SchemaRefreshService interface {
	RefreshSchemas(ctx context.Context) error
}

type schemaRefreshService struct {
	connections  connstore.Manager
	introspector postgres.Introspector
}

func NewSchemaRefreshService(connections connstore.Manager, introspector postgres.Introspector) SchemaRefreshService {
	return &schemaRefreshService{
		connections:  connections,
		introspector: introspector,
	}
}

func (s *schemaRefreshService) RefreshSchemas(ctx context.Context) error {
	active := s.connections.ActiveConnections()
	if len(active) == 0 {
		log.Debug().Msg("No active connections, skipping schema refresh")
		return nil
	}

	refreshed := 0
	var lastErr error
	for _, conn := range active {
		schema, err := s.introspector.ExtractSchema(ctx, conn.Record.ConnectionParams)
		if err != nil {
			log.Warn().Err(err).
				Str("user", conn.UserID).
				Str("connection_id", conn.ConnectionID).
				Msg("Schema refresh failed for connection")
			lastErr = err
			continue
		}
		if err := s.connections.UpdateSchema(conn.UserID, conn.ConnectionID, schema); err != nil {
			log.Warn().Err(err).
				Str("user", conn.UserID).
				Str("connection_id", conn.ConnectionID).
				Msg("Failed to persist refreshed schema")
			lastErr = err
			continue
		}
		refreshed++
	}

	log.Info().
		Int("total", len(active)).
		Int("refreshed", refreshed).
		Msg("Schema refresh cycle finished")
	return lastErr
}
