package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/connstore"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/postgres"
	"kpi-dashboard-backend/internal/session"
)

var ErrInvalidConnectionID = errors.New("invalid connection ID")

const maskedPassword = "***"

// ConnectionService owns the connect / switch / remove lifecycle and the
// schema served to the dashboard.
type ConnectionService interface {
	Connect(ctx context.Context, username, sector string, req dto.ConnectDBRequest) (*dto.ConnectDBResponse, error)
	Schema(username string) (*dto.SchemaResponse, error)
	Config(username string) (*dto.DatabaseConfigResponse, error)
	Switch(username string, connectionID string) (*dto.SwitchDatabaseResponse, error)
	Remove(username string, connectionID string) error
	Logout(username string)
}

type connectionService struct {
	store        connstore.Manager
	pools        postgres.PoolManager
	introspector postgres.Introspector
	sessions     session.Store
	llm          LLMService
}

func NewConnectionService(
	store connstore.Manager,
	pools postgres.PoolManager,
	introspector postgres.Introspector,
	sessions session.Store,
	llm LLMService,
) ConnectionService {
	return &connectionService{
		store:        store,
		pools:        pools,
		introspector: introspector,
		sessions:     sessions,
		llm:          llm,
	}
}

func (s *connectionService) Connect(ctx context.Context, username, sector string, req dto.ConnectDBRequest) (*dto.ConnectDBResponse, error) {
	params := model.ConnectionParams{
		Host:     req.Host,
		Port:     req.Port,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
	}

	if err := s.pools.Test(ctx, params); err != nil {
		log.Warn().Err(err).Str("host", params.Host).Str("database", params.Database).Msg("Database connection test failed")
		return nil, fmt.Errorf("failed to connect to database with provided credentials: %w", err)
	}

	schema, err := s.introspector.ExtractSchema(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to extract database schema: %w", err)
	}

	connectionID := fmt.Sprintf("%s_%d", username, time.Now().UnixMilli())
	record := model.ConnectionRecord{
		ConnectionParams: params,
		Type:             "postgresql",
		Schema:           schema,
		LastConnected:    time.Now().UTC().Format(time.RFC3339),
	}
	actualID, existed, err := s.store.Upsert(username, connectionID, record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist connection: %w", err)
	}

	if _, err := s.sessions.Get(username); err == nil {
		log.Info().Str("username", username).Msg("Clearing previous session data")
	}
	s.sessions.Put(username, session.Session{
		Connection:     params,
		Schema:         schema,
		ConnectionName: actualID,
		LastUpdated:    time.Now().UTC(),
	})

	suggestions := s.suggestKPIs(ctx, schema, sector)

	message := "Database connected and schema extracted successfully"
	if existed {
		message = "Database connection updated (existing connection reused to avoid duplicates)"
	}
	return &dto.ConnectDBResponse{
		Status:         "connected",
		Schema:         schema,
		SuggestedKPIs:  suggestions,
		ConnectionName: actualID,
		Message:        message,
	}, nil
}

// suggestKPIs asks the LLM for suggestions and tops the list up from the
// per-sector fallback so the dashboard always shows five.
func (s *connectionService) suggestKPIs(ctx context.Context, schema *model.Schema, sector string) []dto.KPISuggestion {
	var suggestions []dto.KPISuggestion
	if s.llm.Enabled() {
		generated, err := s.llm.SuggestKPIs(ctx, FormatSchemaContext(schema), sector)
		if err != nil {
			log.Error().Err(err).Str("sector", sector).Msg("LLM KPI suggestion generation failed, using fallback")
		} else {
			suggestions = generated
		}
	}
	if len(suggestions) < kpiSuggestionCount {
		fallback := FallbackKPISuggestions(sector)
		for _, item := range fallback {
			if len(suggestions) >= kpiSuggestionCount {
				break
			}
			if !containsSuggestion(suggestions, item.ID) {
				suggestions = append(suggestions, item)
			}
		}
	}
	return suggestions[:min(len(suggestions), kpiSuggestionCount)]
}

func (s *connectionService) Schema(username string) (*dto.SchemaResponse, error) {
	sess, err := s.sessions.Get(username)
	if err != nil {
		return nil, err
	}
	tableCount := 0
	if sess.Schema != nil {
		tableCount = len(sess.Schema.Tables)
	}
	log.Info().Str("username", username).Int("tables", tableCount).Msg("Serving schema")
	return &dto.SchemaResponse{
		Schema:         sess.Schema,
		LastUpdated:    sess.LastUpdated.Format(time.RFC3339),
		ConnectionName: sess.ConnectionName,
	}, nil
}

func (s *connectionService) Config(username string) (*dto.DatabaseConfigResponse, error) {
	currentID, current := s.store.Current(username)
	all := s.store.All(username)

	connections := make([]dto.ConnectionSummary, 0, len(all))
	for id, record := range all {
		connections = append(connections, summarize(id, record))
	}

	var currentSummary *dto.ConnectionSummary
	if current != nil {
		summary := summarize(currentID, *current)
		currentSummary = &summary
	}

	return &dto.DatabaseConfigResponse{
		Success:           true,
		CurrentConnection: currentSummary,
		Connections:       connections,
	}, nil
}

func (s *connectionService) Switch(username string, connectionID string) (*dto.SwitchDatabaseResponse, error) {
	prevID, prev := s.store.Current(username)
	if !s.store.SetActive(username, connectionID) {
		return nil, ErrInvalidConnectionID
	}
	if prev != nil && prevID != connectionID {
		s.pools.Release(prev.ConnectionParams)
	}

	_, current := s.store.Current(username)
	if current != nil && current.Schema != nil {
		s.sessions.Put(username, session.Session{
			Connection:     current.ConnectionParams,
			Schema:         current.Schema,
			ConnectionName: connectionID,
			LastUpdated:    time.Now().UTC(),
		})
		log.Info().Str("username", username).Str("database", current.Database).Msg("Session updated with schema from switched connection")
	}

	var currentSummary *dto.ConnectionSummary
	if current != nil {
		summary := summarize(connectionID, *current)
		currentSummary = &summary
	}
	return &dto.SwitchDatabaseResponse{
		Success:           true,
		Message:           "Database connection switched successfully",
		CurrentConnection: currentSummary,
	}, nil
}

func (s *connectionService) Remove(username string, connectionID string) error {
	all := s.store.All(username)
	record, ok := all[connectionID]
	if !ok {
		return ErrInvalidConnectionID
	}
	if !s.store.Remove(username, connectionID) {
		return ErrInvalidConnectionID
	}
	s.pools.Release(record.ConnectionParams)
	return nil
}

func (s *connectionService) Logout(username string) {
	s.sessions.Delete(username)
}

func summarize(id string, record model.ConnectionRecord) dto.ConnectionSummary {
	return dto.ConnectionSummary{
		ID:            id,
		Host:          record.Host,
		Port:          record.Port,
		Database:      record.Database,
		Username:      record.Username,
		Password:      maskedPassword,
		Type:          record.Type,
		IsActive:      record.IsActive,
		LastConnected: record.LastConnected,
	}
}

func containsSuggestion(suggestions []dto.KPISuggestion, id string) bool {
	for _, s := range suggestions {
		if s.ID == id {
			return true
		}
	}
	return false
}
