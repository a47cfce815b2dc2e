package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/chart"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/kafka"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/postgres"
	"kpi-dashboard-backend/internal/session"
	"kpi-dashboard-backend/internal/sqlcheck"
)

// QueryService turns a natural-language KPI question into an executed,
// chart-ready result.
type QueryService interface {
	Query(ctx context.Context, username, sector string, req dto.KPIQueryRequest) (*dto.KPIQueryResponse, error)
}

type queryService struct {
	sessions session.Store
	llm      LLMService
	executor postgres.Executor
	audit    kafka.AuditProducer // nil when the audit pipeline is disabled
}

func NewQueryService(sessions session.Store, llm LLMService, executor postgres.Executor, audit kafka.AuditProducer) QueryService {
	return &queryService{
		sessions: sessions,
		llm:      llm,
		executor: executor,
		audit:    audit,
	}
}

func (s *queryService) Query(ctx context.Context, username, sector string, req dto.KPIQueryRequest) (*dto.KPIQueryResponse, error) {
	sess, err := s.sessions.Get(username)
	if err != nil {
		return nil, err
	}

	sqlQuery := s.generateSQL(ctx, req.Query, sess.Schema, sector)

	start := time.Now()
	result, execErr := s.executor.Execute(ctx, sess.Connection, sqlQuery)
	duration := time.Since(start)

	s.publishAudit(username, sector, sess.ConnectionName, req.Query, sqlQuery, result, duration, execErr)

	if execErr != nil {
		// Structured error result, matching what the frontend renders inline.
		return &dto.KPIQueryResponse{
			Query:    req.Query,
			SQLQuery: sqlQuery,
			Results: dto.QueryResults{
				TableData: []map[string]interface{}{},
				ChartData: dto.ChartData{Type: "bar", Data: []map[string]interface{}{}},
				Columns:   []string{},
				Error:     execErr.Error(),
			},
		}, nil
	}

	executionTime := round3(duration.Seconds())
	results := dto.QueryResults{
		TableData:     result.Rows,
		ChartData:     chart.Build(result.Rows, result.Columns),
		Columns:       result.Columns,
		RowCount:      len(result.Rows),
		ExecutionTime: executionTime,
	}
	return &dto.KPIQueryResponse{
		Query:         req.Query,
		SQLQuery:      sqlQuery,
		Results:       results,
		ExecutionTime: executionTime,
	}, nil
}

// generateSQL runs the LLM path and falls back to keyword heuristics when the
// LLM is unavailable or its output fails the safety check.
func (s *queryService) generateSQL(ctx context.Context, naturalQuery string, schema *model.Schema, sector string) string {
	if s.llm.Enabled() {
		generated, err := s.llm.GenerateSQL(ctx, naturalQuery, FormatSchemaContext(schema), sector)
		if err == nil {
			sanitized, err := sqlcheck.Sanitize(generated)
			if err == nil {
				return sanitized
			}
			log.Warn().Err(err).Str("generated_sql", generated).Msg("Generated SQL failed safety check, using fallback")
		} else {
			log.Error().Err(err).Msg("LLM SQL generation failed, using fallback")
		}
	}

	fallback := FallbackSQL(naturalQuery, sector)
	sanitized, err := sqlcheck.Sanitize(fallback)
	if err != nil {
		// Fallback statements are constants; this only fires on a coding error.
		log.Error().Err(err).Str("fallback_sql", fallback).Msg("Fallback SQL failed safety check")
		return "SELECT 'No data available' AS message, 0 AS count"
	}
	return sanitized
}

func (s *queryService) publishAudit(username, sector, connectionName, naturalQuery, sqlQuery string, result *postgres.ResultSet, duration time.Duration, execErr error) {
	if s.audit == nil {
		return
	}
	event := model.QueryAuditEvent{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Username:     username,
		Sector:       sector,
		Connection:   connectionName,
		NaturalQuery: naturalQuery,
		SQLQuery:     sqlQuery,
		DurationMs:   duration.Milliseconds(),
	}
	if result != nil {
		event.RowCount = len(result.Rows)
	}
	if execErr != nil {
		event.Error = execErr.Error()
	}

	// Audit publishing must never delay or fail the query path.
	publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.audit.Produce(publishCtx, []model.QueryAuditEvent{event}); err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to publish query audit event")
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
