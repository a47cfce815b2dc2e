package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/postgres"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/session"
)

type stubLLM struct {
	enabled bool
	sql     string
	err     error
}

func (s *stubLLM) Enabled() bool { return s.enabled }

func (s *stubLLM) GenerateSQL(ctx context.Context, naturalQuery, schemaContext, sector string) (string, error) {
	return s.sql, s.err
}

func (s *stubLLM) SuggestKPIs(ctx context.Context, schemaContext, sector string) ([]dto.KPISuggestion, error) {
	return nil, service.ErrLLMUnavailable
}

type stubExecutor struct {
	lastSQL string
	result  *postgres.ResultSet
	err     error
}

func (e *stubExecutor) Execute(ctx context.Context, params model.ConnectionParams, sqlQuery string) (*postgres.ResultSet, error) {
	e.lastSQL = sqlQuery
	return e.result, e.err
}

type recordingProducer struct {
	mu     sync.Mutex
	events []model.QueryAuditEvent
}

func (p *recordingProducer) Produce(ctx context.Context, events []model.QueryAuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func sessionWith(t *testing.T, username string) session.Store {
	t.Helper()
	store := session.NewInMemoryStore()
	store.Put(username, session.Session{
		Connection:     model.ConnectionParams{Host: "db.local", Port: 5432, Database: "core", Username: "reader"},
		ConnectionName: "core@db.local",
	})
	return store
}

func TestQueryService_NoActiveSession(t *testing.T) {
	svc := service.NewQueryService(session.NewInMemoryStore(), &stubLLM{}, &stubExecutor{}, nil)

	_, err := svc.Query(context.Background(), "admin@bank", model.SectorBank, dto.KPIQueryRequest{Query: "total loans"})
	assert.ErrorIs(t, err, session.ErrNoActiveSession)
}

func TestQueryService_UsesSanitizedLLMSQL(t *testing.T) {
	executor := &stubExecutor{result: &postgres.ResultSet{
		Columns: []string{"department", "headcount"},
		Rows: []map[string]interface{}{
			{"department": "Engineering", "headcount": int64(12)},
		},
	}}
	llm := &stubLLM{enabled: true, sql: "```sql\nSELECT department, COUNT(*) AS headcount FROM employees GROUP BY department;\n```"}
	svc := service.NewQueryService(sessionWith(t, "admin@ithr"), llm, executor, nil)

	resp, err := svc.Query(context.Background(), "admin@ithr", model.SectorITHR, dto.KPIQueryRequest{Query: "employees per department"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT department, COUNT(*) AS headcount FROM employees GROUP BY department", executor.lastSQL)
	assert.Equal(t, executor.lastSQL, resp.SQLQuery)
	assert.Equal(t, 1, resp.Results.RowCount)
	assert.Equal(t, "pie", resp.Results.ChartData.Type)
}

func TestQueryService_FallsBackWhenLLMProducesUnsafeSQL(t *testing.T) {
	executor := &stubExecutor{result: &postgres.ResultSet{Columns: []string{}, Rows: []map[string]interface{}{}}}
	llm := &stubLLM{enabled: true, sql: "DROP TABLE employees"}
	svc := service.NewQueryService(sessionWith(t, "admin@ithr"), llm, executor, nil)

	_, err := svc.Query(context.Background(), "admin@ithr", model.SectorITHR, dto.KPIQueryRequest{Query: "average salary by department"})
	require.NoError(t, err)

	assert.Contains(t, executor.lastSQL, "AVG(COALESCE(salary, 0))")
}

func TestQueryService_FallsBackWhenLLMDisabled(t *testing.T) {
	executor := &stubExecutor{result: &postgres.ResultSet{Columns: []string{}, Rows: []map[string]interface{}{}}}
	svc := service.NewQueryService(sessionWith(t, "admin@bank"), &stubLLM{enabled: false}, executor, nil)

	_, err := svc.Query(context.Background(), "admin@bank", model.SectorBank, dto.KPIQueryRequest{Query: "loan amount by status"})
	require.NoError(t, err)

	assert.Contains(t, executor.lastSQL, "SUM(COALESCE(loan_amount, 0))")
}

func TestQueryService_ExecutionErrorReturnedInline(t *testing.T) {
	executor := &stubExecutor{err: errors.New(`relation "employees" does not exist`)}
	svc := service.NewQueryService(sessionWith(t, "admin@ithr"), &stubLLM{enabled: false}, executor, nil)

	resp, err := svc.Query(context.Background(), "admin@ithr", model.SectorITHR, dto.KPIQueryRequest{Query: "employees per department"})
	// Execution failures surface inside the results, not as a handler error.
	require.NoError(t, err)
	assert.Contains(t, resp.Results.Error, "does not exist")
	assert.Empty(t, resp.Results.TableData)
	assert.Equal(t, "bar", resp.Results.ChartData.Type)
}

func TestQueryService_PublishesAuditEvent(t *testing.T) {
	executor := &stubExecutor{result: &postgres.ResultSet{
		Columns: []string{"count"},
		Rows:    []map[string]interface{}{{"count": int64(42)}},
	}}
	producer := &recordingProducer{}
	svc := service.NewQueryService(sessionWith(t, "admin@bank"), &stubLLM{enabled: false}, executor, producer)

	_, err := svc.Query(context.Background(), "admin@bank", model.SectorBank, dto.KPIQueryRequest{Query: "how many loans"})
	require.NoError(t, err)

	producer.mu.Lock()
	defer producer.mu.Unlock()
	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.Equal(t, "admin@bank", event.Username)
	assert.Equal(t, model.SectorBank, event.Sector)
	assert.Equal(t, "core@db.local", event.Connection)
	assert.Equal(t, 1, event.RowCount)
	assert.NotEmpty(t, event.ID)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Minute)
}
