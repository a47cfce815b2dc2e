package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/internal/connstore"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/session"
)

type stubPools struct {
	testErr  error
	released []model.ConnectionParams
}

func (p *stubPools) Acquire(ctx context.Context, params model.ConnectionParams) (*pgxpool.Pool, error) {
	return nil, errors.New("not used in tests")
}

func (p *stubPools) Test(ctx context.Context, params model.ConnectionParams) error {
	return p.testErr
}

func (p *stubPools) Release(params model.ConnectionParams) {
	p.released = append(p.released, params)
}

func (p *stubPools) CloseAll() {}

type stubIntrospector struct {
	schema *model.Schema
	err    error
}

func (i *stubIntrospector) ExtractSchema(ctx context.Context, params model.ConnectionParams) (*model.Schema, error) {
	return i.schema, i.err
}

func testSchema() *model.Schema {
	return &model.Schema{
		Tables: map[string]model.TableSummary{
			"employees": {Columns: map[string]model.ColumnSummary{
				"id": {Type: "integer"},
			}},
		},
		TotalTables: 1,
	}
}

func newConnectionService(t *testing.T, pools *stubPools, intro *stubIntrospector) (service.ConnectionService, session.Store) {
	t.Helper()
	store := connstore.NewManager(filepath.Join(t.TempDir(), "connections.json"))
	sessions := session.NewInMemoryStore()
	svc := service.NewConnectionService(store, pools, intro, sessions, &stubLLM{enabled: false})
	return svc, sessions
}

func connectRequest() dto.ConnectDBRequest {
	return dto.ConnectDBRequest{
		Host:     "db.local",
		Port:     5432,
		Database: "people",
		Username: "reader",
		Password: "secret",
	}
}

func TestConnectionService_Connect(t *testing.T) {
	svc, sessions := newConnectionService(t, &stubPools{}, &stubIntrospector{schema: testSchema()})

	resp, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	assert.Equal(t, "connected", resp.Status)
	assert.NotNil(t, resp.Schema)
	// Five suggestions, topped up from the sector fallback.
	assert.Len(t, resp.SuggestedKPIs, 5)
	assert.Equal(t, "employee_department_distribution", resp.SuggestedKPIs[0].ID)

	sess, err := sessions.Get("admin@ithr")
	require.NoError(t, err)
	assert.Equal(t, "people", sess.Connection.Database)
	assert.Equal(t, resp.ConnectionName, sess.ConnectionName)
}

func TestConnectionService_ConnectReusesExistingRecord(t *testing.T) {
	svc, _ := newConnectionService(t, &stubPools{}, &stubIntrospector{schema: testSchema()})

	first, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	second, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ConnectionName, second.ConnectionName)
	assert.Contains(t, second.Message, "existing connection reused")
}

func TestConnectionService_ConnectFailsOnUnreachableDatabase(t *testing.T) {
	pools := &stubPools{testErr: errors.New("connection refused")}
	svc, sessions := newConnectionService(t, pools, &stubIntrospector{schema: testSchema()})

	_, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")

	_, err = sessions.Get("admin@ithr")
	assert.ErrorIs(t, err, session.ErrNoActiveSession)
}

func TestConnectionService_ConfigMasksPasswords(t *testing.T) {
	svc, _ := newConnectionService(t, &stubPools{}, &stubIntrospector{schema: testSchema()})

	_, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	cfg, err := svc.Config("admin@ithr")
	require.NoError(t, err)
	require.NotNil(t, cfg.CurrentConnection)
	assert.Equal(t, "***", cfg.CurrentConnection.Password)
	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, "***", cfg.Connections[0].Password)
}

func TestConnectionService_SwitchRestoresSession(t *testing.T) {
	svc, sessions := newConnectionService(t, &stubPools{}, &stubIntrospector{schema: testSchema()})

	first, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	other := connectRequest()
	other.Database = "archive"
	_, err = svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, other)
	require.NoError(t, err)

	resp, err := svc.Switch("admin@ithr", first.ConnectionName)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.CurrentConnection)
	assert.Equal(t, "people", resp.CurrentConnection.Database)
	assert.Equal(t, "***", resp.CurrentConnection.Password)

	sess, err := sessions.Get("admin@ithr")
	require.NoError(t, err)
	assert.Equal(t, "people", sess.Connection.Database)

	_, err = svc.Switch("admin@ithr", "missing")
	assert.ErrorIs(t, err, service.ErrInvalidConnectionID)
}

func TestConnectionService_SwitchReleasesPreviousPool(t *testing.T) {
	pools := &stubPools{}
	svc, _ := newConnectionService(t, pools, &stubIntrospector{schema: testSchema()})

	first, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	other := connectRequest()
	other.Database = "archive"
	_, err = svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, other)
	require.NoError(t, err)

	pools.released = nil
	_, err = svc.Switch("admin@ithr", first.ConnectionName)
	require.NoError(t, err)
	require.Len(t, pools.released, 1)
	assert.Equal(t, "archive", pools.released[0].Database)

	// Switching to the already-active connection keeps its pool.
	pools.released = nil
	_, err = svc.Switch("admin@ithr", first.ConnectionName)
	require.NoError(t, err)
	assert.Empty(t, pools.released)
}

func TestConnectionService_RemoveReleasesPool(t *testing.T) {
	pools := &stubPools{}
	svc, _ := newConnectionService(t, pools, &stubIntrospector{schema: testSchema()})

	resp, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Remove("admin@ithr", resp.ConnectionName))
	require.Len(t, pools.released, 1)
	assert.Equal(t, "people", pools.released[0].Database)

	assert.ErrorIs(t, svc.Remove("admin@ithr", resp.ConnectionName), service.ErrInvalidConnectionID)
}

func TestConnectionService_Logout(t *testing.T) {
	svc, sessions := newConnectionService(t, &stubPools{}, &stubIntrospector{schema: testSchema()})

	_, err := svc.Connect(context.Background(), "admin@ithr", model.SectorITHR, connectRequest())
	require.NoError(t, err)

	svc.Logout("admin@ithr")
	_, err = sessions.Get("admin@ithr")
	assert.ErrorIs(t, err, session.ErrNoActiveSession)
}
