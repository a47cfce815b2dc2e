package connstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/internal/connstore"
	"kpi-dashboard-backend/internal/model"
)

func record(host string, port int, database, username string) model.ConnectionRecord {
	return model.ConnectionRecord{
		ConnectionParams: model.ConnectionParams{
			Host:     host,
			Port:     port,
			Database: database,
			Username: username,
			Password: "secret",
		},
		Type: "postgresql",
	}
}

func TestManager_UpsertAndCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	id, existed, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, "admin@bank_1", id)

	currentID, current := m.Current("admin@bank")
	require.NotNil(t, current)
	assert.Equal(t, "admin@bank_1", currentID)
	assert.True(t, current.IsActive)
	assert.Equal(t, "core", current.Database)
}

func TestManager_UpsertDeduplicatesSameDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)

	// Same host:port:database:username must reuse the existing slot.
	id, existed, err := m.Upsert("admin@bank", "admin@bank_2", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "admin@bank_1", id)
	assert.Len(t, m.All("admin@bank"), 1)
}

func TestManager_UpsertDeactivatesPreviousConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)
	_, _, err = m.Upsert("admin@bank", "admin@bank_2", record("db.local", 5432, "analytics", "reader"))
	require.NoError(t, err)

	all := m.All("admin@bank")
	require.Len(t, all, 2)
	assert.False(t, all["admin@bank_1"].IsActive)
	assert.True(t, all["admin@bank_2"].IsActive)

	currentID, _ := m.Current("admin@bank")
	assert.Equal(t, "admin@bank_2", currentID)
}

func TestManager_UsersAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)

	assert.Empty(t, m.All("admin@ithr"))
	_, current := m.Current("admin@ithr")
	assert.Nil(t, current)
}

func TestManager_SetActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)
	_, _, err = m.Upsert("admin@bank", "admin@bank_2", record("db.local", 5432, "analytics", "reader"))
	require.NoError(t, err)

	assert.True(t, m.SetActive("admin@bank", "admin@bank_1"))
	currentID, current := m.Current("admin@bank")
	assert.Equal(t, "admin@bank_1", currentID)
	assert.True(t, current.IsActive)

	assert.False(t, m.SetActive("admin@bank", "missing"))
	assert.False(t, m.SetActive("unknown-user", "admin@bank_1"))
}

func TestManager_RemovePromotesRemainingConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)
	_, _, err = m.Upsert("admin@bank", "admin@bank_2", record("db.local", 5432, "analytics", "reader"))
	require.NoError(t, err)

	assert.True(t, m.Remove("admin@bank", "admin@bank_2"))

	currentID, current := m.Current("admin@bank")
	require.NotNil(t, current)
	assert.Equal(t, "admin@bank_1", currentID)
	assert.True(t, current.IsActive)

	assert.False(t, m.Remove("admin@bank", "admin@bank_2"))
}

func TestManager_PersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")

	m := connstore.NewManager(path)
	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)

	reloaded := connstore.NewManager(path)
	currentID, current := reloaded.Current("admin@bank")
	require.NotNil(t, current)
	assert.Equal(t, "admin@bank_1", currentID)
	assert.Equal(t, "db.local", current.Host)

	// No stray temp file from the atomic write.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestManager_MigratesLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	legacy := `{
  "currentConnection": "conn_1",
  "connections": {
    "conn_1": {
      "host": "db.local",
      "port": 5432,
      "database": "core",
      "username": "reader",
      "password": "secret",
      "type": "postgresql",
      "isActive": true
    }
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0600))

	m := connstore.NewManager(path)
	currentID, current := m.Current("migration")
	require.NotNil(t, current)
	assert.Equal(t, "conn_1", currentID)
	assert.Equal(t, "core", current.Database)
}

func TestManager_UpdateSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)

	schema := &model.Schema{TotalTables: 3}
	require.NoError(t, m.UpdateSchema("admin@bank", "admin@bank_1", schema))

	_, current := m.Current("admin@bank")
	require.NotNil(t, current.Schema)
	assert.Equal(t, 3, current.Schema.TotalTables)

	assert.ErrorIs(t, m.UpdateSchema("admin@bank", "missing", schema), connstore.ErrConnectionNotFound)
	assert.ErrorIs(t, m.UpdateSchema("nobody", "admin@bank_1", schema), connstore.ErrConnectionNotFound)
}

func TestManager_ActiveConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connections.json")
	m := connstore.NewManager(path)

	_, _, err := m.Upsert("admin@bank", "admin@bank_1", record("db.local", 5432, "core", "reader"))
	require.NoError(t, err)
	_, _, err = m.Upsert("admin@ithr", "admin@ithr_1", record("hr.local", 5432, "people", "reader"))
	require.NoError(t, err)

	active := m.ActiveConnections()
	require.Len(t, active, 2)
	users := map[string]bool{}
	for _, conn := range active {
		users[conn.UserID] = true
	}
	assert.True(t, users["admin@bank"])
	assert.True(t, users["admin@ithr"])
}
