package connstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/model"
)

var ErrConnectionNotFound = errors.New("connection not found")

// UserConnections holds one user's registry slot.
type UserConnections struct {
	CurrentConnection string                            `json:"currentConnection"`
	Connections       map[string]model.ConnectionRecord `json:"connections"`
}

// registryFile is the on-disk layout.
type registryFile struct {
	Users map[string]*UserConnections `json:"users"`
}

// legacyFile is the pre-multi-user layout, migrated on load.
type legacyFile struct {
	CurrentConnection string                            `json:"currentConnection"`
	Connections       map[string]model.ConnectionRecord `json:"connections"`
}

// ActiveConnection pairs a user with their currently active record.
type ActiveConnection struct {
	UserID       string
	ConnectionID string
	Record       model.ConnectionRecord
}

// Manager is the JSON-file-backed connection registry. All mutations are
// persisted with an atomic temp-file-and-rename write.
type Manager interface {
	Upsert(userID, connectionID string, record model.ConnectionRecord) (actualID string, existed bool, err error)
	Current(userID string) (string, *model.ConnectionRecord)
	All(userID string) map[string]model.ConnectionRecord
	SetActive(userID, connectionID string) bool
	Remove(userID, connectionID string) bool
	UpdateSchema(userID, connectionID string, schema *model.Schema) error
	ActiveConnections() []ActiveConnection
}

type manager struct {
	filePath string
	mu       sync.RWMutex
	registry registryFile
}

func NewManager(filePath string) Manager {
	m := &manager{
		filePath: filePath,
		registry: registryFile{Users: make(map[string]*UserConnections)},
	}
	m.load()
	return m
}

func (m *manager) load() {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", m.filePath).Msg("Connection registry not found, starting fresh.")
			return
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read connection registry, starting fresh")
		return
	}
	if len(data) == 0 {
		log.Warn().Str("file", m.filePath).Msg("Connection registry is empty, starting fresh.")
		return
	}

	var reg registryFile
	if err := json.Unmarshal(data, &reg); err == nil && reg.Users != nil {
		m.registry = reg
		log.Debug().Str("file", m.filePath).Int("users", len(reg.Users)).Msg("Loaded connection registry")
		return
	}

	// Legacy single-user layout: fold it under a migration slot.
	var legacy legacyFile
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.Connections != nil {
		m.registry.Users["migration"] = &UserConnections{
			CurrentConnection: legacy.CurrentConnection,
			Connections:       legacy.Connections,
		}
		log.Info().Str("file", m.filePath).Msg("Migrated legacy connection registry layout")
		if err := m.save(); err != nil {
			log.Error().Err(err).Msg("Failed to persist migrated connection registry")
		}
		return
	}

	log.Error().Str("file", m.filePath).Msg("Failed to unmarshal connection registry, starting fresh")
	m.registry = registryFile{Users: make(map[string]*UserConnections)}
}

// save writes the registry; callers must hold the write lock.
func (m *manager) save() error {
	data, err := json.MarshalIndent(m.registry, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal connection registry")
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.filePath), 0755); err != nil {
		log.Error().Err(err).Str("dir", filepath.Dir(m.filePath)).Msg("Failed to create registry directory")
		return err
	}

	tempFilePath := m.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0600); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary registry file")
		return err
	}
	if err := os.Rename(tempFilePath, m.filePath); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename registry file")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", m.filePath).Msg("Saved connection registry")
	return nil
}

func (m *manager) userSlot(userID string) *UserConnections {
	slot, ok := m.registry.Users[userID]
	if !ok {
		slot = &UserConnections{Connections: make(map[string]model.ConnectionRecord)}
		m.registry.Users[userID] = slot
	}
	if slot.Connections == nil {
		slot.Connections = make(map[string]model.ConnectionRecord)
	}
	return slot
}

// Upsert stores a connection, reusing an existing record that points at the
// same database. The stored record becomes the user's active connection.
func (m *manager) Upsert(userID, connectionID string, record model.ConnectionRecord) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.userSlot(userID)

	actualID := connectionID
	existed := false
	for id, existing := range slot.Connections {
		if existing.Identity() == record.Identity() {
			actualID = id
			existed = true
			break
		}
	}

	for id, conn := range slot.Connections {
		conn.IsActive = false
		slot.Connections[id] = conn
	}
	record.IsActive = true
	slot.Connections[actualID] = record
	slot.CurrentConnection = actualID

	if err := m.save(); err != nil {
		return "", false, err
	}
	return actualID, existed, nil
}

func (m *manager) Current(userID string) (string, *model.ConnectionRecord) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slot, ok := m.registry.Users[userID]
	if !ok || slot.CurrentConnection == "" {
		return "", nil
	}
	record, ok := slot.Connections[slot.CurrentConnection]
	if !ok {
		return "", nil
	}
	return slot.CurrentConnection, &record
}

// All returns the user's connections after pruning duplicate records that
// target the same database.
func (m *manager) All(userID string) map[string]model.ConnectionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.registry.Users[userID]
	if !ok {
		return map[string]model.ConnectionRecord{}
	}

	seen := make(map[string]bool)
	changed := false
	for _, id := range sortedIDs(slot.Connections) {
		conn := slot.Connections[id]
		identity := conn.Identity()
		if seen[identity] {
			delete(slot.Connections, id)
			changed = true
			if slot.CurrentConnection == id {
				slot.CurrentConnection = ""
				for remaining := range slot.Connections {
					slot.CurrentConnection = remaining
					promoted := slot.Connections[remaining]
					promoted.IsActive = true
					slot.Connections[remaining] = promoted
					break
				}
			}
			continue
		}
		seen[identity] = true
	}
	if changed {
		if err := m.save(); err != nil {
			log.Error().Err(err).Msg("Failed to persist registry after duplicate cleanup")
		}
	}

	out := make(map[string]model.ConnectionRecord, len(slot.Connections))
	for id, conn := range slot.Connections {
		out[id] = conn
	}
	return out
}

func (m *manager) SetActive(userID, connectionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.registry.Users[userID]
	if !ok {
		return false
	}
	if _, ok := slot.Connections[connectionID]; !ok {
		return false
	}
	for id, conn := range slot.Connections {
		conn.IsActive = id == connectionID
		slot.Connections[id] = conn
	}
	slot.CurrentConnection = connectionID
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("Failed to persist registry after switching connection")
	}
	return true
}

func (m *manager) Remove(userID, connectionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.registry.Users[userID]
	if !ok {
		return false
	}
	if _, ok := slot.Connections[connectionID]; !ok {
		return false
	}
	delete(slot.Connections, connectionID)
	if slot.CurrentConnection == connectionID {
		slot.CurrentConnection = ""
		for _, id := range sortedIDs(slot.Connections) {
			slot.CurrentConnection = id
			promoted := slot.Connections[id]
			promoted.IsActive = true
			slot.Connections[id] = promoted
			break
		}
	}
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("Failed to persist registry after removing connection")
	}
	return true
}

func (m *manager) UpdateSchema(userID, connectionID string, schema *model.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.registry.Users[userID]
	if !ok {
		return ErrConnectionNotFound
	}
	record, ok := slot.Connections[connectionID]
	if !ok {
		return ErrConnectionNotFound
	}
	record.Schema = schema
	slot.Connections[connectionID] = record
	return m.save()
}

func (m *manager) ActiveConnections() []ActiveConnection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []ActiveConnection
	for userID, slot := range m.registry.Users {
		if slot.CurrentConnection == "" {
			continue
		}
		if record, ok := slot.Connections[slot.CurrentConnection]; ok {
			active = append(active, ActiveConnection{
				UserID:       userID,
				ConnectionID: slot.CurrentConnection,
				Record:       record,
			})
		}
	}
	return active
}

// sortedIDs keeps duplicate cleanup and promotion deterministic.
func sortedIDs(connections map[string]model.ConnectionRecord) []string {
	ids := make([]string, 0, len(connections))
	for id := range connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
