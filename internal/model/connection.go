package model

import (
	"fmt"
)

// ConnectionParams are the PostgreSQL credentials supplied by the user.
type ConnectionParams struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity keys deduplication: two records pointing at the same database with
// the same role are the same connection.
func (p ConnectionParams) Identity() string {
	return fmt.Sprintf("%s:%d:%s:%s", p.Host, p.Port, p.Database, p.Username)
}

// ConnectionRecord is a persisted database connection, including the schema
// captured the last time it was introspected.
type ConnectionRecord struct {
	ConnectionParams
	Type          string  `json:"type"`
	IsActive      bool    `json:"isActive"`
	Schema        *Schema `json:"schema,omitempty"`
	LastConnected string  `json:"lastConnected,omitempty"`
}
