package dto

import "kpi-dashboard-backend/internal/model"

type ConnectDBRequest struct {
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port" binding:"required"`
	Database string `json:"database" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ConnectDBResponse struct {
	Status         string          `json:"status"`
	Schema         *model.Schema   `json:"schema"`
	SuggestedKPIs  []KPISuggestion `json:"suggested_kpis"`
	ConnectionName string          `json:"connectionName"`
	Message        string          `json:"message"`
}

type SchemaResponse struct {
	Schema         *model.Schema `json:"schema"`
	LastUpdated    string        `json:"lastUpdated,omitempty"`
	ConnectionName string        `json:"connectionName,omitempty"`
}

// ConnectionSummary is a registry entry with the password masked.
type ConnectionSummary struct {
	ID            string `json:"id"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Database      string `json:"database"`
	Username      string `json:"username"`
	Password      string `json:"password"` // always "***"
	Type          string `json:"type"`
	IsActive      bool   `json:"isActive"`
	LastConnected string `json:"lastConnected,omitempty"`
}

type DatabaseConfigResponse struct {
	Success           bool                `json:"success"`
	CurrentConnection *ConnectionSummary  `json:"currentConnection"`
	Connections       []ConnectionSummary `json:"connections"`
}

type SwitchDatabaseRequest struct {
	ConnectionID string `json:"connectionId" binding:"required"`
}

type SwitchDatabaseResponse struct {
	Success           bool               `json:"success"`
	Message           string             `json:"message"`
	CurrentConnection *ConnectionSummary `json:"currentConnection"`
}

type RemoveConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
