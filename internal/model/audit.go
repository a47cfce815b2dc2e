package model

import "time"

// QueryAuditEvent records one executed KPI query for the audit trail.
type QueryAuditEvent struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"@timestamp"`
	Username     string    `json:"username"`
	Sector       string    `json:"sector"`
	Connection   string    `json:"connection"`
	NaturalQuery string    `json:"natural_query"`
	SQLQuery     string    `json:"sql_query"`
	RowCount     int       `json:"row_count"`
	DurationMs   int64     `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
}
