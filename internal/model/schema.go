package model

import "time"

// Column describes a single column from information_schema.columns.
type Column struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Nullable  bool    `json:"nullable"`
	Default   *string `json:"default"`
	MaxLength *int    `json:"maxLength,omitempty"`
	Precision *int    `json:"precision,omitempty"`
	Scale     *int    `json:"scale,omitempty"`
}

// Table is a table with its columns in ordinal order.
type Table struct {
	Name    string   `json:"name"`
	Schema  string   `json:"schema"`
	Columns []Column `json:"columns"`
}

// ColumnSummary is the keyed form served to the frontend and the LLM.
type ColumnSummary struct {
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
}

type TableSummary struct {
	Columns map[string]ColumnSummary `json:"columns"`
}

// Schema is the full introspection result for one database.
type Schema struct {
	Tables      map[string]TableSummary `json:"tables"`
	ExtractedAt time.Time               `json:"extractedAt"`
	TotalTables int                     `json:"totalTables"`
	RawTables   []Table                 `json:"rawTables"`
}
