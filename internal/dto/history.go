package dto

import (
	"time"

	"kpi-dashboard-backend/internal/model"
)

type AuditSearchRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Username  string
	Query     string // free-text match against natural and SQL queries
	Page      int
	Size      int
	SortOrder string // "asc" | "desc"
}

type AuditSearchResponse struct {
	Events     []model.QueryAuditEvent `json:"events"`
	TotalCount int64                   `json:"totalCount"`
	Page       int                     `json:"page"`
	Size       int                     `json:"size"`
}
