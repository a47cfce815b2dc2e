package repository

import (
	"context"

	"kpi-dashboard-backend/internal/dto"
)

// AuditRepository provides read access to the stored query audit trail.
type AuditRepository interface {
	Search(ctx context.Context, req dto.AuditSearchRequest) (*dto.AuditSearchResponse, error)
}
