package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/repository"
)

// ErrHistoryDisabled is returned when the audit trail is not enabled.
var ErrHistoryDisabled = errors.New("query history is not enabled")

type HistoryService interface {
	SearchHistory(ctx context.Context, req dto.AuditSearchRequest) (*dto.AuditSearchResponse, error)
}

type historyService struct {
	auditRepo repository.AuditRepository
}

func NewHistoryService(auditRepo repository.AuditRepository) HistoryService {
	return &historyService{
		auditRepo: auditRepo,
	}
}

func (s *historyService) SearchHistory(ctx context.Context, req dto.AuditSearchRequest) (*dto.AuditSearchResponse, error) {
	if s.auditRepo == nil {
		return nil, ErrHistoryDisabled
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, errors.New("startTime and endTime are required")
	}
	if req.EndTime.Before(req.StartTime) {
		return nil, errors.New("endTime cannot be before startTime")
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Size <= 0 || req.Size > 500 {
		req.Size = 100
	}
	req.SortOrder = strings.ToLower(req.SortOrder)
	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		req.SortOrder = "desc"
	}

	log.Info().
		Time("start_time", req.StartTime).
		Time("end_time", req.EndTime).
		Str("username", req.Username).
		Str("query", req.Query).
		Int("page", req.Page).
		Int("size", req.Size).
		Msg("Searching query history")

	return s.auditRepo.Search(ctx, req)
}
