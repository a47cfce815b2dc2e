package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/auth"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/util"
)

type HistoryController struct {
	historyService service.HistoryService
}

func NewHistoryController(historyService service.HistoryService) *HistoryController {
	return &HistoryController{
		historyService: historyService,
	}
}

func RegisterHistoryRoutes(router *gin.Engine, controller *HistoryController, tokens auth.TokenService) {
	api := router.Group("/api", auth.RequireAuth(tokens))
	{
		api.GET("/query-history", controller.GetHistory)
	}
}

// GetHistory godoc
// @Summary      Search the query audit trail
// @Description  Retrieves executed KPI queries in a time range, optionally filtered by username or free text. Requires the audit pipeline to be enabled.
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        startTime query string true  "Start time in ISO 8601 format or epoch milliseconds"
// @Param        endTime   query string true  "End time in ISO 8601 format or epoch milliseconds"
// @Param        username  query string false "Filter by the admin who ran the query"
// @Param        query     query string false "Free text search over natural and generated SQL queries"
// @Param        sortOrder query string false "Sort order (asc or desc, default: desc)" Enums(asc, desc)
// @Param        page      query int    false "Page number (default: 1)" minimum(1)
// @Param        size      query int    false "Events per page (default: 100, max: 500)" minimum(1) maximum(500)
// @Success      200 {object} dto.AuditSearchResponse "Matching audit events"
// @Failure      400 {object} model.Response "Invalid query parameters"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Failure      503 {object} model.Response "Audit trail disabled"
// @Router       /api/query-history [get]
func (c *HistoryController) GetHistory(ctx *gin.Context) {
	startTime, errStart := util.ParseTimeFlexible(ctx.Query("startTime"))
	endTime, errEnd := util.ParseTimeFlexible(ctx.Query("endTime"))
	if errStart != nil || errEnd != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid startTime or endTime format. Use ISO 8601 or epoch milliseconds.", nil))
		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(ctx.DefaultQuery("size", "100"))
	if err != nil || size <= 0 || size > 500 {
		size = 100
	}

	searchReq := dto.AuditSearchRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Username:  ctx.Query("username"),
		Query:     ctx.Query("query"),
		SortOrder: ctx.DefaultQuery("sortOrder", "desc"),
		Page:      page,
		Size:      size,
	}

	result, err := c.historyService.SearchHistory(ctx.Request.Context(), searchReq)
	if err != nil {
		if errors.Is(err, service.ErrHistoryDisabled) {
			ctx.JSON(http.StatusServiceUnavailable, model.NewResponse("Query history is not enabled", nil))
			return
		}
		log.Error().Err(err).Msg("Error searching query history")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to search query history", nil))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
