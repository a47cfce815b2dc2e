package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/auth"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/session"
)

type QueryController struct {
	queryService service.QueryService
}

func NewQueryController(queryService service.QueryService) *QueryController {
	return &QueryController{
		queryService: queryService,
	}
}

func RegisterQueryRoutes(router *gin.Engine, controller *QueryController, tokens auth.TokenService) {
	api := router.Group("/api", auth.RequireAuth(tokens))
	{
		api.POST("/query-kpi", controller.QueryKPI)
	}
}

// QueryKPI godoc
// @Summary      Run a natural language KPI query
// @Description  Translates the natural language question into SQL against the active connection's schema, executes it read-only, and returns table rows plus a chart recommendation. Execution errors are reported inside the results payload rather than as an HTTP error.
// @Tags         query
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.KPIQueryRequest true "Natural language question"
// @Success      200 {object} dto.KPIQueryResponse "Query processed"
// @Failure      400 {object} model.Response "Invalid request body or no active connection"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Router       /api/query-kpi [post]
func (c *QueryController) QueryKPI(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)
	var req dto.KPIQueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Query is required", nil))
		return
	}

	resp, err := c.queryService.Query(ctx.Request.Context(), claims.Username, claims.Sector, req)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			ctx.JSON(http.StatusBadRequest, model.NewResponse("No active database connection. Please connect first.", nil))
			return
		}
		log.Error().Err(err).Str("username", claims.Username).Msg("Internal error processing KPI query")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
