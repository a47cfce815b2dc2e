package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/auth"
	"kpi-dashboard-backend/internal/connstore"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/session"
)

type ConnectionController struct {
	connectionService service.ConnectionService
}

func NewConnectionController(connectionService service.ConnectionService) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
	}
}

func RegisterConnectionRoutes(router *gin.Engine, controller *ConnectionController, tokens auth.TokenService) {
	api := router.Group("/api", auth.RequireAuth(tokens))
	{
		api.POST("/connect-db", controller.ConnectDB)
		api.GET("/schema", controller.GetSchema)
		api.GET("/database-config", controller.GetDatabaseConfig)
		api.POST("/switch-database", controller.SwitchDatabase)
		api.DELETE("/database-connection/:id", controller.RemoveConnection)
	}
}

// ConnectDB godoc
// @Summary      Register and activate a PostgreSQL connection
// @Description  Tests the supplied credentials, extracts the database schema, stores the connection in the registry, and returns KPI suggestions for the admin's sector.
// @Tags         connections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ConnectDBRequest true "PostgreSQL connection parameters"
// @Success      200 {object} dto.ConnectDBResponse "Connection established"
// @Failure      400 {object} model.Response "Invalid request body or unreachable database"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Router       /api/connect-db [post]
func (c *ConnectionController) ConnectDB(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)
	var req dto.ConnectDBRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: "+err.Error(), nil))
		return
	}

	resp, err := c.connectionService.Connect(ctx.Request.Context(), claims.Username, claims.Sector, req)
	if err != nil {
		log.Warn().Err(err).Str("username", claims.Username).Str("host", req.Host).Msg("Database connection failed")
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetSchema godoc
// @Summary      Get the schema of the active connection
// @Description  Returns the cached schema summary for the caller's active database connection.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SchemaResponse "Schema of the active connection"
// @Failure      400 {object} model.Response "No active database connection"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Router       /api/schema [get]
func (c *ConnectionController) GetSchema(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)

	resp, err := c.connectionService.Schema(claims.Username)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			ctx.JSON(http.StatusBadRequest, model.NewResponse("No active database connection. Please connect first.", nil))
			return
		}
		log.Error().Err(err).Str("username", claims.Username).Msg("Failed to load schema")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetDatabaseConfig godoc
// @Summary      List registered database connections
// @Description  Returns the caller's registered connections and the currently active one. Passwords are always masked.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DatabaseConfigResponse "Registered connections"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Router       /api/database-config [get]
func (c *ConnectionController) GetDatabaseConfig(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)

	resp, err := c.connectionService.Config(claims.Username)
	if err != nil {
		log.Error().Err(err).Str("username", claims.Username).Msg("Failed to load database config")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// SwitchDatabase godoc
// @Summary      Switch the active database connection
// @Description  Activates a previously registered connection and refreshes the caller's session with its cached schema.
// @Tags         connections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SwitchDatabaseRequest true "Connection ID to activate"
// @Success      200 {object} dto.SwitchDatabaseResponse "Connection switched"
// @Failure      400 {object} model.Response "Invalid request body"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Failure      404 {object} model.Response "Connection not found"
// @Router       /api/switch-database [post]
func (c *ConnectionController) SwitchDatabase(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)
	var req dto.SwitchDatabaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("connectionId is required", nil))
		return
	}

	resp, err := c.connectionService.Switch(claims.Username, req.ConnectionID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidConnectionID) || errors.Is(err, connstore.ErrConnectionNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Connection not found", nil))
			return
		}
		log.Error().Err(err).Str("username", claims.Username).Str("connection_id", req.ConnectionID).Msg("Failed to switch database")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// RemoveConnection godoc
// @Summary      Remove a registered database connection
// @Description  Deletes a connection from the registry and releases its pool. If the active connection is removed, another registered one is promoted.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Connection ID"
// @Success      200 {object} dto.RemoveConnectionResponse "Connection removed"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Failure      404 {object} model.Response "Connection not found"
// @Router       /api/database-connection/{id} [delete]
func (c *ConnectionController) RemoveConnection(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)
	connectionID := ctx.Param("id")

	err := c.connectionService.Remove(claims.Username, connectionID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidConnectionID) || errors.Is(err, connstore.ErrConnectionNotFound) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Connection not found", nil))
			return
		}
		log.Error().Err(err).Str("username", claims.Username).Str("connection_id", connectionID).Msg("Failed to remove connection")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	ctx.JSON(http.StatusOK, dto.RemoveConnectionResponse{
		Success: true,
		Message: "Connection removed",
	})
}
