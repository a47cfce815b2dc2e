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
)

type AuthController struct {
	accounts    auth.AccountRegistry
	tokens      auth.TokenService
	connections service.ConnectionService
}

func NewAuthController(accounts auth.AccountRegistry, tokens auth.TokenService, connections service.ConnectionService) *AuthController {
	return &AuthController{
		accounts:    accounts,
		tokens:      tokens,
		connections: connections,
	}
}

func RegisterAuthRoutes(router *gin.Engine, controller *AuthController, tokens auth.TokenService) {
	api := router.Group("/api")
	{
		api.POST("/login", controller.Login)
		api.POST("/logout", auth.RequireAuth(tokens), controller.Logout)
	}
}

// Login godoc
// @Summary      Authenticate a sector administrator
// @Description  Validates admin credentials and returns a bearer token together with the user's sector and role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Admin credentials"
// @Success      200 {object} dto.LoginResponse "Authentication succeeded"
// @Failure      400 {object} model.Response "Invalid request body"
// @Failure      401 {object} model.Response "Invalid credentials"
// @Router       /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Username and password are required", nil))
		return
	}

	account, err := c.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn().Str("username", req.Username).Msg("Login rejected: invalid credentials")
			ctx.JSON(http.StatusUnauthorized, model.NewResponse("Invalid credentials", nil))
			return
		}
		log.Error().Err(err).Msg("Login failed")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	token, err := c.tokens.Issue(account)
	if err != nil {
		log.Error().Err(err).Str("username", account.Username).Msg("Failed to issue token")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}

	log.Info().Str("username", account.Username).Str("sector", account.Sector).Msg("Admin logged in")
	ctx.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: dto.UserInfo{
			Username: account.Username,
			Sector:   account.Sector,
			Role:     account.Role,
		},
	})
}

// Logout godoc
// @Summary      Log out the current administrator
// @Description  Clears the caller's active database session. The bearer token itself stays valid until it expires.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.LogoutResponse "Session cleared"
// @Failure      401 {object} model.Response "Missing token"
// @Failure      403 {object} model.Response "Invalid token"
// @Router       /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := auth.ClaimsFrom(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, model.NewResponse("Access token required", nil))
		return
	}

	c.connections.Logout(claims.Username)
	log.Info().Str("username", claims.Username).Msg("Admin logged out")
	ctx.JSON(http.StatusOK, dto.LogoutResponse{Status: "logged_out"})
}
