package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/model"
)

const claimsContextKey = "authClaims"

// RequireAuth validates the Bearer token and stores the claims on the context.
func RequireAuth(tokens TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, model.NewResponse("Access token required", nil))
			return
		}
		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Warn().Err(err).Msg("Rejected request with invalid token")
			ctx.AbortWithStatusJSON(http.StatusForbidden, model.NewResponse("Invalid token", nil))
			return
		}
		ctx.Set(claimsContextKey, claims)
		ctx.Next()
	}
}

// ClaimsFrom returns the verified claims set by RequireAuth.
func ClaimsFrom(ctx *gin.Context) *Claims {
	if v, ok := ctx.Get(claimsContextKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}
