package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/auth"
	"kpi-dashboard-backend/internal/model"
)

func tokenConfig(secret string, expiry time.Duration) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:   secret,
			TokenExpiry: expiry,
		},
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := auth.NewTokenService(tokenConfig("test-secret", time.Hour))

	signed, err := tokens.Issue(&model.Account{
		Username: "admin@bank",
		Sector:   model.SectorBank,
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin@bank", claims.Username)
	assert.Equal(t, model.SectorBank, claims.Sector)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	tokens := auth.NewTokenService(tokenConfig("test-secret", time.Hour))

	_, err := tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenService(tokenConfig("secret-a", time.Hour))
	verifier := auth.NewTokenService(tokenConfig("secret-b", time.Hour))

	signed, err := issuer.Issue(&model.Account{Username: "admin@bank", Sector: model.SectorBank, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	tokens := auth.NewTokenService(tokenConfig("test-secret", -time.Minute))

	signed, err := tokens.Issue(&model.Account{Username: "admin@bank", Sector: model.SectorBank, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
