package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/auth"
	"kpi-dashboard-backend/internal/model"
)

func registryConfig(entries ...string) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{Accounts: entries},
	}
}

func TestAccountRegistry_Authenticate(t *testing.T) {
	registry := auth.NewAccountRegistry(registryConfig(
		"admin@bank:bank123:bank:admin",
		"admin@ithr:ithr123:ithr:admin",
	))

	account, err := registry.Authenticate("admin@bank", "bank123")
	require.NoError(t, err)
	assert.Equal(t, "admin@bank", account.Username)
	assert.Equal(t, model.SectorBank, account.Sector)
	assert.Equal(t, model.RoleAdmin, account.Role)

	account, err = registry.Authenticate("admin@ithr", "ithr123")
	require.NoError(t, err)
	assert.Equal(t, model.SectorITHR, account.Sector)
}

func TestAccountRegistry_RejectsBadCredentials(t *testing.T) {
	registry := auth.NewAccountRegistry(registryConfig("admin@bank:bank123:bank:admin"))

	_, err := registry.Authenticate("admin@bank", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = registry.Authenticate("nobody", "bank123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAccountRegistry_BcryptPasswords(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("bank123"), bcrypt.MinCost)
	require.NoError(t, err)

	registry := auth.NewAccountRegistry(registryConfig("admin@bank:" + string(hash) + ":bank:admin"))

	_, err = registry.Authenticate("admin@bank", "bank123")
	assert.NoError(t, err)

	_, err = registry.Authenticate("admin@bank", "other")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAccountRegistry_SkipsMalformedEntries(t *testing.T) {
	registry := auth.NewAccountRegistry(registryConfig(
		"",
		"missing-fields",
		"admin@bank:bank123:bank:admin",
	))

	_, err := registry.Authenticate("admin@bank", "bank123")
	assert.NoError(t, err)

	_, err = registry.Authenticate("missing-fields", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
