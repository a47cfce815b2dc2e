package auth

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountRegistry resolves the predefined administrator accounts.
type AccountRegistry interface {
	Authenticate(username, password string) (*model.Account, error)
}

type accountRegistry struct {
	accounts map[string]model.Account
}

// NewAccountRegistry parses ADMIN_ACCOUNTS entries of the form
// "username:password:sector:role". Malformed entries are skipped.
func NewAccountRegistry(cfg *config.Config) AccountRegistry {
	accounts := make(map[string]model.Account)
	for _, entry := range cfg.Auth.Accounts {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			log.Warn().Str("entry", entry).Msg("Skipping malformed admin account entry")
			continue
		}
		accounts[parts[0]] = model.Account{
			Username: parts[0],
			Password: parts[1],
			Sector:   parts[2],
			Role:     parts[3],
		}
	}
	log.Info().Int("count", len(accounts)).Msg("Admin account registry loaded")
	return &accountRegistry{accounts: accounts}
}

func (r *accountRegistry) Authenticate(username, password string) (*model.Account, error) {
	account, ok := r.accounts[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !passwordMatches(account.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &account, nil
}

// passwordMatches compares against a bcrypt hash when the stored value looks
// like one, and falls back to a plain comparison for local setups.
func passwordMatches(stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return stored == supplied
}
