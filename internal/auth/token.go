package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by every access token.
type Claims struct {
	Username string `json:"username"`
	Sector   string `json:"sector"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService interface {
	Issue(account *model.Account) (string, error)
	Verify(tokenString string) (*Claims, error)
}

type tokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		secret: []byte(cfg.Auth.JWTSecret),
		expiry: cfg.Auth.TokenExpiry,
	}
}

func (s *tokenService) Issue(account *model.Account) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: account.Username,
		Sector:   account.Sector,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
