package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
)

// managedHosts are hosted-Postgres providers that reject non-TLS connections.
var managedHosts = []string{"neon.tech", "supabase.", "amazonaws.com", "planetscale.", "railway."}

// BuildDSN renders connection params as a pgx connection string.
func BuildDSN(params model.ConnectionParams) string {
	sslmode := "disable"
	for _, host := range managedHosts {
		if strings.Contains(params.Host, host) {
			sslmode = "require"
			break
		}
	}
	// url.URL applies userinfo escaping; QueryEscape would turn a space
	// into a literal "+" in the credentials.
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(params.Username, params.Password),
		Host:     fmt.Sprintf("%s:%d", params.Host, params.Port),
		Path:     "/" + params.Database,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String()
}

// PoolManager caches one capped pgx pool per distinct user database.
type PoolManager interface {
	Acquire(ctx context.Context, params model.ConnectionParams) (*pgxpool.Pool, error)
	Test(ctx context.Context, params model.ConnectionParams) error
	Release(params model.ConnectionParams)
	CloseAll()
}

type poolManager struct {
	maxConns int32
	mu       sync.Mutex
	pools    map[string]*pgxpool.Pool
}

func NewPoolManager(lc fx.Lifecycle, cfg *config.Config) PoolManager {
	m := &poolManager{
		maxConns: cfg.QueryExecutor.MaxConns,
		pools:    make(map[string]*pgxpool.Pool),
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing user database connection pools...")
			m.CloseAll()
			return nil
		},
	})
	return m
}

func (m *poolManager) Acquire(ctx context.Context, params model.ConnectionParams) (*pgxpool.Pool, error) {
	key := params.Identity()

	m.mu.Lock()
	if pool, ok := m.pools[key]; ok {
		m.mu.Unlock()
		return pool, nil
	}
	m.mu.Unlock()

	poolConfig, err := pgxpool.ParseConfig(BuildDSN(params))
	if err != nil {
		log.Error().Err(err).Str("host", params.Host).Msg("Failed to parse user database DSN")
		return nil, fmt.Errorf("invalid connection parameters: %w", err)
	}
	poolConfig.MaxConns = m.maxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error().Err(err).Str("host", params.Host).Msg("Unable to create connection pool to user database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Error().Err(err).Str("host", params.Host).Str("database", params.Database).Msg("Failed to ping user database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have raced us here; keep the first pool.
	if existing, ok := m.pools[key]; ok {
		pool.Close()
		return existing, nil
	}
	m.pools[key] = pool
	log.Info().Str("host", params.Host).Str("database", params.Database).Int32("max_conns", m.maxConns).Msg("User database connection pool created")
	return pool, nil
}

// Test verifies credentials with a short-lived pool acquisition.
func (m *poolManager) Test(ctx context.Context, params model.ConnectionParams) error {
	pool, err := m.Acquire(ctx, params)
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	var one int
	if err := pool.QueryRow(pingCtx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

func (m *poolManager) Release(params model.ConnectionParams) {
	key := params.Identity()
	m.mu.Lock()
	defer m.mu.Unlock()
	if pool, ok := m.pools[key]; ok {
		pool.Close()
		delete(m.pools, key)
		log.Debug().Str("key", key).Msg("Released user database connection pool")
	}
}

func (m *poolManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, pool := range m.pools {
		pool.Close()
		delete(m.pools, key)
	}
}
