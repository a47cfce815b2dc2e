package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
)

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ResultSet is the decoded output of one SELECT.
type ResultSet struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Executor runs sanitized SELECT statements against a user database.
type Executor interface {
	Execute(ctx context.Context, params model.ConnectionParams, sqlQuery string) (*ResultSet, error)
}

type executor struct {
	pools        PoolManager
	queryTimeout time.Duration
	maxRows      int
}

func NewExecutor(pools PoolManager, cfg *config.Config) Executor {
	return &executor{
		pools:        pools,
		queryTimeout: cfg.QueryExecutor.QueryTimeout,
		maxRows:      cfg.QueryExecutor.MaxRows,
	}
}

func (e *executor) Execute(ctx context.Context, params model.ConnectionParams, sqlQuery string) (*ResultSet, error) {
	pool, err := e.pools.Acquire(ctx, params)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	rows, err := pool.Query(queryCtx, sqlQuery)
	if err != nil {
		log.Error().Err(err).Str("database", params.Database).Msg("Query execution failed")
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = string(fd.Name)
	}

	result := &ResultSet{Columns: columns, Rows: []map[string]interface{}{}}
	for rows.Next() {
		if len(result.Rows) >= e.maxRows {
			log.Warn().Int("max_rows", e.maxRows).Msg("Result set truncated at row cap")
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(col, values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result set: %w", err)
	}
	return result, nil
}

// normalizeValue maps driver values to JSON-safe ones. NULL becomes 0 so the
// frontend's aggregate cards never render "null", except averages where zero
// would be misleading.
func normalizeValue(column string, value interface{}) interface{} {
	if value == nil {
		lower := strings.ToLower(column)
		if strings.Contains(lower, "avg") || strings.Contains(lower, "average") {
			return nil
		}
		return 0
	}

	switch v := value.(type) {
	case pgtype.Numeric:
		return numericValue(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(v).String()
	case []byte:
		return string(v)
	default:
		return value
	}
}

// numericValue converts pg numerics losslessly instead of going through
// float64, which matters for currency columns. The result is a json.Number
// so the value serializes as a bare number rather than a quoted string.
func numericValue(n pgtype.Numeric) interface{} {
	if !n.Valid {
		return nil
	}
	if n.NaN {
		return "NaN"
	}
	if n.Int == nil {
		return json.Number("0")
	}
	d := decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
	return json.Number(d.String())
}
