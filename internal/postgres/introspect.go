package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/internal/model"
)

const listTablesSQL = `
	SELECT table_name, table_schema
	FROM information_schema.tables
	WHERE table_schema NOT IN ('information_schema', 'pg_catalog')
	ORDER BY table_name;`

const listColumnsSQL = `
	SELECT column_name, data_type, is_nullable, column_default,
	       character_maximum_length, numeric_precision, numeric_scale
	FROM information_schema.columns
	WHERE table_name = $1 AND table_schema = $2
	ORDER BY ordinal_position;`

// Introspector extracts a database's schema from information_schema.
type Introspector interface {
	ExtractSchema(ctx context.Context, params model.ConnectionParams) (*model.Schema, error)
}

type introspector struct {
	pools PoolManager
}

func NewIntrospector(pools PoolManager) Introspector {
	return &introspector{pools: pools}
}

func (i *introspector) ExtractSchema(ctx context.Context, params model.ConnectionParams) (*model.Schema, error) {
	pool, err := i.pools.Acquire(ctx, params)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	type tableKey struct {
		name   string
		schema string
	}
	var keys []tableKey
	for rows.Next() {
		var k tableKey
		if err := rows.Scan(&k.name, &k.schema); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table list: %w", err)
	}

	tables := make([]model.Table, 0, len(keys))
	for _, k := range keys {
		columns, err := i.tableColumns(ctx, pool, k.name, k.schema)
		if err != nil {
			return nil, err
		}
		tables = append(tables, model.Table{Name: k.name, Schema: k.schema, Columns: columns})
	}

	formatted := make(map[string]model.TableSummary, len(tables))
	for _, table := range tables {
		cols := make(map[string]model.ColumnSummary, len(table.Columns))
		for _, col := range table.Columns {
			cols[col.Name] = model.ColumnSummary{
				Type:     col.Type,
				Nullable: col.Nullable,
				Default:  col.Default,
			}
		}
		formatted[table.Name] = model.TableSummary{Columns: cols}
	}

	schema := &model.Schema{
		Tables:      formatted,
		ExtractedAt: time.Now().UTC(),
		TotalTables: len(tables),
		RawTables:   tables,
	}
	log.Info().Str("database", params.Database).Int("tables", schema.TotalTables).Msg("Extracted database schema")
	return schema, nil
}

func (i *introspector) tableColumns(ctx context.Context, pool queryer, tableName, tableSchema string) ([]model.Column, error) {
	rows, err := pool.Query(ctx, listColumnsSQL, tableName, tableSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []model.Column
	for rows.Next() {
		var (
			col        model.Column
			isNullable string
		)
		if err := rows.Scan(&col.Name, &col.Type, &isNullable, &col.Default, &col.MaxLength, &col.Precision, &col.Scale); err != nil {
			return nil, fmt.Errorf("failed to scan column row of %s: %w", tableName, err)
		}
		col.Nullable = isNullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}
	return columns, nil
}
