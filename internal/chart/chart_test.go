package chart_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/internal/chart"
)

func TestBuild_LineForDateAndNumeric(t *testing.T) {
	rows := []map[string]interface{}{
		{"month": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "revenue": 1200.5},
		{"month": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "revenue": 1900.0},
	}

	result := chart.Build(rows, []string{"month", "revenue"})

	assert.Equal(t, "line", result.Type)
	assert.Equal(t, "month", result.XAxis)
	assert.Equal(t, "revenue", result.YAxis)
	assert.Len(t, result.Data, 2)
}

func TestBuild_LineForDateStrings(t *testing.T) {
	rows := []map[string]interface{}{
		{"day": "2024-03-01", "count": int64(4)},
		{"day": "2024-03-02", "count": int64(7)},
	}

	result := chart.Build(rows, []string{"day", "count"})

	assert.Equal(t, "line", result.Type)
	assert.Equal(t, "day", result.XAxis)
	assert.Equal(t, "count", result.YAxis)
}

func TestBuild_PieForSmallCategoricalResult(t *testing.T) {
	rows := []map[string]interface{}{
		{"department": "Engineering", "headcount": int64(12)},
		{"department": "Sales", "headcount": int64(8)},
		{"department": "HR", "headcount": int64(3)},
	}

	result := chart.Build(rows, []string{"department", "headcount"})

	assert.Equal(t, "pie", result.Type)
	assert.Equal(t, "department", result.XAxis)
	assert.Equal(t, "headcount", result.YAxis)
	assert.Len(t, result.Data, 3)
}

func TestBuild_BarForLargeCategoricalResult(t *testing.T) {
	rows := make([]map[string]interface{}, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, map[string]interface{}{
			"customer": fmt.Sprintf("customer-%d", i),
			"balance":  float64(i * 100),
		})
	}

	result := chart.Build(rows, []string{"customer", "balance"})

	assert.Equal(t, "bar", result.Type)
	assert.Equal(t, "customer", result.XAxis)
	assert.Equal(t, "balance", result.YAxis)
	assert.Len(t, result.Data, 15)
}

func TestBuild_EmptyResult(t *testing.T) {
	result := chart.Build(nil, []string{"a", "b"})

	assert.Equal(t, "bar", result.Type)
	assert.Empty(t, result.Data)
}

func TestBuild_NumericStringsCoerced(t *testing.T) {
	rows := []map[string]interface{}{
		{"product": "Widget", "price": "19.99"},
	}

	result := chart.Build(rows, []string{"product", "price"})

	assert.Equal(t, 19.99, result.Data[0]["price"])
}

func TestBuild_DecimalCellsMarshalAsNumbers(t *testing.T) {
	rows := []map[string]interface{}{
		{"department": "Engineering", "total_salary": decimal.RequireFromString("123.45")},
	}

	result := chart.Build(rows, []string{"department", "total_salary"})

	payload, err := json.Marshal(result.Data)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"total_salary":123.45`)
}

func TestBuild_CurrencyFormatHint(t *testing.T) {
	rows := []map[string]interface{}{
		{"department": "Engineering", "total_salary": json.Number("88000")},
		{"department": "Sales", "total_salary": json.Number("64500.50")},
	}

	result := chart.Build(rows, []string{"department", "total_salary"})
	assert.Equal(t, "currency", result.Format)

	counts := []map[string]interface{}{
		{"department": "Engineering", "headcount": int64(12)},
	}
	assert.Empty(t, chart.Build(counts, []string{"department", "headcount"}).Format)
}

func TestIsCurrencyColumn(t *testing.T) {
	assert.True(t, chart.IsCurrencyColumn("total_amount"))
	assert.True(t, chart.IsCurrencyColumn("AVG_SALARY"))
	assert.True(t, chart.IsCurrencyColumn("monthly_revenue"))
	assert.False(t, chart.IsCurrencyColumn("department"))
	assert.False(t, chart.IsCurrencyColumn("headcount"))
}
