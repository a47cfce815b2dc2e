// Package chart picks a chart type and axes for a query result using the
// column-name and data-shape heuristics the dashboard's frontend expects.
package chart

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kpi-dashboard-backend/internal/dto"
)

const pieRowLimit = 10

// currencyHints mark columns rendered with a currency formatter.
var currencyHints = []string{"amount", "salary", "price", "total", "balance", "cost", "revenue"}

// dateHints catch date-like columns whose values are served as strings.
var dateHints = []string{"date", "time", "month", "year", "day", "created", "updated"}

// Build classifies columns from the first row and derives the chart payload.
func Build(rows []map[string]interface{}, columns []string) dto.ChartData {
	empty := dto.ChartData{Type: "bar", Data: []map[string]interface{}{}}
	if len(rows) == 0 || len(columns) == 0 {
		return empty
	}

	first := rows[0]
	var numericCols, textCols, dateCols []string
	for _, col := range columns {
		value := first[col]
		switch {
		case isDateLike(col, value):
			dateCols = append(dateCols, col)
		case isNumeric(value):
			numericCols = append(numericCols, col)
		default:
			textCols = append(textCols, col)
		}
	}

	chartType := "bar"
	xAxis := columns[0]
	yAxis := columns[0]
	if len(columns) > 1 {
		yAxis = columns[1]
	}

	switch {
	case len(dateCols) > 0 && len(numericCols) > 0:
		chartType = "line"
		xAxis = dateCols[0]
		yAxis = numericCols[0]
	case len(textCols) > 0 && len(numericCols) > 0 && len(rows) <= pieRowLimit:
		chartType = "pie"
		xAxis = textCols[0]
		yAxis = numericCols[0]
	case len(textCols) > 0 && len(numericCols) > 0:
		chartType = "bar"
		xAxis = textCols[0]
		yAxis = numericCols[0]
	}

	data := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		processed := make(map[string]interface{}, len(row))
		for key, value := range row {
			if contains(numericCols, key) {
				processed[key] = coerceNumber(value)
			} else {
				processed[key] = value
			}
		}
		data = append(data, processed)
	}
	if chartType == "pie" && len(data) > pieRowLimit {
		data = data[:pieRowLimit]
	}

	result := dto.ChartData{Type: chartType, Data: data, XAxis: xAxis, YAxis: yAxis}
	if contains(numericCols, yAxis) && IsCurrencyColumn(yAxis) {
		result.Format = "currency"
	}
	return result
}

// IsCurrencyColumn reports whether a column should be rendered as currency.
func IsCurrencyColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range currencyHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func isNumeric(value interface{}) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, decimal.Decimal, json.Number:
		return true
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		return false
	}
}

func isDateLike(column string, value interface{}) bool {
	if _, ok := value.(time.Time); ok {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	lower := strings.ToLower(column)
	for _, hint := range dateHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// coerceNumber makes numeric cells serialize as JSON numbers so chart axes
// scale properly. Decimals become json.Number to stay lossless; json.Number
// itself already marshals unquoted and passes through.
func coerceNumber(value interface{}) interface{} {
	switch v := value.(type) {
	case decimal.Decimal:
		return json.Number(v.String())
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return value
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
