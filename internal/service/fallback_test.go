package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/service"
	"kpi-dashboard-backend/internal/sqlcheck"
)

func TestFallbackKPISuggestions(t *testing.T) {
	bank := service.FallbackKPISuggestions(model.SectorBank)
	require.Len(t, bank, 5)
	assert.Equal(t, "loan_portfolio_breakdown", bank[0].ID)

	ithr := service.FallbackKPISuggestions(model.SectorITHR)
	require.Len(t, ithr, 5)
	assert.Equal(t, "employee_department_distribution", ithr[0].ID)

	generic := service.FallbackKPISuggestions("unknown-sector")
	require.Len(t, generic, 5)

	// Suggestion IDs must be unique within a sector.
	seen := map[string]bool{}
	for _, s := range bank {
		assert.False(t, seen[s.ID], "duplicate suggestion id %s", s.ID)
		seen[s.ID] = true
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.QueryTemplate)
	}
}

func TestFallbackSQL(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		contains string
	}{
		{
			name:     "Average Salary",
			query:    "What is the average salary by department?",
			contains: "AVG(COALESCE(salary, 0))",
		},
		{
			name:     "Department Headcount",
			query:    "Show employee count per department",
			contains: "GROUP BY department",
		},
		{
			name:     "Loan Amounts",
			query:    "Total loan amount by status",
			contains: "SUM(COALESCE(loan_amount, 0))",
		},
		{
			name:     "Customers",
			query:    "How many customers do we have?",
			contains: "FROM customers",
		},
		{
			name:     "No Match",
			query:    "Tell me a joke",
			contains: "'No data available'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := service.FallbackSQL(tt.query, model.SectorBank)
			assert.Contains(t, sql, tt.contains)
			// Every fallback must already satisfy the read-only policy.
			assert.True(t, sqlcheck.IsSafe(sql))
		})
	}
}
