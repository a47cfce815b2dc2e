package service

import (
	"strings"

	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
)

const kpiSuggestionCount = 5

// FallbackKPISuggestions returns the hardcoded per-sector suggestion list
// used when the LLM is unavailable or returns too few valid items.
func FallbackKPISuggestions(sector string) []dto.KPISuggestion {
	switch sector {
	case model.SectorBank:
		return []dto.KPISuggestion{
			{
				ID:            "loan_portfolio_breakdown",
				Name:          "Loan Portfolio Breakdown",
				Description:   "Distribution of loans by type to understand product mix",
				QueryTemplate: "Show me the breakdown of loans by type",
				Category:      "Portfolio Analysis",
			},
			{
				ID:            "monthly_payment_collection",
				Name:          "Monthly Payment Collection",
				Description:   "Track monthly payment collections to monitor cash flow",
				QueryTemplate: "Show me the monthly payment collections for the last 12 months",
				Category:      "Cash Flow",
			},
			{
				ID:            "total_loan_metrics",
				Name:          "Total Loan Portfolio Metrics",
				Description:   "Overall loan portfolio size and average loan amounts",
				QueryTemplate: "What is the total value and average amount of all loans?",
				Category:      "Portfolio Overview",
			},
			{
				ID:            "customer_loan_activity",
				Name:          "Customer Loan Activity",
				Description:   "Number of active customers and their loan activity",
				QueryTemplate: "How many customers have active loans?",
				Category:      "Customer Analysis",
			},
			{
				ID:            "loan_status_distribution",
				Name:          "Loan Status Distribution",
				Description:   "Distribution of loans by current status",
				QueryTemplate: "What is the status breakdown of all loans?",
				Category:      "Risk Management",
			},
		}
	case model.SectorITHR:
		return []dto.KPISuggestion{
			{
				ID:            "employee_department_distribution",
				Name:          "Employee Department Distribution",
				Description:   "Employee count by department for workforce planning",
				QueryTemplate: "Show me employee distribution by department",
				Category:      "Workforce Analytics",
			},
			{
				ID:            "average_employee_salary",
				Name:          "Average Salary by Department",
				Description:   "Average salary analysis by department",
				QueryTemplate: "What is the average salary by department?",
				Category:      "Compensation",
			},
			{
				ID:            "employee_tenure_analysis",
				Name:          "Employee Tenure Analysis",
				Description:   "Average employee tenure and retention metrics",
				QueryTemplate: "What is the average employee tenure?",
				Category:      "Retention",
			},
			{
				ID:            "headcount_trends",
				Name:          "Headcount Growth Trends",
				Description:   "Employee headcount changes over time",
				QueryTemplate: "Show me headcount trends over the last year",
				Category:      "Growth Analytics",
			},
			{
				ID:            "position_level_analysis",
				Name:          "Position Level Analysis",
				Description:   "Distribution of employees by position level",
				QueryTemplate: "What is the distribution of position levels?",
				Category:      "Organizational Structure",
			},
		}
	default:
		return []dto.KPISuggestion{
			{
				ID:            "category_totals",
				Name:          "Totals by Category",
				Description:   "Total record counts across the main categories",
				QueryTemplate: "What is the total count by category?",
				Category:      "Overview",
			},
			{
				ID:            "group_averages",
				Name:          "Averages by Group",
				Description:   "Average values across the main groupings",
				QueryTemplate: "What is the average value by group?",
				Category:      "Overview",
			},
			{
				ID:            "trend_over_time",
				Name:          "Trend Over Time",
				Description:   "How the key metric has changed over time",
				QueryTemplate: "How has the trend changed over time?",
				Category:      "Trends",
			},
			{
				ID:            "top_performers",
				Name:          "Top Performing Categories",
				Description:   "Categories with the highest performance",
				QueryTemplate: "Which categories have the highest performance?",
				Category:      "Rankings",
			},
			{
				ID:            "metric_distribution",
				Name:          "Key Metric Distribution",
				Description:   "Distribution of the key metrics",
				QueryTemplate: "What is the distribution of key metrics?",
				Category:      "Distributions",
			},
		}
	}
}

// FallbackSQL derives a best-effort query from keyword matches on the user's
// question when the LLM cannot produce a usable one.
func FallbackSQL(naturalQuery, sector string) string {
	queryLower := strings.ToLower(naturalQuery)

	switch {
	case strings.Contains(queryLower, "salary") || strings.Contains(queryLower, "department"):
		if strings.Contains(queryLower, "average") || strings.Contains(queryLower, "avg") {
			return "SELECT department, AVG(COALESCE(salary, 0)) AS avg_salary, COUNT(*) AS employee_count " +
				"FROM employees GROUP BY department ORDER BY avg_salary DESC LIMIT 10"
		}
		return "SELECT department, COUNT(*) AS employee_count " +
			"FROM employees GROUP BY department ORDER BY employee_count DESC LIMIT 10"

	case strings.Contains(queryLower, "loan") || strings.Contains(queryLower, "customer"):
		if strings.Contains(queryLower, "amount") {
			return "SELECT loan_status, SUM(COALESCE(loan_amount, 0)) AS total_amount, COUNT(*) AS loan_count " +
				"FROM loans GROUP BY loan_status ORDER BY total_amount DESC"
		}
		return "SELECT customer_type, COUNT(*) AS customer_count " +
			"FROM customers GROUP BY customer_type ORDER BY customer_count DESC"

	default:
		return "SELECT 'No data available' AS message, 0 AS count"
	}
}
