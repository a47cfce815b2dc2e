package dto

type KPIQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// ChartData is a chart-ready projection of the result set.
type ChartData struct {
	Type   string                   `json:"type"` // "bar", "line", "pie"
	Data   []map[string]interface{} `json:"data"`
	XAxis  string                   `json:"xAxis"`
	YAxis  string                   `json:"yAxis"`
	Format string                   `json:"format,omitempty"` // "currency" when the y-axis looks like money
}

// QueryResults bundles the table and chart views of one executed query.
type QueryResults struct {
	TableData     []map[string]interface{} `json:"table_data"`
	ChartData     ChartData                `json:"chart_data"`
	Columns       []string                 `json:"columns"`
	RowCount      int                      `json:"row_count"`
	ExecutionTime float64                  `json:"execution_time"` // seconds
	Error         string                   `json:"error,omitempty"`
}

type KPIQueryResponse struct {
	Query         string       `json:"query"`
	SQLQuery      string       `json:"sql_query"`
	Results       QueryResults `json:"results"`
	ExecutionTime float64      `json:"execution_time"`
}
