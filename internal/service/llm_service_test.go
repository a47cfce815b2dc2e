package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/service"
)

func geminiStub(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.GeminiRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		resp := service.GeminiResponse{
			Candidates: []service.GeminiCandidate{
				{Content: service.GeminiContent{Parts: []service.GeminiPart{{Text: text}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func llmConfig(baseURL, apiKey string) *config.Config {
	return &config.Config{
		Gemini: config.GeminiConfig{
			APIKey:  apiKey,
			ModelID: "gemini-2.0-flash",
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		},
	}
}

func TestGeminiLLMService_Disabled(t *testing.T) {
	llm, err := service.NewGeminiLLMService(llmConfig("http://localhost:1", ""))
	require.NoError(t, err)

	assert.False(t, llm.Enabled())

	_, err = llm.GenerateSQL(context.Background(), "count employees", "", model.SectorITHR)
	assert.ErrorIs(t, err, service.ErrLLMUnavailable)

	_, err = llm.SuggestKPIs(context.Background(), "", model.SectorITHR)
	assert.ErrorIs(t, err, service.ErrLLMUnavailable)
}

func TestGeminiLLMService_GenerateSQL(t *testing.T) {
	server := geminiStub(t, "```sql\nSELECT department, COUNT(*) FROM employees GROUP BY department\n```")
	defer server.Close()

	llm, err := service.NewGeminiLLMService(llmConfig(server.URL, "test-key"))
	require.NoError(t, err)

	sql, err := llm.GenerateSQL(context.Background(), "employees per department", "Table: employees", model.SectorITHR)
	require.NoError(t, err)
	assert.Equal(t, "SELECT department, COUNT(*) FROM employees GROUP BY department", sql)
}

func TestGeminiLLMService_GenerateSQLRejectsNonAnswer(t *testing.T) {
	server := geminiStub(t, "NONE")
	defer server.Close()

	llm, err := service.NewGeminiLLMService(llmConfig(server.URL, "test-key"))
	require.NoError(t, err)

	_, err = llm.GenerateSQL(context.Background(), "unanswerable", "Table: employees", model.SectorITHR)
	assert.Error(t, err)
}

func TestGeminiLLMService_SuggestKPIs(t *testing.T) {
	payload := `Here are the suggestions:
[
  {"id": "headcount", "name": "Headcount", "description": "Total employees", "query_template": "How many employees are there?", "category": "Workforce"},
  {"id": "", "name": "Broken", "description": "Missing id", "query_template": "x", "category": "y"},
  {"id": "avg_salary", "name": "Average Salary", "description": "Average salary", "query_template": "What is the average salary?", "category": "Compensation"}
]`
	server := geminiStub(t, payload)
	defer server.Close()

	llm, err := service.NewGeminiLLMService(llmConfig(server.URL, "test-key"))
	require.NoError(t, err)

	suggestions, err := llm.SuggestKPIs(context.Background(), "Table: employees", model.SectorITHR)
	require.NoError(t, err)
	// The incomplete entry is dropped.
	require.Len(t, suggestions, 2)
	assert.Equal(t, "headcount", suggestions[0].ID)
	assert.Equal(t, "avg_salary", suggestions[1].ID)
}

func TestGeminiLLMService_SuggestKPIsRejectsNonJSON(t *testing.T) {
	server := geminiStub(t, "I could not find any KPIs worth suggesting.")
	defer server.Close()

	llm, err := service.NewGeminiLLMService(llmConfig(server.URL, "test-key"))
	require.NoError(t, err)

	_, err = llm.SuggestKPIs(context.Background(), "Table: employees", model.SectorITHR)
	assert.Error(t, err)
}

func TestGeminiLLMService_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	llm, err := service.NewGeminiLLMService(llmConfig(server.URL, "test-key"))
	require.NoError(t, err)

	_, err = llm.GenerateSQL(context.Background(), "query", "Table: employees", model.SectorITHR)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFormatSchemaContext(t *testing.T) {
	assert.Equal(t, "No tables available.", service.FormatSchemaContext(nil))
	assert.Equal(t, "No tables available.", service.FormatSchemaContext(&model.Schema{}))

	schema := &model.Schema{
		Tables: map[string]model.TableSummary{
			"employees": {Columns: map[string]model.ColumnSummary{
				"id":   {Type: "integer", Nullable: false},
				"name": {Type: "text", Nullable: true},
			}},
		},
	}
	out := service.FormatSchemaContext(schema)
	assert.Contains(t, out, "Table: employees")
	assert.Contains(t, out, "id: integer (NOT NULL)")
	assert.Contains(t, out, "name: text")
}
