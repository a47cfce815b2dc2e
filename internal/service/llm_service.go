package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
)

var ErrLLMUnavailable = errors.New("LLM service is not configured")

type GeminiPart struct {
	Text string `json:"text"`
}
type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}
type GeminiRequestBody struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// LLMService turns natural language into SQL and KPI suggestions.
type LLMService interface {
	Enabled() bool
	GenerateSQL(ctx context.Context, naturalQuery, schemaContext, sector string) (string, error)
	SuggestKPIs(ctx context.Context, schemaContext, sector string) ([]dto.KPISuggestion, error)
}

type geminiLLMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	modelID    string
}

func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY not set, LLM features run in fallback mode")
	}
	return &geminiLLMService{
		apiKey:  cfg.Gemini.APIKey,
		baseURL: cfg.Gemini.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Gemini.Timeout,
		},
		modelID: cfg.Gemini.ModelID,
	}, nil
}

func (s *geminiLLMService) Enabled() bool {
	return s.apiKey != ""
}

func (s *geminiLLMService) GenerateSQL(ctx context.Context, naturalQuery, schemaContext, sector string) (string, error) {
	if !s.Enabled() {
		return "", ErrLLMUnavailable
	}
	log.Info().Str("query", naturalQuery).Str("sector", sector).Msg("Gemini LLM Service: Generating SQL")

	prompt := buildSQLPrompt(naturalQuery, schemaContext, sector)
	generatedText, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	sqlQuery := stripMarkdownFences(generatedText)
	if sqlQuery == "" || isNonAnswer(sqlQuery) {
		log.Warn().Str("raw_text", generatedText).Msg("Gemini returned an empty or invalid SQL response")
		return "", errors.New("empty SQL response from LLM")
	}

	log.Debug().Str("sql", sqlQuery).Msg("Gemini LLM Service: Generated SQL")
	return sqlQuery, nil
}

func (s *geminiLLMService) SuggestKPIs(ctx context.Context, schemaContext, sector string) ([]dto.KPISuggestion, error) {
	if !s.Enabled() {
		return nil, ErrLLMUnavailable
	}
	log.Info().Str("sector", sector).Msg("Gemini LLM Service: Generating KPI suggestions")

	prompt := buildKPIPrompt(schemaContext, sector)
	generatedText, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleanedJSON := extractJSONArray(generatedText)
	if cleanedJSON == "" {
		log.Warn().Str("raw_text", generatedText).Msg("Failed to extract valid JSON array from Gemini response")
		return nil, errors.New("LLM did not return valid JSON in its response")
	}

	var items []dto.KPISuggestion
	if err := json.Unmarshal([]byte(cleanedJSON), &items); err != nil {
		log.Error().Err(err).Str("cleaned_json", cleanedJSON).Msg("Failed to unmarshal KPI suggestions from Gemini response")
		return nil, fmt.Errorf("failed to parse KPI suggestions from LLM: %w", err)
	}

	suggestions := make([]dto.KPISuggestion, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Name == "" || item.Description == "" || item.QueryTemplate == "" || item.Category == "" {
			log.Warn().Interface("item", item).Msg("Dropping incomplete KPI suggestion from LLM")
			continue
		}
		suggestions = append(suggestions, item)
		if len(suggestions) == kpiSuggestionCount {
			break
		}
	}
	return suggestions, nil
}

// generate sends one prompt and returns the first candidate's text. Transient
// API failures are retried with exponential backoff.
func (s *geminiLLMService) generate(ctx context.Context, prompt string) (string, error) {
	requestBody := GeminiRequestBody{Contents: []GeminiContent{
		{Role: "user", Parts: []GeminiPart{{Text: prompt}}},
	}}
	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal Gemini request body")
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	var respBodyBytes []byte
	operation := func() error {
		respBodyBytes, err = s.callGeminiAPI(ctx, bodyBytes)
		return err
	}
	callBackoff := backoff.NewExponentialBackOff()
	callBackoff.InitialInterval = 1 * time.Second
	callBackoff.MaxInterval = 10 * time.Second
	callBackoff.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, callBackoff); err != nil {
		return "", err
	}
	log.Debug().Bytes("raw_response", respBodyBytes).Msg("Gemini LLM Service: Received raw response")

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBodyBytes, &geminiResp); err != nil {
		log.Error().Err(err).Bytes("response_body", respBodyBytes).Msg("Failed to unmarshal Gemini API response")
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		log.Error().Interface("gemini_response", geminiResp).Msg("Gemini response has no candidates or parts")
		return "", errors.New("received empty or invalid response structure from Gemini")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func (s *geminiLLMService) callGeminiAPI(ctx context.Context, bodyBytes []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.modelID, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini HTTP request")
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Gemini HTTP request failed")
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read Gemini response body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status_code", resp.StatusCode).Bytes("response_body", respBodyBytes).Msg("Gemini API returned non-OK status")
		err := fmt.Errorf("gemini API error: status code %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return respBodyBytes, nil
}

// stripMarkdownFences removes ```sql fences the model sometimes wraps output in.
func stripMarkdownFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```sql", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func isNonAnswer(s string) bool {
	switch strings.ToLower(s) {
	case "none", "null", "empty":
		return true
	}
	return false
}

// extractJSONArray pulls the outermost JSON array out of free-form LLM text.
func extractJSONArray(raw string) string {
	startIndex := strings.Index(raw, "[")
	if startIndex == -1 {
		return ""
	}
	endIndex := strings.LastIndex(raw, "]")
	if endIndex == -1 || endIndex < startIndex {
		return ""
	}

	potentialJSON := raw[startIndex : endIndex+1]

	var js []interface{}
	if json.Unmarshal([]byte(potentialJSON), &js) == nil {
		return potentialJSON
	}

	log.Warn().Str("potential_json", potentialJSON).Msg("Could not validate potential JSON extracted from LLM response")
	return ""
}

// FormatSchemaContext renders the schema the way the prompts expect it.
func FormatSchemaContext(schema *model.Schema) string {
	if schema == nil || len(schema.Tables) == 0 {
		return "No tables available."
	}

	tableNames := make([]string, 0, len(schema.Tables))
	for name := range schema.Tables {
		tableNames = append(tableNames, name)
	}
	sort.Strings(tableNames)

	var b strings.Builder
	for _, tableName := range tableNames {
		fmt.Fprintf(&b, "Table: %s\n", tableName)
		table := schema.Tables[tableName]
		columnNames := make([]string, 0, len(table.Columns))
		for name := range table.Columns {
			columnNames = append(columnNames, name)
		}
		sort.Strings(columnNames)
		for _, columnName := range columnNames {
			column := table.Columns[columnName]
			fmt.Fprintf(&b, "  - %s: %s", columnName, column.Type)
			if !column.Nullable {
				b.WriteString(" (NOT NULL)")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func buildSQLPrompt(naturalQuery, schemaContext, sector string) string {
	return fmt.Sprintf(`You are an expert SQL query generator for a %s sector database.

Generate safe, efficient SQL queries based on natural language requests.

Rules:
1. ONLY generate SELECT statements
2. Use proper PostgreSQL syntax
3. Include COALESCE for null handling: COALESCE(column, 0) or COALESCE(column, 'Unknown')
4. Use NULLIF to prevent division by zero: NULLIF(denominator, 0)
5. Add appropriate GROUP BY, ORDER BY, and LIMIT clauses
6. Return only the SQL query, no explanation
7. Ensure all aggregations are safe and handle null values

Database Schema:
%s

Natural Language Query: "%s"

Respond with only the SQL query, no markdown formatting.`, sector, schemaContext, naturalQuery)
}

func buildKPIPrompt(schemaContext, sector string) string {
	return fmt.Sprintf(`You are an expert data analyst who generates KPI suggestions for %s businesses.

Analyze the database schema and suggest exactly 5 relevant KPIs.

Rules:
1. Generate exactly 5 KPI suggestions
2. Focus on measurable business metrics
3. Consider totals, counts, averages, trends, and ratios
4. Make suggestions specific to available data
5. Include natural language query templates

Database Schema:
%s

Respond *ONLY* with a JSON array in this exact format, without any introductory text or markdown formatting:
[
  {
    "id": "unique_kpi_id",
    "name": "Human-readable KPI Name",
    "description": "What this KPI measures and why it's useful",
    "query_template": "Natural language question a user would ask",
    "category": "Category name"
  }
]`, sector, schemaContext)
}
