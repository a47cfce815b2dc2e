package dto

// KPISuggestion is a natural-language query template surfaced to the user.
type KPISuggestion struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QueryTemplate string `json:"query_template"`
	Category      string `json:"category"`
}
