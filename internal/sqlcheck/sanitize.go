// Package sqlcheck gates LLM-generated SQL before it reaches a user database.
package sqlcheck

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNotSelect          = errors.New("only SELECT queries are allowed for security reasons")
	ErrMultipleStatements = errors.New("multiple SQL statements are not allowed")
	ErrForbiddenKeyword   = errors.New("query contains a forbidden keyword")
	ErrEmptyQuery         = errors.New("empty SQL query")
)

var (
	fenceRe      = regexp.MustCompile("(?i)^```(?:sql)?\\s*|\\s*```$")
	whitespaceRe = regexp.MustCompile(`\s+`)
	wordRe       = regexp.MustCompile(`[A-Za-z_]+`)
)

// Keywords that must never appear in a generated query, even inside
// subexpressions. WITH ... INSERT and procedure calls hide behind these.
var forbiddenKeywords = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"DROP":     true,
	"CREATE":   true,
	"ALTER":    true,
	"TRUNCATE": true,
	"EXEC":     true,
	"EXECUTE":  true,
	"GRANT":    true,
	"REVOKE":   true,
	"COPY":     true,
}

// Sanitize strips markdown fences and collapses whitespace, then enforces the
// single-statement SELECT-only policy. It returns the cleaned query.
func Sanitize(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") || strings.HasSuffix(cleaned, "```") {
		cleaned = fenceRe.ReplaceAllString(cleaned, "")
	}
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, ";")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", ErrEmptyQuery
	}
	if strings.Contains(cleaned, ";") {
		return "", ErrMultipleStatements
	}
	upper := strings.ToUpper(cleaned)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", ErrNotSelect
	}
	for _, word := range wordRe.FindAllString(upper, -1) {
		if forbiddenKeywords[word] {
			return "", ErrForbiddenKeyword
		}
	}
	return cleaned, nil
}

// IsSafe reports whether a query would pass Sanitize unchanged in policy.
func IsSafe(raw string) bool {
	_, err := Sanitize(raw)
	return err == nil
}
