package db

import "strings"

// EscapeTag escapes a value for inline use inside an @field:{...} TAG clause.
// Identifiers in this engine only ever contain [a-zA-Z0-9_-], so the hyphen is
// the one character needing an escape.
func EscapeTag(s string) string {
	return strings.ReplaceAll(s, "-", "\\-")
}

// TagFilter restricts a search to documents whose TAG field equals the value.
type TagFilter struct {
	Field string
	Value string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName    string
	TextField    string // TEXT field the query terms are matched against
	Query        string
	Filters      []TagFilter
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
