package domain

// AliasMatch is one scored hit from the alias-lookup provider.
type AliasMatch struct {
	ItemID string
	Kind   AliasKind
	Norm   string
	Score  float64 // [0,1], 1.0 for an exact normalized match
}

// TextMatch is one scored hit from the full-text search provider.
type TextMatch struct {
	ItemID string
	Score  float64 // [0,1], normalized relevance
}
