package domain

// CandidateScore is the per-candidate score breakdown kept for telemetry.
type CandidateScore struct {
	ItemID     string  `json:"item_id"`
	AliasScore float64 `json:"alias_score"`
	FTSScore   float64 `json:"fts_score"`
	TotalScore float64 `json:"total_score"`
}

// ResolutionRecord is the append-only telemetry record of one resolution call.
// Emission is fire-and-forget; the record never influences the outcome.
type ResolutionRecord struct {
	Tenant    string           `json:"tenant"`
	Query     string           `json:"query"`
	NormQuery string           `json:"norm_query"`
	Decision  Decision         `json:"decision"`
	Top       []CandidateScore `json:"top"` // at most three, ranked
	At        int64            `json:"at"`  // unix millis
}

// FilterRecord is the telemetry record of one passage post-filter call.
type FilterRecord struct {
	Tenant       string       `json:"tenant"`
	ItemID       string       `json:"item_id"`
	Method       FilterMethod `json:"method"`
	UsedFallback bool         `json:"used_fallback"`
	Kept         int          `json:"kept"`
	Total        int          `json:"total"`
	At           int64        `json:"at"` // unix millis
}
