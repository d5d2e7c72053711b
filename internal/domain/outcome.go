package domain

// Decision classifies a resolution outcome.
type Decision string

// Decision constants.
const (
	// DecisionSingle means exactly one item is a confident winner.
	DecisionSingle Decision = "single"
	// DecisionMultiple means several items are plausible and the caller
	// should ask for clarification rather than guess.
	DecisionMultiple Decision = "multiple"
	// DecisionNone means no item could be safely identified.
	DecisionNone Decision = "none"
)

// Candidate is an item scored against one query (ephemeral, never persisted).
// TotalScore combines alias confidence and full-text relevance; both
// contributions are kept so telemetry can show where a score came from.
type Candidate struct {
	Item       CatalogItem
	AliasScore float64 // [0,1], exact alias identification confidence
	FTSScore   float64 // [0,1], full-text relevance normalized per batch
	TotalScore float64
}

// Outcome is the tagged result of one resolution call.
//
// Single: Winner and RunnerUpGap are set, Candidates holds the full ranking.
// Multiple: Candidates holds up to three ranked plausible items.
// None: both are empty.
type Outcome struct {
	Decision    Decision
	Winner      *Candidate
	RunnerUpGap float64
	Candidates  []Candidate
}

// SingleOutcome builds a single-winner outcome.
func SingleOutcome(ranked []Candidate, gap float64) Outcome {
	return Outcome{
		Decision:    DecisionSingle,
		Winner:      &ranked[0],
		RunnerUpGap: gap,
		Candidates:  ranked,
	}
}

// MultipleOutcome builds an ambiguous outcome from ranked candidates (≤3 kept).
func MultipleOutcome(ranked []Candidate) Outcome {
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return Outcome{Decision: DecisionMultiple, Candidates: ranked}
}

// NoneOutcome builds the no-resolution outcome. Inability to resolve is always
// safe; a wrong resolution is not.
func NoneOutcome() Outcome {
	return Outcome{Decision: DecisionNone}
}
