package domain

// Passage is a retrieved text excerpt of unknown product attribution
// (ephemeral, externally supplied). The post-filter only reads it.
type Passage struct {
	Content string
	Source  string
}

// FilterMethod tags which stage of the passage filter produced the kept set.
type FilterMethod string

// Filter method constants.
const (
	// FilterBrandModel means passages were matched on brand+model together,
	// or on brand alone when the winner has no model (primary path either way).
	FilterBrandModel FilterMethod = "brand_model"
	// FilterModelOnly means passages were matched on the model code alone.
	FilterModelOnly FilterMethod = "model_only"
	// FilterNone means no passage survived any stage: the caller must refuse
	// to answer rather than fall back to the unfiltered set.
	FilterNone FilterMethod = "none"
)

// FilterResult is the outcome of one passage post-filter call. Kept is always
// a subset of the input, in input order.
type FilterResult struct {
	Kept         []Passage
	Method       FilterMethod
	UsedFallback bool
}

// Refused reports whether the filter exhausted every stage. An exhausted
// filter is a hard signal to refuse the answer, not an error.
func (r *FilterResult) Refused() bool {
	return r.Method == FilterNone
}
