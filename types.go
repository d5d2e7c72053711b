package resolvex

import (
	"github.com/kailas-cloud/resolvex/internal/domain"
	healthuc "github.com/kailas-cloud/resolvex/internal/usecase/health"
)

// Decision classifies a resolution outcome.
type Decision string

// Decision values.
const (
	Single   Decision = "single"
	Multiple Decision = "multiple"
	None     Decision = "none"
)

// Item is a catalog item as seen by SDK callers.
type Item struct {
	ID          string
	Title       string
	Brand       string
	Model       string
	URL         string
	Description string
	NormTitle   string
	NormBrand   string
	NormModel   string
	CreatedAt   int64
	UpdatedAt   int64
}

// ItemInput is the raw form of an item for upserts. ID is optional; leaving
// it empty creates a new item with a generated id.
type ItemInput struct {
	ID          string
	Title       string
	Brand       string
	Model       string
	URL         string
	Description string
}

// Candidate is a scored resolution candidate.
type Candidate struct {
	Item       Item
	AliasScore float64
	FTSScore   float64
	TotalScore float64
}

// Outcome is the result of resolving a query.
type Outcome struct {
	Decision    Decision
	Winner      *Candidate // set only for Single
	RunnerUpGap float64    // set only for Single
	Candidates  []Candidate
}

// Passage is a retrieved snippet of tenant documentation.
type Passage struct {
	Content string
	Source  string
}

// FilterMethod tags which check produced the kept passages.
type FilterMethod string

// FilterMethod values.
const (
	FilterBrandModel FilterMethod = "brand_model"
	FilterModelOnly  FilterMethod = "model_only"
	FilterNone       FilterMethod = "none"
)

// FilterResult is the outcome of passage post-filtering. Refused means no
// passage survived any stage and the answer must be refused rather than
// built from unverified content.
type FilterResult struct {
	Kept         []Passage
	Method       FilterMethod
	UsedFallback bool
	Refused      bool
}

// Alias maps an alternative normalized name to an item.
type Alias struct {
	ItemID string
	Kind   string
	Raw    string
	Norm   string
}

// HealthReport aggregates connectivity and index checks. Status is "ok",
// "degraded" (an index is missing on a live database) or "error".
type HealthReport struct {
	Status string
	Checks map[string]string
}

// Thresholds holds resolver scoring weights and decision cut-offs. Zero
// fields fall back to the tuned defaults.
type Thresholds struct {
	AliasWeight      float64
	FTSWeight        float64
	SingleMinScore   float64
	SingleMinGap     float64
	MultipleMinScore float64
	TopK             int
}

// --- Converters ---

func itemFromDomain(it domain.CatalogItem) Item {
	return Item{
		ID:          it.ID(),
		Title:       it.Title(),
		Brand:       it.Brand(),
		Model:       it.Model(),
		URL:         it.URL(),
		Description: it.Description(),
		NormTitle:   it.NormTitle(),
		NormBrand:   it.NormBrand(),
		NormModel:   it.NormModel(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func candidateFromDomain(c domain.Candidate) Candidate {
	return Candidate{
		Item:       itemFromDomain(c.Item),
		AliasScore: c.AliasScore,
		FTSScore:   c.FTSScore,
		TotalScore: c.TotalScore,
	}
}

func outcomeFromDomain(out domain.Outcome) Outcome {
	o := Outcome{Decision: Decision(out.Decision)}
	if out.Winner != nil {
		w := candidateFromDomain(*out.Winner)
		o.Winner = &w
		o.RunnerUpGap = out.RunnerUpGap
	}
	if len(out.Candidates) > 0 {
		o.Candidates = make([]Candidate, len(out.Candidates))
		for i, c := range out.Candidates {
			o.Candidates[i] = candidateFromDomain(c)
		}
	}
	return o
}

func aliasFromDomain(a domain.Alias) Alias {
	return Alias{
		ItemID: a.ItemID(),
		Kind:   string(a.Kind()),
		Raw:    a.Raw(),
		Norm:   a.Norm(),
	}
}

func filterResultFromDomain(res domain.FilterResult) FilterResult {
	kept := make([]Passage, len(res.Kept))
	for i, p := range res.Kept {
		kept[i] = Passage{Content: p.Content, Source: p.Source}
	}
	return FilterResult{
		Kept:         kept,
		Method:       FilterMethod(res.Method),
		UsedFallback: res.UsedFallback,
		Refused:      res.Refused(),
	}
}

func healthReportFromDomain(rep healthuc.Report) HealthReport {
	checks := make(map[string]string, len(rep.Checks))
	for name, result := range rep.Checks {
		checks[name] = string(result)
	}
	return HealthReport{Status: string(rep.Status), Checks: checks}
}

func passagesToDomain(passages []Passage) []domain.Passage {
	out := make([]domain.Passage, len(passages))
	for i, p := range passages {
		out[i] = domain.Passage{Content: p.Content, Source: p.Source}
	}
	return out
}
