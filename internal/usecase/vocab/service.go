// Package vocab builds the per-tenant in-domain vocabulary: the set of
// normalized terms that marks a query as being about this catalog at all.
// It is consumed upstream of disambiguation as a scope gate.
package vocab

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/resolvex/internal/normalize"
)

// maxTerms bounds a tenant vocabulary so one noisy document cannot flood it.
const maxTerms = 2000

// dateLike matches numeric date shapes that survive normalization
// (2024-01-02, 01.02.2024, 1/2/24).
var dateLike = regexp.MustCompile(`^\d{1,4}([./-]\d{1,2}){1,2}([./-]\d{1,4})?$`)

// Service derives vocabularies from catalog and document content.
type Service struct {
	items ItemSource
	docs  DocumentTermSource // may be nil
}

// New creates a vocabulary builder. docs may be nil.
func New(items ItemSource, docs DocumentTermSource) *Service {
	return &Service{items: items, docs: docs}
}

// Build derives the tenant's term set: tokens of every item's normalized
// title, brand, model, and description, plus document terms, minus noise.
// The result is sorted and de-duplicated.
func (s *Service) Build(ctx context.Context, tenant string) ([]string, error) {
	items, err := s.items.List(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	seen := make(map[string]struct{})

	for _, it := range items {
		collectTokens(seen, it.NormTitle())
		collectTokens(seen, it.NormBrand())
		collectTokens(seen, it.NormModel())
		collectTokens(seen, normalize.Normalize(it.Description()))
	}

	if s.docs != nil {
		terms, err := s.docs.Terms(ctx, tenant)
		if err != nil {
			return nil, fmt.Errorf("document terms: %w", err)
		}
		for _, t := range terms {
			collectTokens(seen, normalize.Normalize(t))
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)

	if len(out) > maxTerms {
		out = out[:maxTerms]
	}
	return out, nil
}

// Contains reports whether any token of the normalized query is in-domain
// for the given term set. This is the scope gate consumed upstream.
func Contains(terms []string, normQuery string) bool {
	if len(terms) == 0 || normQuery == "" {
		return false
	}
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	for _, tok := range strings.Fields(normQuery) {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}

func collectTokens(seen map[string]struct{}, normText string) {
	for _, tok := range strings.Fields(normText) {
		if isNoise(tok) {
			continue
		}
		seen[tok] = struct{}{}
	}
}

// isNoise drops tokens that would make every query look in-domain: function
// words, commercial filler, bare numbers, and date shapes.
func isNoise(tok string) bool {
	if len(tok) < 2 {
		return true
	}
	if _, ok := stopwords[tok]; ok {
		return true
	}
	if isAllDigits(tok) {
		return true
	}
	if dateLike.MatchString(tok) {
		return true
	}
	return false
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
