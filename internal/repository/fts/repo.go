// Package fts is the full-text search provider: BM25 over the combined
// normalized title/brand/model column of catalog items.
package fts

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/resolvex/internal/db"
	"github.com/kailas-cloud/resolvex/internal/domain"
)

const searchTextField = "search_text"

// store is the consumer interface for full-text search (ISP).
type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo provides scored full-text lookup of catalog items.
type Repo struct {
	store store
}

// New creates a full-text search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a BM25 query over a tenant's items and normalizes relevance to
// [0,1] by dividing each score by the batch maximum, so the strongest hit
// always scores 1.0. Raw BM25 magnitudes are corpus-dependent and carry no
// meaning across queries; only the within-batch shape does.
func (r *Repo) Search(ctx context.Context, tenant, normQuery string, topK int) ([]domain.TextMatch, error) {
	if strings.TrimSpace(normQuery) == "" {
		return nil, nil
	}

	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName: domain.ItemIndexName,
		TextField: searchTextField,
		Query:     normQuery,
		Filters:   []db.TagFilter{{Field: "tenant", Value: tenant}},
		TopK:      topK,
	})
	if err != nil {
		return nil, fmt.Errorf("fts search for %s: %w", tenant, err)
	}
	if len(sr.Entries) == 0 {
		return nil, nil
	}

	maxScore := 0.0
	for _, e := range sr.Entries {
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}
	if maxScore <= 0 {
		return nil, nil
	}

	prefix := domain.KeyPrefix + "item:" + tenant + ":"
	out := make([]domain.TextMatch, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, domain.TextMatch{
			ItemID: strings.TrimPrefix(e.Key, prefix),
			Score:  e.Score / maxScore,
		})
	}
	return out, nil
}
