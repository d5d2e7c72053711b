package resolve

import (
	"context"
	"testing"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

type fakeAliasLookup struct {
	lookupFunc func(ctx context.Context, tenant, normQuery string) ([]domain.AliasMatch, error)
}

func (f *fakeAliasLookup) Lookup(ctx context.Context, tenant, normQuery string) ([]domain.AliasMatch, error) {
	return f.lookupFunc(ctx, tenant, normQuery)
}

type fakeTextSearch struct {
	searchFunc func(ctx context.Context, tenant, normQuery string, topK int) ([]domain.TextMatch, error)
}

func (f *fakeTextSearch) Search(ctx context.Context, tenant, normQuery string, topK int) ([]domain.TextMatch, error) {
	return f.searchFunc(ctx, tenant, normQuery, topK)
}

type fakeItemReader struct {
	getMultiFunc func(ctx context.Context, tenant string, itemIDs []string) ([]domain.CatalogItem, error)
}

func (f *fakeItemReader) GetMulti(ctx context.Context, tenant string, itemIDs []string) ([]domain.CatalogItem, error) {
	return f.getMultiFunc(ctx, tenant, itemIDs)
}

type recordingSink struct {
	records []domain.ResolutionRecord
}

func (r *recordingSink) EmitResolution(rec domain.ResolutionRecord) {
	r.records = append(r.records, rec)
}

func aliasMatches(ms ...domain.AliasMatch) *fakeAliasLookup {
	return &fakeAliasLookup{lookupFunc: func(ctx context.Context, tenant, normQuery string) ([]domain.AliasMatch, error) {
		return ms, nil
	}}
}

func textMatches(ms ...domain.TextMatch) *fakeTextSearch {
	return &fakeTextSearch{searchFunc: func(ctx context.Context, tenant, normQuery string, topK int) ([]domain.TextMatch, error) {
		return ms, nil
	}}
}

// itemsByID hydrates any requested id as a catalog item titled after the id.
func itemsByID(t *testing.T) *fakeItemReader {
	t.Helper()
	return &fakeItemReader{getMultiFunc: func(ctx context.Context, tenant string, ids []string) ([]domain.CatalogItem, error) {
		out := make([]domain.CatalogItem, len(ids))
		for i, id := range ids {
			item, err := domain.NewCatalogItem(id, tenant, "Item "+id, "", "", "", "")
			if err != nil {
				t.Fatalf("NewCatalogItem(%q): %v", id, err)
			}
			out[i] = item
		}
		return out, nil
	}}
}
