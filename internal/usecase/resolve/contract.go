package resolve

import (
	"context"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

// AliasLookup is the scored alias-match provider.
type AliasLookup interface {
	Lookup(ctx context.Context, tenant, normQuery string) ([]domain.AliasMatch, error)
}

// TextSearch is the scored full-text provider over item titles/brand/model.
type TextSearch interface {
	Search(ctx context.Context, tenant, normQuery string, topK int) ([]domain.TextMatch, error)
}

// ItemReader hydrates candidate items after the merge.
type ItemReader interface {
	GetMulti(ctx context.Context, tenant string, itemIDs []string) ([]domain.CatalogItem, error)
}

// TelemetrySink accepts fire-and-forget resolution records. Implementations
// must return immediately and never fail the caller.
type TelemetrySink interface {
	EmitResolution(rec domain.ResolutionRecord)
}
