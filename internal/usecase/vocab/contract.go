package vocab

import (
	"context"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

// ItemSource lists a tenant's catalog items.
type ItemSource interface {
	List(ctx context.Context, tenant string) ([]domain.CatalogItem, error)
}

// DocumentTermSource supplies raw terms harvested from tenant documentation
// (product pages, manuals). Optional; terms are normalized and noise-filtered
// by the builder before use.
type DocumentTermSource interface {
	Terms(ctx context.Context, tenant string) ([]string, error)
}
