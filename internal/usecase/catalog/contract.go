package catalog

import (
	"context"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

// ItemStore is the catalog item persistence this service depends on.
type ItemStore interface {
	Put(ctx context.Context, it domain.CatalogItem) error
	Get(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error)
	Delete(ctx context.Context, tenant, itemID string) error
	List(ctx context.Context, tenant string) ([]domain.CatalogItem, error)
	ReserveModel(ctx context.Context, tenant, normModel, itemID string) error
	ReleaseModel(ctx context.Context, tenant, normModel string) error
}

// AliasStore is the alias persistence this service depends on.
type AliasStore interface {
	PutMulti(ctx context.Context, aliases []domain.Alias) error
	Exists(ctx context.Context, a domain.Alias) (bool, error)
	DeleteForItem(ctx context.Context, tenant, itemID string, derivedOnly bool) error
	ListForTenant(ctx context.Context, tenant string) ([]domain.Alias, error)
}

// VocabInvalidator drops a tenant's cached vocabulary after catalog writes.
type VocabInvalidator interface {
	Invalidate(ctx context.Context, tenant string) error
}
