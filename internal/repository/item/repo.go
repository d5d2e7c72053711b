// Package item persists catalog items as Redis hashes behind an FT index.
// Normalized columns arrive pre-computed on the domain object; this package
// never re-derives them.
package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/resolvex/internal/db"
	"github.com/kailas-cloud/resolvex/internal/domain"
)

// maxTenantItems caps a tenant listing. Product catalogs are small; a tenant
// approaching this bound needs pagination at the caller.
const maxTenantItems = 1000

// store is the consumer interface for item persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo provides catalog item storage.
type Repo struct {
	store store
}

// New creates an item repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the item FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     domain.ItemIndexName,
		Prefixes: []string{domain.KeyPrefix + "item:"},
		Fields: []db.IndexField{
			{Name: fieldTenant, Type: db.IndexFieldTag},
			{Name: fieldNormModel, Type: db.IndexFieldTag},
			{Name: fieldSearchText, Type: db.IndexFieldText},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create item index: %w", err)
	}
	return nil
}

// Put writes an item hash, including its derived search_text column.
func (r *Repo) Put(ctx context.Context, it domain.CatalogItem) error {
	key := domain.ItemKey(it.Tenant(), it.ID())
	if err := r.store.HSet(ctx, key, itemToHash(it)); err != nil {
		return fmt.Errorf("put item %s: %w", it.ID(), err)
	}
	return nil
}

// Get fetches one item. Returns domain.ErrItemNotFound for a missing key.
func (r *Repo) Get(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
	m, err := r.store.HGetAll(ctx, domain.ItemKey(tenant, itemID))
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("get item %s: %w", itemID, err)
	}
	if len(m) == 0 {
		return domain.CatalogItem{}, domain.ErrItemNotFound
	}
	return itemFromHash(m), nil
}

// GetMulti fetches items by id in one round-trip, skipping missing ones.
// Order follows the input ids.
func (r *Repo) GetMulti(ctx context.Context, tenant string, itemIDs []string) ([]domain.CatalogItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = domain.ItemKey(tenant, id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		items = append(items, itemFromHash(m))
	}
	return items, nil
}

// Delete removes an item hash.
func (r *Repo) Delete(ctx context.Context, tenant, itemID string) error {
	if err := r.store.Del(ctx, domain.ItemKey(tenant, itemID)); err != nil {
		return fmt.Errorf("delete item %s: %w", itemID, err)
	}
	return nil
}

// List returns a tenant's items via the FT index.
func (r *Repo) List(ctx context.Context, tenant string) ([]domain.CatalogItem, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldTenant, db.EscapeTag(tenant))
	sr, err := r.store.SearchList(ctx, domain.ItemIndexName, query, 0, maxTenantItems, itemReturnFields)
	if err != nil {
		return nil, fmt.Errorf("list items for %s: %w", tenant, err)
	}

	items := make([]domain.CatalogItem, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		items = append(items, itemFromHash(e.Fields))
	}
	return items, nil
}

// ReserveModel claims the (tenant, normalized model) slot for an item.
// Returns domain.ErrModelTaken when another item already holds it; claiming a
// slot the same item already holds is a no-op.
func (r *Repo) ReserveModel(ctx context.Context, tenant, normModel, itemID string) error {
	key := domain.ModelKey(tenant, normModel)

	applied, err := r.store.SetNX(ctx, key, []byte(itemID))
	if err != nil {
		return fmt.Errorf("reserve model %q: %w", normModel, err)
	}
	if applied {
		return nil
	}

	owner, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read model reservation %q: %w", normModel, err)
	}
	if string(owner) != itemID {
		return fmt.Errorf("%w: %q held by item %s", domain.ErrModelTaken, normModel, owner)
	}
	return nil
}

// ReleaseModel frees a (tenant, normalized model) reservation.
func (r *Repo) ReleaseModel(ctx context.Context, tenant, normModel string) error {
	if normModel == "" {
		return nil
	}
	if err := r.store.Del(ctx, domain.ModelKey(tenant, normModel)); err != nil {
		return fmt.Errorf("release model %q: %w", normModel, err)
	}
	return nil
}
