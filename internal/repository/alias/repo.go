// Package alias persists alias variants and serves as the scored
// alias-lookup provider for the resolver.
package alias

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/resolvex/internal/db"
	"github.com/kailas-cloud/resolvex/internal/domain"
	"github.com/kailas-cloud/resolvex/internal/normalize"
)

// maxTenantAliases caps an alias listing per tenant.
const maxTenantAliases = 4000

// Alias match quality tiers. An exact normalized match is full identification;
// containment in either direction is graded below it. The tiers keep a
// model-only hit inside a longer query ("g3" in "g3 vekt") strong enough to
// win alone, while a query that only covers part of an alias stays in the
// ambiguity band.
const (
	scoreExact        = 1.0
	scoreAliasInQuery = 0.85
	scoreQueryInAlias = 0.7
)

const (
	fieldTenant = "tenant"
	fieldItemID = "item_id"
	fieldKind   = "kind"
	fieldRaw    = "raw"
	fieldNorm   = "norm"
)

var aliasReturnFields = []string{fieldTenant, fieldItemID, fieldKind, fieldRaw, fieldNorm}

// store is the consumer interface for alias persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo provides alias storage and scored lookup.
type Repo struct {
	store store
}

// New creates an alias repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the alias FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     domain.AliasIndexName,
		Prefixes: []string{domain.KeyPrefix + "alias:"},
		Fields: []db.IndexField{
			{Name: fieldTenant, Type: db.IndexFieldTag},
			{Name: fieldItemID, Type: db.IndexFieldTag},
			{Name: fieldKind, Type: db.IndexFieldTag},
			{Name: fieldNorm, Type: db.IndexFieldTag},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create alias index: %w", err)
	}
	return nil
}

// PutMulti stores aliases in one round-trip. Keys embed a digest of the
// normalized form, so re-deriving identical aliases is an idempotent overwrite.
func (r *Repo) PutMulti(ctx context.Context, aliases []domain.Alias) error {
	if len(aliases) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(aliases))
	for i, a := range aliases {
		items[i] = db.HashSetItem{
			Key: domain.AliasKey(a.Tenant(), a.ItemID(), a.Kind(), a.Norm()),
			Fields: map[string]string{
				fieldTenant: a.Tenant(),
				fieldItemID: a.ItemID(),
				fieldKind:   string(a.Kind()),
				fieldRaw:    a.Raw(),
				fieldNorm:   a.Norm(),
			},
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put aliases: %w", err)
	}
	return nil
}

// Exists reports whether an alias with this normalized form is already stored
// for (item, kind).
func (r *Repo) Exists(ctx context.Context, a domain.Alias) (bool, error) {
	ok, err := r.store.Exists(ctx, domain.AliasKey(a.Tenant(), a.ItemID(), a.Kind(), a.Norm()))
	if err != nil {
		return false, fmt.Errorf("check alias: %w", err)
	}
	return ok, nil
}

// DeleteForItem cascades alias removal when an item is deleted. When
// derivedOnly is set, curated manual aliases survive (used on item rewrites).
func (r *Repo) DeleteForItem(ctx context.Context, tenant, itemID string, derivedOnly bool) error {
	pattern := domain.KeyPrefix + "alias:" + tenant + ":" + itemID + ":*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scan aliases for %s: %w", itemID, err)
	}

	if derivedOnly {
		kept := keys[:0]
		manualSegment := ":" + string(domain.AliasManual) + ":"
		for _, k := range keys {
			if !strings.Contains(k, manualSegment) {
				kept = append(kept, k)
			}
		}
		keys = kept
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete aliases for %s: %w", itemID, err)
	}
	return nil
}

// ListForTenant returns every alias of a tenant via the FT index.
func (r *Repo) ListForTenant(ctx context.Context, tenant string) ([]domain.Alias, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldTenant, db.EscapeTag(tenant))
	sr, err := r.store.SearchList(ctx, domain.AliasIndexName, query, 0, maxTenantAliases, aliasReturnFields)
	if err != nil {
		return nil, fmt.Errorf("list aliases for %s: %w", tenant, err)
	}

	out := make([]domain.Alias, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, domain.ReconstructAlias(
			e.Fields[fieldTenant],
			e.Fields[fieldItemID],
			domain.AliasKind(e.Fields[fieldKind]),
			e.Fields[fieldRaw],
			e.Fields[fieldNorm],
		))
	}
	return out, nil
}

// Lookup grades a tenant's aliases against a normalized query and returns the
// best score per item. Exact match scores 1.0; whole-token containment in
// either direction is graded below it. Zero-scored aliases are dropped.
func (r *Repo) Lookup(ctx context.Context, tenant, normQuery string) ([]domain.AliasMatch, error) {
	aliases, err := r.ListForTenant(ctx, tenant)
	if err != nil {
		return nil, err
	}

	best := make(map[string]domain.AliasMatch)
	for _, a := range aliases {
		score := gradeAlias(normQuery, a.Norm())
		if score <= 0 {
			continue
		}
		if cur, ok := best[a.ItemID()]; !ok || score > cur.Score {
			best[a.ItemID()] = domain.AliasMatch{
				ItemID: a.ItemID(),
				Kind:   a.Kind(),
				Norm:   a.Norm(),
				Score:  score,
			}
		}
	}

	out := make([]domain.AliasMatch, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	return out, nil
}

// gradeAlias scores one normalized alias against a normalized query.
func gradeAlias(query, alias string) float64 {
	if query == "" || alias == "" {
		return 0
	}
	if query == alias {
		return scoreExact
	}
	if normalize.ContainsToken(query, alias) {
		return scoreAliasInQuery
	}
	if normalize.ContainsToken(alias, query) {
		return scoreQueryInAlias
	}
	return 0
}
