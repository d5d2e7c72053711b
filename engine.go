// Package resolvex disambiguates free-text queries against a product catalog
// with near-duplicate items and post-filters retrieved passages so answers
// are only ever built from content about the resolved item.
package resolvex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resolvex/internal/db"
	dbRedis "github.com/kailas-cloud/resolvex/internal/db/redis"
	"github.com/kailas-cloud/resolvex/internal/domain"
	"github.com/kailas-cloud/resolvex/internal/normalize"
	aliasrepo "github.com/kailas-cloud/resolvex/internal/repository/alias"
	ftsrepo "github.com/kailas-cloud/resolvex/internal/repository/fts"
	itemrepo "github.com/kailas-cloud/resolvex/internal/repository/item"
	"github.com/kailas-cloud/resolvex/internal/repository/vocabcache"
	"github.com/kailas-cloud/resolvex/internal/telemetry"
	cataloguc "github.com/kailas-cloud/resolvex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/resolvex/internal/usecase/health"
	passageuc "github.com/kailas-cloud/resolvex/internal/usecase/passage"
	resolveuc "github.com/kailas-cloud/resolvex/internal/usecase/resolve"
	vocabuc "github.com/kailas-cloud/resolvex/internal/usecase/vocab"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVocabTTL         = 5 * time.Minute
)

// Client is the resolvex SDK entry point for embedding the engine in-process.
type Client struct {
	store      db.Store
	resolveSvc *resolveuc.Service
	passageSvc *passageuc.Service
	catalogSvc *cataloguc.Service
	vocabSvc   *vocabcache.CachedBuilder
	healthSvc  *healthuc.Service
	itemRepo   *itemrepo.Repo
	aliasRepo  *aliasrepo.Repo
	sink       *telemetry.Sink
}

// New creates a resolvex Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vocabTTL: defaultVocabTTL,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("resolvex: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("resolvex: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("resolvex: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	items := itemrepo.New(store)
	aliases := aliasrepo.New(store)
	fts := ftsrepo.New(store)

	sink := telemetry.NewSink(cfg.telemetryBuffer, nil, cfg.logger)

	thresholds := resolveuc.DefaultThresholds()
	applyThresholds(&thresholds, cfg.thresholds)

	resolveSvc := resolveuc.New(aliases, fts, items, sink, thresholds, nil, nil, cfg.logger)
	passageSvc := passageuc.New(sink, nil)
	catalogBuilder := vocabuc.New(items, nil)
	vocabSvc := vocabcache.New(catalogBuilder, store, cfg.vocabTTL, nil, cfg.logger)
	catalogSvc := cataloguc.New(items, aliases, vocabSvc, cfg.logger)
	healthSvc := healthuc.New(store, store, domain.ItemIndexName, domain.AliasIndexName)

	return &Client{
		store:      store,
		resolveSvc: resolveSvc,
		passageSvc: passageSvc,
		catalogSvc: catalogSvc,
		vocabSvc:   vocabSvc,
		healthSvc:  healthSvc,
		itemRepo:   items,
		aliasRepo:  aliases,
		sink:       sink,
	}
}

func applyThresholds(dst *resolveuc.Thresholds, src Thresholds) {
	if src.AliasWeight > 0 {
		dst.AliasWeight = src.AliasWeight
	}
	if src.FTSWeight > 0 {
		dst.FTSWeight = src.FTSWeight
	}
	if src.SingleMinScore > 0 {
		dst.SingleMinScore = src.SingleMinScore
	}
	if src.SingleMinGap > 0 {
		dst.SingleMinGap = src.SingleMinGap
	}
	if src.MultipleMinScore > 0 {
		dst.MultipleMinScore = src.MultipleMinScore
	}
	if src.TopK > 0 {
		dst.TopK = src.TopK
	}
}

// Close flushes telemetry and releases all resources.
func (c *Client) Close() {
	if c.sink != nil {
		c.sink.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Health reports database connectivity and search index presence.
func (c *Client) Health(ctx context.Context) HealthReport {
	return healthReportFromDomain(c.healthSvc.Check(ctx))
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndexes creates the item and alias search indexes if missing.
// Call once at startup before serving traffic.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	if err := c.itemRepo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure item index: %w", err)
	}
	if err := c.aliasRepo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure alias index: %w", err)
	}
	return nil
}

// Resolve classifies a query as Single, Multiple, or None. It never fails:
// lookup trouble degrades to None.
func (c *Client) Resolve(ctx context.Context, tenant, query string) Outcome {
	return outcomeFromDomain(c.resolveSvc.Resolve(ctx, tenant, query))
}

// FilterPassages narrows retrieved passages to those consistent with the
// given item. A Refused result means the caller must not answer from the
// passages at all.
func (c *Client) FilterPassages(ctx context.Context, tenant, itemID string, passages []Passage) (FilterResult, error) {
	item, err := c.catalogSvc.GetItem(ctx, tenant, itemID)
	if err != nil {
		return FilterResult{}, err
	}
	return filterResultFromDomain(c.passageSvc.Filter(passagesToDomain(passages), item)), nil
}

// UpsertItem creates or replaces a catalog item and re-derives its aliases.
func (c *Client) UpsertItem(ctx context.Context, tenant string, in ItemInput) (Item, error) {
	item, err := c.catalogSvc.UpsertItem(ctx, tenant, cataloguc.ItemInput{
		ID:          in.ID,
		Title:       in.Title,
		Brand:       in.Brand,
		Model:       in.Model,
		URL:         in.URL,
		Description: in.Description,
	})
	if err != nil {
		return Item{}, err
	}
	return itemFromDomain(item), nil
}

// GetItem returns one catalog item.
func (c *Client) GetItem(ctx context.Context, tenant, itemID string) (Item, error) {
	item, err := c.catalogSvc.GetItem(ctx, tenant, itemID)
	if err != nil {
		return Item{}, err
	}
	return itemFromDomain(item), nil
}

// ListItems returns all of a tenant's catalog items.
func (c *Client) ListItems(ctx context.Context, tenant string) ([]Item, error) {
	items, err := c.catalogSvc.ListItems(ctx, tenant)
	if err != nil {
		return nil, err
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = itemFromDomain(it)
	}
	return out, nil
}

// DeleteItem removes an item, its aliases, and its model reservation.
func (c *Client) DeleteItem(ctx context.Context, tenant, itemID string) error {
	return c.catalogSvc.DeleteItem(ctx, tenant, itemID)
}

// AddAlias registers a manual alias for an existing item.
func (c *Client) AddAlias(ctx context.Context, tenant, itemID, alias string) (Alias, error) {
	a, err := c.catalogSvc.AddAlias(ctx, tenant, itemID, alias)
	if err != nil {
		return Alias{}, err
	}
	return aliasFromDomain(a), nil
}

// ListAliases returns every alias registered for a tenant.
func (c *Client) ListAliases(ctx context.Context, tenant string) ([]Alias, error) {
	aliases, err := c.catalogSvc.ListAliases(ctx, tenant)
	if err != nil {
		return nil, err
	}
	out := make([]Alias, len(aliases))
	for i, a := range aliases {
		out[i] = aliasFromDomain(a)
	}
	return out, nil
}

// Vocabulary returns the tenant's in-domain term set, built from the catalog
// and cached.
func (c *Client) Vocabulary(ctx context.Context, tenant string) ([]string, error) {
	return c.vocabSvc.Build(ctx, tenant)
}

// InvalidateVocabulary drops the tenant's cached vocabulary.
func (c *Client) InvalidateVocabulary(ctx context.Context, tenant string) error {
	return c.vocabSvc.Invalidate(ctx, tenant)
}

// InDomain reports whether any token of the query appears in the tenant's
// vocabulary. Out-of-domain queries should be answered without consulting
// the catalog at all.
func (c *Client) InDomain(ctx context.Context, tenant, query string) (bool, error) {
	terms, err := c.vocabSvc.Build(ctx, tenant)
	if err != nil {
		return false, err
	}
	return vocabuc.Contains(terms, normalize.Normalize(query)), nil
}
