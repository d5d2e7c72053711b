// Package catalog owns the write path: item upserts and deletes, derived
// alias maintenance, manual alias registration, and the model uniqueness
// reservation that keeps look-alike products distinguishable.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

// ItemInput is the raw, un-normalized form of an item as submitted by a
// tenant integration. ID is optional; a missing ID means create.
type ItemInput struct {
	ID          string
	Title       string
	Brand       string
	Model       string
	URL         string
	Description string
}

// Service maintains the catalog and its derived aliases.
type Service struct {
	items   ItemStore
	aliases AliasStore
	vocab   VocabInvalidator // may be nil
	logger  *zap.Logger
}

// New creates a catalog service. vocab may be nil.
func New(items ItemStore, aliases AliasStore, vocab VocabInvalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, aliases: aliases, vocab: vocab, logger: logger}
}

// UpsertItem creates or replaces a catalog item, re-derives its aliases, and
// enforces normalized-model uniqueness within the tenant. On update the
// previous model reservation is released when the model changed, and the
// original creation time is preserved.
func (s *Service) UpsertItem(ctx context.Context, tenant string, in ItemInput) (domain.CatalogItem, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	item, err := domain.NewCatalogItem(id, tenant, in.Title, in.Brand, in.Model, in.URL, in.Description)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	prev, err := s.items.Get(ctx, tenant, id)
	existed := err == nil
	switch {
	case existed:
		item = item.WithTimestamps(prev.CreatedAt(), item.UpdatedAt())
	case errors.Is(err, domain.ErrItemNotFound):
		// create
	default:
		return domain.CatalogItem{}, fmt.Errorf("load existing item: %w", err)
	}

	// Track whether this call claimed a fresh slot, so a failed write below
	// can release it instead of blocking the model for every other item.
	reservedNew := false
	if item.NormModel() != "" {
		if err := s.items.ReserveModel(ctx, tenant, item.NormModel(), id); err != nil {
			return domain.CatalogItem{}, err
		}
		reservedNew = !existed || prev.NormModel() != item.NormModel()
	}
	if existed && prev.NormModel() != "" && prev.NormModel() != item.NormModel() {
		if relErr := s.items.ReleaseModel(ctx, tenant, prev.NormModel()); relErr != nil {
			s.logger.Warn("release previous model reservation",
				zap.String("tenant", tenant),
				zap.String("item_id", id),
				zap.Error(relErr))
		}
	}

	if err := s.items.Put(ctx, item); err != nil {
		s.releaseFailedReservation(ctx, tenant, item, reservedNew)
		return domain.CatalogItem{}, fmt.Errorf("store item: %w", err)
	}
	if err := s.rederiveAliases(ctx, item); err != nil {
		return domain.CatalogItem{}, err
	}

	s.invalidateVocab(ctx, tenant)
	return item, nil
}

// GetItem returns a single catalog item.
func (s *Service) GetItem(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
	return s.items.Get(ctx, tenant, itemID)
}

// ListItems returns all of a tenant's catalog items.
func (s *Service) ListItems(ctx context.Context, tenant string) ([]domain.CatalogItem, error) {
	return s.items.List(ctx, tenant)
}

// DeleteItem removes an item along with all of its aliases, derived and
// manual, and releases the item's model reservation.
func (s *Service) DeleteItem(ctx context.Context, tenant, itemID string) error {
	item, err := s.items.Get(ctx, tenant, itemID)
	if err != nil {
		return err
	}

	if item.NormModel() != "" {
		if err := s.items.ReleaseModel(ctx, tenant, item.NormModel()); err != nil {
			s.logger.Warn("release model reservation",
				zap.String("tenant", tenant),
				zap.String("item_id", itemID),
				zap.Error(err))
		}
	}
	if err := s.aliases.DeleteForItem(ctx, tenant, itemID, false); err != nil {
		return fmt.Errorf("delete aliases: %w", err)
	}
	if err := s.items.Delete(ctx, tenant, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.invalidateVocab(ctx, tenant)
	return nil
}

// AddAlias registers a manual alias for an existing item. Registering a
// normalized form already present for the item returns ErrAliasExists.
func (s *Service) AddAlias(ctx context.Context, tenant, itemID, raw string) (domain.Alias, error) {
	if _, err := s.items.Get(ctx, tenant, itemID); err != nil {
		return domain.Alias{}, err
	}

	a, err := domain.NewAlias(tenant, itemID, domain.AliasManual, raw)
	if err != nil {
		return domain.Alias{}, err
	}

	exists, err := s.aliases.Exists(ctx, a)
	if err != nil {
		return domain.Alias{}, fmt.Errorf("check alias: %w", err)
	}
	if exists {
		return domain.Alias{}, domain.ErrAliasExists
	}

	if err := s.aliases.PutMulti(ctx, []domain.Alias{a}); err != nil {
		return domain.Alias{}, fmt.Errorf("store alias: %w", err)
	}

	s.invalidateVocab(ctx, tenant)
	return a, nil
}

// ListAliases returns every alias registered for a tenant.
func (s *Service) ListAliases(ctx context.Context, tenant string) ([]domain.Alias, error) {
	return s.aliases.ListForTenant(ctx, tenant)
}

// rederiveAliases replaces the item's derived aliases while leaving manual
// ones untouched.
func (s *Service) rederiveAliases(ctx context.Context, item domain.CatalogItem) error {
	if err := s.aliases.DeleteForItem(ctx, item.Tenant(), item.ID(), true); err != nil {
		return fmt.Errorf("delete derived aliases: %w", err)
	}
	derived := domain.DeriveAliases(item)
	if len(derived) == 0 {
		return nil
	}
	if err := s.aliases.PutMulti(ctx, derived); err != nil {
		return fmt.Errorf("store derived aliases: %w", err)
	}
	return nil
}

// releaseFailedReservation frees a reservation claimed earlier in the same
// upsert when the item write it was protecting failed. Reservations the item
// already held before the call are kept: the stored item still owns them.
func (s *Service) releaseFailedReservation(ctx context.Context, tenant string, item domain.CatalogItem, reservedNew bool) {
	if !reservedNew {
		return
	}
	if err := s.items.ReleaseModel(ctx, tenant, item.NormModel()); err != nil {
		s.logger.Warn("release model reservation after failed write",
			zap.String("tenant", tenant),
			zap.String("item_id", item.ID()),
			zap.Error(err))
	}
}

// invalidateVocab is best effort: a stale vocabulary self-heals at TTL.
func (s *Service) invalidateVocab(ctx context.Context, tenant string) {
	if s.vocab == nil {
		return
	}
	if err := s.vocab.Invalidate(ctx, tenant); err != nil {
		s.logger.Warn("invalidate vocabulary cache",
			zap.String("tenant", tenant),
			zap.Error(err))
	}
}
