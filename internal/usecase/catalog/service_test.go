package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

type fakeItemStore struct {
	putFunc          func(ctx context.Context, it domain.CatalogItem) error
	getFunc          func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error)
	deleteFunc       func(ctx context.Context, tenant, itemID string) error
	listFunc         func(ctx context.Context, tenant string) ([]domain.CatalogItem, error)
	reserveModelFunc func(ctx context.Context, tenant, normModel, itemID string) error
	releaseModelFunc func(ctx context.Context, tenant, normModel string) error
}

func (f *fakeItemStore) Put(ctx context.Context, it domain.CatalogItem) error {
	return f.putFunc(ctx, it)
}

func (f *fakeItemStore) Get(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
	return f.getFunc(ctx, tenant, itemID)
}

func (f *fakeItemStore) Delete(ctx context.Context, tenant, itemID string) error {
	return f.deleteFunc(ctx, tenant, itemID)
}

func (f *fakeItemStore) List(ctx context.Context, tenant string) ([]domain.CatalogItem, error) {
	return f.listFunc(ctx, tenant)
}

func (f *fakeItemStore) ReserveModel(ctx context.Context, tenant, normModel, itemID string) error {
	return f.reserveModelFunc(ctx, tenant, normModel, itemID)
}

func (f *fakeItemStore) ReleaseModel(ctx context.Context, tenant, normModel string) error {
	return f.releaseModelFunc(ctx, tenant, normModel)
}

type fakeAliasStore struct {
	putMultiFunc      func(ctx context.Context, aliases []domain.Alias) error
	existsFunc        func(ctx context.Context, a domain.Alias) (bool, error)
	deleteForItemFunc func(ctx context.Context, tenant, itemID string, derivedOnly bool) error
	listForTenantFunc func(ctx context.Context, tenant string) ([]domain.Alias, error)
}

func (f *fakeAliasStore) PutMulti(ctx context.Context, aliases []domain.Alias) error {
	return f.putMultiFunc(ctx, aliases)
}

func (f *fakeAliasStore) Exists(ctx context.Context, a domain.Alias) (bool, error) {
	return f.existsFunc(ctx, a)
}

func (f *fakeAliasStore) DeleteForItem(ctx context.Context, tenant, itemID string, derivedOnly bool) error {
	return f.deleteForItemFunc(ctx, tenant, itemID, derivedOnly)
}

func (f *fakeAliasStore) ListForTenant(ctx context.Context, tenant string) ([]domain.Alias, error) {
	return f.listForTenantFunc(ctx, tenant)
}

type fakeInvalidator struct {
	tenants []string
	err     error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, tenant string) error {
	f.tenants = append(f.tenants, tenant)
	return f.err
}

func notFoundItemStore() *fakeItemStore {
	return &fakeItemStore{
		getFunc: func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
			return domain.CatalogItem{}, domain.ErrItemNotFound
		},
		putFunc:          func(ctx context.Context, it domain.CatalogItem) error { return nil },
		reserveModelFunc: func(ctx context.Context, tenant, normModel, itemID string) error { return nil },
		releaseModelFunc: func(ctx context.Context, tenant, normModel string) error { return nil },
	}
}

func passthroughAliasStore() *fakeAliasStore {
	return &fakeAliasStore{
		putMultiFunc: func(ctx context.Context, aliases []domain.Alias) error { return nil },
		deleteForItemFunc: func(ctx context.Context, tenant, itemID string, derivedOnly bool) error {
			return nil
		},
		existsFunc: func(ctx context.Context, a domain.Alias) (bool, error) { return false, nil },
	}
}

func TestUpsertItemCreate(t *testing.T) {
	items := notFoundItemStore()
	var reservedModel, reservedOwner string
	items.reserveModelFunc = func(ctx context.Context, tenant, normModel, itemID string) error {
		reservedModel, reservedOwner = normModel, itemID
		return nil
	}
	var stored domain.CatalogItem
	items.putFunc = func(ctx context.Context, it domain.CatalogItem) error {
		stored = it
		return nil
	}

	aliases := passthroughAliasStore()
	var derivedKinds []domain.AliasKind
	var derivedOnlyDelete bool
	aliases.deleteForItemFunc = func(ctx context.Context, tenant, itemID string, derivedOnly bool) error {
		derivedOnlyDelete = derivedOnly
		return nil
	}
	aliases.putMultiFunc = func(ctx context.Context, as []domain.Alias) error {
		for _, a := range as {
			derivedKinds = append(derivedKinds, a.Kind())
		}
		return nil
	}

	vocab := &fakeInvalidator{}
	svc := New(items, aliases, vocab, nil)

	item, err := svc.UpsertItem(context.Background(), "shop", ItemInput{
		ID:    "p1",
		Title: "IVISKIN G-3",
		Brand: "IVISKIN",
		Model: "G-3",
	})
	if err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}

	if stored.ID() != "p1" || stored.NormModel() != "g3" {
		t.Fatalf("stored item = %q model %q", stored.ID(), stored.NormModel())
	}
	if reservedModel != "g3" || reservedOwner != "p1" {
		t.Fatalf("reservation = %q by %q, want g3 by p1", reservedModel, reservedOwner)
	}
	if !derivedOnlyDelete {
		t.Fatal("derived alias replacement must not touch manual aliases")
	}
	if len(derivedKinds) != 3 {
		t.Fatalf("derived %d aliases, want brand_model, model_only, brand_only", len(derivedKinds))
	}
	if len(vocab.tenants) != 1 || vocab.tenants[0] != "shop" {
		t.Fatalf("vocab invalidations = %v", vocab.tenants)
	}
	if item.NormTitle() != "iviskin g3" {
		t.Fatalf("NormTitle = %q", item.NormTitle())
	}
}

func TestUpsertItemGeneratesID(t *testing.T) {
	items := notFoundItemStore()
	svc := New(items, passthroughAliasStore(), nil, nil)

	item, err := svc.UpsertItem(context.Background(), "shop", ItemInput{Title: "Vekt X1"})
	if err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	if item.ID() == "" {
		t.Fatal("expected generated item id")
	}
}

func TestUpsertItemModelTaken(t *testing.T) {
	items := notFoundItemStore()
	items.reserveModelFunc = func(ctx context.Context, tenant, normModel, itemID string) error {
		return domain.ErrModelTaken
	}
	putCalled := false
	items.putFunc = func(ctx context.Context, it domain.CatalogItem) error {
		putCalled = true
		return nil
	}

	svc := New(items, passthroughAliasStore(), nil, nil)
	_, err := svc.UpsertItem(context.Background(), "shop", ItemInput{
		ID: "p2", Title: "IVISKIN G-3 v2", Model: "G3",
	})
	if !errors.Is(err, domain.ErrModelTaken) {
		t.Fatalf("err = %v, want ErrModelTaken", err)
	}
	if putCalled {
		t.Fatal("item must not be stored when the model is taken")
	}
}

func TestUpsertItemUpdateReleasesOldModel(t *testing.T) {
	prev, err := domain.NewCatalogItem("p1", "shop", "Vekt X1", "Acme", "X1", "", "")
	if err != nil {
		t.Fatalf("NewCatalogItem: %v", err)
	}
	prev = prev.WithTimestamps(100, 100)

	items := notFoundItemStore()
	items.getFunc = func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
		return prev, nil
	}
	var released string
	items.releaseModelFunc = func(ctx context.Context, tenant, normModel string) error {
		released = normModel
		return nil
	}
	var stored domain.CatalogItem
	items.putFunc = func(ctx context.Context, it domain.CatalogItem) error {
		stored = it
		return nil
	}

	svc := New(items, passthroughAliasStore(), nil, nil)
	_, err = svc.UpsertItem(context.Background(), "shop", ItemInput{
		ID: "p1", Title: "Vekt X2", Brand: "Acme", Model: "X2",
	})
	if err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	if released != "x1" {
		t.Fatalf("released model %q, want x1", released)
	}
	if stored.CreatedAt() != 100 {
		t.Fatalf("CreatedAt = %d, want preserved 100", stored.CreatedAt())
	}
}

func TestUpsertItemFailedWriteReleasesNewReservation(t *testing.T) {
	t.Run("fresh reservation is released", func(t *testing.T) {
		items := notFoundItemStore()
		items.putFunc = func(ctx context.Context, it domain.CatalogItem) error {
			return errors.New("write timeout")
		}
		var released string
		items.releaseModelFunc = func(ctx context.Context, tenant, normModel string) error {
			released = normModel
			return nil
		}

		svc := New(items, passthroughAliasStore(), nil, nil)
		_, err := svc.UpsertItem(context.Background(), "shop", ItemInput{
			ID: "p1", Title: "IVISKIN G3", Brand: "IVISKIN", Model: "G3",
		})
		if err == nil {
			t.Fatal("expected write failure")
		}
		if released != "g3" {
			t.Fatalf("released model %q, want g3", released)
		}
	})

	t.Run("pre-existing reservation survives", func(t *testing.T) {
		prev, err := domain.NewCatalogItem("p1", "shop", "IVISKIN G3", "IVISKIN", "G3", "", "")
		if err != nil {
			t.Fatalf("NewCatalogItem: %v", err)
		}

		items := notFoundItemStore()
		items.getFunc = func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
			return prev, nil
		}
		items.putFunc = func(ctx context.Context, it domain.CatalogItem) error {
			return errors.New("write timeout")
		}
		items.releaseModelFunc = func(ctx context.Context, tenant, normModel string) error {
			t.Fatalf("stored item still owns %q, release must not run", normModel)
			return nil
		}

		svc := New(items, passthroughAliasStore(), nil, nil)
		_, err = svc.UpsertItem(context.Background(), "shop", ItemInput{
			ID: "p1", Title: "IVISKIN G3 oppdatert", Brand: "IVISKIN", Model: "G3",
		})
		if err == nil {
			t.Fatal("expected write failure")
		}
	})
}

func TestDeleteItemCascades(t *testing.T) {
	item, err := domain.NewCatalogItem("p1", "shop", "Vekt X1", "Acme", "X1", "", "")
	if err != nil {
		t.Fatalf("NewCatalogItem: %v", err)
	}

	items := notFoundItemStore()
	items.getFunc = func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
		return item, nil
	}
	var released string
	items.releaseModelFunc = func(ctx context.Context, tenant, normModel string) error {
		released = normModel
		return nil
	}
	var deleted string
	items.deleteFunc = func(ctx context.Context, tenant, itemID string) error {
		deleted = itemID
		return nil
	}

	aliases := passthroughAliasStore()
	var aliasDeleteDerivedOnly = true
	aliases.deleteForItemFunc = func(ctx context.Context, tenant, itemID string, derivedOnly bool) error {
		aliasDeleteDerivedOnly = derivedOnly
		return nil
	}

	vocab := &fakeInvalidator{}
	svc := New(items, aliases, vocab, nil)

	if err := svc.DeleteItem(context.Background(), "shop", "p1"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if released != "x1" {
		t.Fatalf("released model %q, want x1", released)
	}
	if aliasDeleteDerivedOnly {
		t.Fatal("delete must remove manual aliases too")
	}
	if deleted != "p1" {
		t.Fatalf("deleted item %q, want p1", deleted)
	}
	if len(vocab.tenants) != 1 {
		t.Fatalf("vocab invalidations = %v", vocab.tenants)
	}
}

func TestDeleteItemNotFound(t *testing.T) {
	items := notFoundItemStore()
	svc := New(items, passthroughAliasStore(), nil, nil)

	if err := svc.DeleteItem(context.Background(), "shop", "missing"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}

func TestAddAlias(t *testing.T) {
	item, err := domain.NewCatalogItem("p1", "shop", "Vekt X1", "", "", "", "")
	if err != nil {
		t.Fatalf("NewCatalogItem: %v", err)
	}
	items := notFoundItemStore()
	items.getFunc = func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
		return item, nil
	}

	aliases := passthroughAliasStore()
	var stored []domain.Alias
	aliases.putMultiFunc = func(ctx context.Context, as []domain.Alias) error {
		stored = as
		return nil
	}

	svc := New(items, aliases, nil, nil)
	a, err := svc.AddAlias(context.Background(), "shop", "p1", "Badevekt Deluxe")
	if err != nil {
		t.Fatalf("AddAlias: %v", err)
	}
	if a.Kind() != domain.AliasManual || a.Norm() != "badevekt deluxe" {
		t.Fatalf("alias = %s %q", a.Kind(), a.Norm())
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d aliases, want 1", len(stored))
	}
}

func TestAddAliasDuplicate(t *testing.T) {
	item, err := domain.NewCatalogItem("p1", "shop", "Vekt X1", "", "", "", "")
	if err != nil {
		t.Fatalf("NewCatalogItem: %v", err)
	}
	items := notFoundItemStore()
	items.getFunc = func(ctx context.Context, tenant, itemID string) (domain.CatalogItem, error) {
		return item, nil
	}
	aliases := passthroughAliasStore()
	aliases.existsFunc = func(ctx context.Context, a domain.Alias) (bool, error) { return true, nil }

	svc := New(items, aliases, nil, nil)
	if _, err := svc.AddAlias(context.Background(), "shop", "p1", "Badevekt"); !errors.Is(err, domain.ErrAliasExists) {
		t.Fatalf("err = %v, want ErrAliasExists", err)
	}
}

func TestAddAliasItemMissing(t *testing.T) {
	svc := New(notFoundItemStore(), passthroughAliasStore(), nil, nil)
	if _, err := svc.AddAlias(context.Background(), "shop", "missing", "x"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}
