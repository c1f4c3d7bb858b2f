package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/catalog"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts() []domain.Product {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Product{
		{ID: "p1", Name: "Oak Table", Category: "Furniture", Price: ptr[int64](500), StockQuantity: 2, IsActive: true, CreatedAt: base},
		{ID: "p2", Name: "Desk Lamp", Category: "Lighting", Price: ptr[int64](40), StockQuantity: 0, IsActive: true, CreatedAt: base.Add(time.Hour)},
		{ID: "p3", Name: "Floor Lamp", Category: "Lighting", Price: ptr[int64](120), StockQuantity: 5, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p4", Name: "Hidden Chair", Category: "Furniture", IsActive: false, CreatedAt: base.Add(3 * time.Hour)},
	}
}

func seedCategories() []domain.Category {
	return []domain.Category{
		{ID: "c1", Name: "Furniture", SortOrder: 1, IsActive: true},
		{ID: "c2", Name: "Lighting", SortOrder: 2, IsActive: true},
	}
}

type catalogFixture struct {
	uc       *CatalogUseCase
	products *fakeProductRepo
	cache    *fakeCacheRepo
	content  *fakeContentRepo
}

func newCatalogFixture(ttl time.Duration) *catalogFixture {
	products := &fakeProductRepo{products: seedProducts()}
	cache := &fakeCacheRepo{}
	content := &fakeContentRepo{sections: map[string]json.RawMessage{
		"hero": json.RawMessage(`{"title":"Welcome"}`),
	}}
	uc := NewCatalogUC(products, &fakeCategoryRepo{categories: seedCategories()}, content, cache, ttl, logger.NewDiscardLogger())
	return &catalogFixture{uc: uc, products: products, cache: cache, content: content}
}

func TestCatalogUseCase_Browse(t *testing.T) {
	f := newCatalogFixture(time.Minute)

	cfg := catalog.DefaultFilterConfig()
	cfg.Category = "Lighting"
	cfg.SearchText = "lamp"

	res, err := f.uc.Browse(context.Background(), NewBrowseReq(cfg, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "p3", res.Products[0].ID, "newest first")
	assert.NotEmpty(t, res.Version)

	assert.Equal(t, []catalog.CategoryCount{
		{Category: catalog.AllCategories, Count: 3},
		{Category: "Furniture", Count: 1},
		{Category: "Lighting", Count: 2},
	}, res.Counts)
}

func TestCatalogUseCase_SnapshotIsReused(t *testing.T) {
	f := newCatalogFixture(time.Minute)
	ctx := context.Background()

	first, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)
	second, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), f.products.calls.Load())
}

func TestCatalogUseCase_TTLExpiry(t *testing.T) {
	f := newCatalogFixture(time.Minute)
	ctx := context.Background()

	now := time.Now()
	f.uc.now = func() time.Time { return now }

	first, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	second, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, now, second.LoadedAt)
}

func TestCatalogUseCase_InvalidateReloads(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	ctx := context.Background()

	before, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.cache.stored() != nil }, time.Second, 5*time.Millisecond)
	assert.Len(t, f.cache.stored().Products, len(before.Products))

	f.products.mu.Lock()
	f.products.products = append(f.products.products, domain.Product{ID: "p5", Name: "Rug", Category: "Furniture", IsActive: true})
	f.products.mu.Unlock()

	require.NoError(t, f.cache.InvalidateCatalog(ctx))
	f.uc.Invalidate()

	after, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Len(t, after.Products, len(before.Products)+1)
	assert.NotEqual(t, before.Version, after.Version)

	require.Eventually(t, func() bool {
		cached := f.cache.stored()
		return cached != nil && len(cached.Products) == len(after.Products)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), f.cache.stored().Epoch)
}

func TestCatalogUseCase_WriteDuringLoadIsNotCached(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	ctx := context.Background()

	read := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.products.afterRead = func() {
		once.Do(func() {
			close(read)
			<-release
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.uc.Reload(ctx)
		assert.NoError(t, err)
	}()

	// Загрузка уже прочитала старые строки; в это время проходит запись администратора.
	<-read
	f.products.mu.Lock()
	f.products.products[0].Name = "Oak Table Renamed"
	f.products.mu.Unlock()
	require.NoError(t, f.cache.InvalidateCatalog(ctx))
	f.uc.Invalidate()

	close(release)
	<-done

	p, err := f.uc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Oak Table Renamed", p.Name)

	require.Eventually(t, func() bool { return f.cache.stored() != nil }, time.Second, 5*time.Millisecond)
	cached := f.cache.stored()
	assert.Equal(t, int64(1), cached.Epoch)
	for _, cp := range cached.Products {
		if cp.ID == "p1" {
			assert.Equal(t, "Oak Table Renamed", cp.Name)
		}
	}
}

func TestCatalogUseCase_IgnoresCacheFromOlderEpoch(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	f.cache.catalog = &CachedCatalog{
		Products:   seedProducts()[:1],
		Categories: seedCategories(),
		Epoch:      0,
	}
	f.cache.epoch = 1

	snap, err := f.uc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Products, 3)
	assert.Equal(t, int32(1), f.products.calls.Load())
}

func TestCatalogUseCase_SharedCacheServesOtherInstances(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	ctx := context.Background()

	first, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.cache.stored() != nil }, time.Second, 5*time.Millisecond)

	down := &fakeProductRepo{}
	down.failList.Store(true)
	other := NewCatalogUC(down, &fakeCategoryRepo{}, f.content, f.cache, time.Hour, logger.NewDiscardLogger())

	snap, err := other.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Version, snap.Version)
	assert.Len(t, snap.Products, 3)
	assert.Equal(t, int32(0), down.calls.Load())
}

func TestCatalogUseCase_ServesStaleSnapshotOnFailure(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	ctx := context.Background()

	before, err := f.uc.Snapshot(ctx)
	require.NoError(t, err)

	f.products.failList.Store(true)
	f.cache.mu.Lock()
	f.cache.fail = true
	f.cache.mu.Unlock()
	f.uc.Invalidate()

	res, err := f.uc.Browse(ctx, NewBrowseReq(catalog.DefaultFilterConfig(), 1, 0))
	require.NoError(t, err)
	assert.Equal(t, before.Version, res.Version)
	assert.Equal(t, 3, res.Total)
}

func TestCatalogUseCase_UnavailableWithoutSnapshot(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	f.products.failList.Store(true)

	_, err := f.uc.Browse(context.Background(), NewBrowseReq(catalog.DefaultFilterConfig(), 1, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrCatalogUnavailable)
}

func TestCatalogUseCase_ConcurrentLoadsShareOneFetch(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	f.products.block = make(chan struct{})

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*CatalogSnapshot, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := f.uc.Snapshot(context.Background())
			assert.NoError(t, err)
			results[i] = snap
		}()
	}

	require.Eventually(t, func() bool { return f.products.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(f.products.block)
	wg.Wait()

	assert.Equal(t, int32(1), f.products.calls.Load())
	for _, snap := range results {
		assert.Same(t, results[0], snap)
	}
}

func TestCatalogUseCase_LoadsFromSharedCache(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	f.cache.catalog = &CachedCatalog{
		Products:   seedProducts()[:1],
		Categories: seedCategories(),
	}

	snap, err := f.uc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Products, 1)
	assert.Equal(t, int32(0), f.products.calls.Load())
}

func TestCatalogUseCase_CacheFailureFallsBackToRepo(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	f.cache.fail = true

	snap, err := f.uc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Products, 3)
}

func TestCatalogUseCase_OnLoad(t *testing.T) {
	f := newCatalogFixture(time.Hour)

	var loaded []string
	f.uc.OnLoad(func(s *CatalogSnapshot) { loaded = append(loaded, s.Version) })

	snap, err := f.uc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{snap.Version}, loaded)
}

func TestCatalogUseCase_GetProduct(t *testing.T) {
	f := newCatalogFixture(time.Hour)
	ctx := context.Background()

	p, err := f.uc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Oak Table", p.Name)

	_, err = f.uc.GetProduct(ctx, "p4")
	assert.ErrorIs(t, err, e.ErrProductNotFound, "inactive products are not visible")

	_, err = f.uc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestCatalogUseCase_Content(t *testing.T) {
	f := newCatalogFixture(time.Hour)

	content, err := f.uc.Content(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Welcome"}`, string(content["hero"]))
}
