package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/storefront/internal/catalog"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	servertiming "github.com/mitchellh/go-server-timing"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	catalogFlightKey   = "catalog"
	catalogLoadTimeout = 10 * time.Second
	cacheWriteTimeout  = 500 * time.Millisecond
)

// CatalogUseCase владеет снимком каталога и отвечает на запросы витрины.
// Снимок загружается один раз и переиспользуется до истечения ttl или инвалидации;
// фильтрация выполняется в памяти без обращений к хранилищу.
type CatalogUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	contentRepo  ContentRepository
	cacheRepo    CacheRepository
	logger       logger.Logger
	ttl          time.Duration
	now          func() time.Time

	group      singleflight.Group
	snapshot   atomic.Pointer[CatalogSnapshot]
	generation atomic.Uint64

	mu     sync.Mutex
	onLoad []func(*CatalogSnapshot)
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	contentRepo ContentRepository,
	cacheRepo CacheRepository,
	ttl time.Duration,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		contentRepo:  contentRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
		ttl:          ttl,
		now:          time.Now,
	}
}

// OnLoad регистрирует обработчик успешной загрузки снимка.
func (c *CatalogUseCase) OnLoad(fn func(*CatalogSnapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoad = append(c.onLoad, fn)
}

// Browse применяет фильтры к текущему снимку и возвращает страницу и счётчики категорий.
func (c *CatalogUseCase) Browse(ctx context.Context, req *BrowseReq) (*BrowseRes, error) {
	const op = "CatalogUseCase.Browse"

	timing := servertiming.FromContext(ctx)

	loadMetric := startMetric(timing, "load")
	snap, err := c.Snapshot(ctx)
	loadMetric.stop()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	filterMetric := startMetric(timing, "filter")
	filtered := catalog.Apply(snap.Products, req.Filter)
	filterMetric.stop()

	return &BrowseRes{
		Products: catalog.Paginate(filtered, req.Page, req.PerPage),
		Total:    len(filtered),
		Counts:   catalog.CountByCategory(snap.Products, domain.CategoryNames(snap.Categories)),
		Version:  snap.Version,
	}, nil
}

// GetProduct ищет активный товар в снимке.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	for i := range snap.Products {
		if snap.Products[i].ID == id {
			product := snap.Products[i]
			return &product, nil
		}
	}

	return nil, e.Wrap(fmt.Sprintf("%s: id=%s", op, id), e.ErrProductNotFound)
}

// Categories возвращает активные категории по порядку отображения.
func (c *CatalogUseCase) Categories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.Categories"

	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return snap.Categories, nil
}

// Content возвращает тексты страниц по ключу секции.
func (c *CatalogUseCase) Content(ctx context.Context) (map[string]json.RawMessage, error) {
	const op = "CatalogUseCase.Content"

	sections, err := c.contentRepo.GetAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	content := make(map[string]json.RawMessage, len(sections))
	for _, s := range sections {
		content[s.Section] = s.Content
	}

	return content, nil
}

// Snapshot возвращает актуальный снимок, при необходимости перезагружая его.
// Если перезагрузка не удалась, отдаётся предыдущий снимок; без него — e.ErrCatalogUnavailable.
func (c *CatalogUseCase) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	const op = "CatalogUseCase.Snapshot"

	current := c.snapshot.Load()
	if c.isFresh(current) {
		return current, nil
	}

	snap, err := c.Reload(ctx)
	if err == nil {
		return snap, nil
	}

	if current != nil {
		c.logger.Warnf("catalog reload failed, serving snapshot from %s: %v", current.LoadedAt.Format(time.RFC3339), e.Wrap(op, err))
		return current, nil
	}

	return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrCatalogUnavailable, err))
}

// Reload загружает снимок из хранилища. Одновременные вызовы объединяются в одну загрузку.
// При ошибке текущий снимок не меняется.
func (c *CatalogUseCase) Reload(ctx context.Context) (*CatalogSnapshot, error) {
	const op = "CatalogUseCase.Reload"

	ch := c.group.DoChan(catalogFlightKey, func() (any, error) {
		// Загрузка не должна обрываться отменой запроса, к которому присоединились другие.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()
		return c.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.logger.Errorf(res.Err, "%s: failed to load catalog", op)
			return nil, e.Wrap(op, res.Err)
		}
		return res.Val.(*CatalogSnapshot), nil
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	}
}

// Invalidate помечает снимок устаревшим: следующий запрос перезагрузит каталог.
func (c *CatalogUseCase) Invalidate() {
	c.generation.Add(1)
	c.group.Forget(catalogFlightKey)
}

// metric — фаза запроса для заголовка Server-Timing; без заголовка ничего не делает.
type metric struct {
	m *servertiming.Metric
}

func startMetric(timing *servertiming.Header, name string) metric {
	if timing == nil {
		return metric{}
	}
	return metric{m: timing.NewMetric(name).Start()}
}

func (m metric) stop() {
	if m.m != nil {
		m.m.Stop()
	}
}

func (c *CatalogUseCase) isFresh(snap *CatalogSnapshot) bool {
	if snap == nil || snap.generation != c.generation.Load() {
		return false
	}
	return c.ttl <= 0 || c.now().Sub(snap.LoadedAt) < c.ttl
}

func (c *CatalogUseCase) load(ctx context.Context) (*CatalogSnapshot, error) {
	generation := c.generation.Load()

	// Эпоху читаем до БД: снимок, прочитанный до чужой записи, не попадёт в кэш после неё.
	epoch, cacheOK := c.cacheEpoch(ctx)

	var cached *CachedCatalog
	if cacheOK {
		cached = c.loadFromCache(ctx, epoch)
	}

	if cached == nil {
		var err error
		cached, err = c.loadFromRepo(ctx)
		if err != nil {
			return nil, err
		}

		if cacheOK {
			cached.Epoch = epoch
			go c.saveToCache(cached, generation)
		}
	}

	snap := &CatalogSnapshot{
		Products:   cached.Products,
		Categories: cached.Categories,
		Version:    catalog.Fingerprint(cached.Products, cached.Categories),
		LoadedAt:   c.now(),
		generation: generation,
	}

	// Инвалидация во время загрузки делает результат устаревшим сразу; его всё равно
	// сохраняем как запасной снимок на случай ошибки следующей загрузки.
	c.store(snap)
	c.logger.Debugf("catalog snapshot loaded: products=%d categories=%d version=%s", len(snap.Products), len(snap.Categories), snap.Version)

	c.mu.Lock()
	listeners := c.onLoad
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}

	return snap, nil
}

// store не даёт загрузке, начатой до инвалидации, затереть более новый снимок.
func (c *CatalogUseCase) store(snap *CatalogSnapshot) {
	for {
		current := c.snapshot.Load()
		if current != nil && current.generation > snap.generation {
			return
		}
		if c.snapshot.CompareAndSwap(current, snap) {
			return
		}
	}
}

func (c *CatalogUseCase) cacheEpoch(ctx context.Context) (int64, bool) {
	epoch, err := c.cacheRepo.CatalogEpoch(ctx)
	if err != nil {
		c.logger.Warnf("catalog cache epoch read failed, bypassing cache: %v", err)
		return 0, false
	}
	return epoch, true
}

func (c *CatalogUseCase) loadFromCache(ctx context.Context, epoch int64) *CachedCatalog {
	cached, err := c.cacheRepo.GetCatalog(ctx)
	if err != nil {
		c.logger.Warnf("catalog cache read failed: %v", err)
		return nil
	}
	if cached != nil && cached.Epoch != epoch {
		c.logger.Debugf("ignoring catalog cache entry from epoch %d, current %d", cached.Epoch, epoch)
		return nil
	}
	return cached
}

// saveToCache в фоне сохраняет снимок в общий кэш, если он не устарел за время загрузки.
func (c *CatalogUseCase) saveToCache(toCache *CachedCatalog, generation uint64) {
	if c.generation.Load() != generation {
		c.logger.Debugf("catalog invalidated during load, skipping cache write")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	if err := c.cacheRepo.SetCatalog(ctx, toCache); err != nil {
		if errors.Is(err, e.ErrCatalogCacheStale) {
			c.logger.Debugf("catalog changed during load, skipping cache write")
			return
		}
		c.logger.Warnf("Failed to cache catalog in background: %v", err)
	}
}

func (c *CatalogUseCase) loadFromRepo(ctx context.Context) (*CachedCatalog, error) {
	const op = "CatalogUseCase.loadFromRepo"

	var (
		products   []domain.Product
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.productRepo.ListActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = c.categoryRepo.ListActive(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &CachedCatalog{Products: products, Categories: categories}, nil
}
