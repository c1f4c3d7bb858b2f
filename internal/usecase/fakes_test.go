package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

var errStorage = errors.New("storage is down")

func ptr[T any](v T) *T { return &v }

type fakeProductRepo struct {
	mu       sync.Mutex
	products []domain.Product
	failList atomic.Bool
	failNext error
	calls    atomic.Int32
	block    chan struct{}
	// afterRead вызывается после чтения строк, до возврата результата.
	afterRead func()
}

func (f *fakeProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failList.Load() {
		return nil, errStorage
	}

	f.mu.Lock()
	var out []domain.Product
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	f.mu.Unlock()

	if f.afterRead != nil {
		f.afterRead()
	}
	return out, nil
}

func (f *fakeProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if f.failNext != nil {
		return nil, f.failNext
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *product
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == product.ID {
			p := *product
			p.UpdatedAt = time.Now()
			f.products[i] = p
			return &p, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return e.ErrProductNotFound
}

type fakeCategoryRepo struct {
	categories []domain.Category
}

func (f *fakeCategoryRepo) ListActive(ctx context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Name == category.Name {
			return nil, e.ErrCategoryExists
		}
	}
	f.categories = append(f.categories, *category)
	return category, nil
}

type fakeContentRepo struct {
	sections map[string]json.RawMessage
}

func (f *fakeContentRepo) GetAll(ctx context.Context) ([]domain.ContentSection, error) {
	var out []domain.ContentSection
	for k, v := range f.sections {
		out = append(out, domain.ContentSection{Section: k, Content: v})
	}
	return out, nil
}

func (f *fakeContentRepo) Update(ctx context.Context, section string, content json.RawMessage) (*domain.ContentSection, error) {
	if _, ok := f.sections[section]; !ok {
		return nil, e.ErrContentSectionNotFound
	}
	f.sections[section] = content
	return &domain.ContentSection{Section: section, Content: content}, nil
}

// fakeCacheRepo повторяет поведение Redis-кэша с эпохой.
type fakeCacheRepo struct {
	mu            sync.Mutex
	catalog       *CachedCatalog
	epoch         int64
	sets          int
	invalidations int
	fail          bool
}

func (f *fakeCacheRepo) CatalogEpoch(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errStorage
	}
	return f.epoch, nil
}

func (f *fakeCacheRepo) GetCatalog(ctx context.Context) (*CachedCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorage
	}
	return f.catalog, nil
}

func (f *fakeCacheRepo) SetCatalog(ctx context.Context, catalog *CachedCatalog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.fail {
		return errStorage
	}
	if catalog.Epoch != f.epoch {
		return e.ErrCatalogCacheStale
	}
	f.catalog = catalog
	return nil
}

func (f *fakeCacheRepo) InvalidateCatalog(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	if f.fail {
		return errStorage
	}
	f.epoch++
	f.catalog = nil
	return nil
}

// stored возвращает то, что сейчас лежит в кэше.
func (f *fakeCacheRepo) stored() *CachedCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalog
}

type fakeOutboxRepo struct {
	events []*OutboxEvent
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error { return nil }

func (f *fakeOutboxRepo) MarkAsPending(ctx context.Context, id int64) error { return nil }

// fakeTransactor откатывает события outbox, если fn вернула ошибку.
type fakeTransactor struct {
	outbox *fakeOutboxRepo
}

func (f *fakeTransactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	before := len(f.outbox.events)
	if err := fn(ctx); err != nil {
		f.outbox.events = f.outbox.events[:before]
		return err
	}
	return nil
}

type fakeAssetsInfra struct {
	uploaded []*UploadAssetReq
	deleted  []string
}

func (f *fakeAssetsInfra) UploadAsset(ctx context.Context, req *UploadAssetReq) (*UploadAssetRes, error) {
	f.uploaded = append(f.uploaded, req)
	key := req.Kind.Prefix() + "/" + req.Name
	return NewUploadAssetRes(key, "http://assets/"+key), nil
}

func (f *fakeAssetsInfra) DeleteAsset(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeAdminRepo struct {
	admins map[string]*domain.AdminUser
}

func (f *fakeAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	admin, ok := f.admins[email]
	if !ok {
		return nil, e.ErrAdminNotFound
	}
	return admin, nil
}

func (f *fakeAdminRepo) Upsert(ctx context.Context, admin *domain.AdminUser) (*domain.AdminUser, error) {
	if f.admins == nil {
		f.admins = map[string]*domain.AdminUser{}
	}
	if existing, ok := f.admins[admin.Email]; ok {
		existing.PasswordHash = admin.PasswordHash
		return existing, nil
	}
	a := *admin
	a.ID = int64(len(f.admins) + 1)
	f.admins[a.Email] = &a
	return &a, nil
}

// plainHasher хранит пароль с префиксом, чтобы тесты не зависели от bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash string, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(admin *domain.AdminUser) (string, time.Time, error) {
	return "token:" + admin.Email, time.Unix(0, 0), nil
}

func (fakeTokens) ParseToken(token string) (*Claims, error) {
	if len(token) < 6 || token[:6] != "token:" {
		return nil, errors.New("bad token")
	}
	return &Claims{AdminID: 1, Email: token[6:]}, nil
}
