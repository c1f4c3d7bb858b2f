package usecase

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type ProductRepository interface {
	// ListActive возвращает активные товары, новые первыми.
	ListActive(ctx context.Context) ([]domain.Product, error)
	// ListAll возвращает все товары, включая неактивные, новые первыми.
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	// ListActive возвращает активные категории по возрастанию sort_order.
	ListActive(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type ContentRepository interface {
	GetAll(ctx context.Context) ([]domain.ContentSection, error)
	Update(ctx context.Context, section string, content json.RawMessage) (*domain.ContentSection, error)
}

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	Upsert(ctx context.Context, admin *domain.AdminUser) (*domain.AdminUser, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, asset *domain.Asset) (string, error)
	Delete(ctx context.Context, key string) error
}

// CacheRepository — общий для инстансов кэш снимка каталога. Ошибки кэша не фатальны.
// Каждая запись изменяет эпоху кэша; снимок принимается только в той эпохе, в которой читался.
type CacheRepository interface {
	CatalogEpoch(ctx context.Context) (int64, error)
	GetCatalog(ctx context.Context) (*CachedCatalog, error)
	// SetCatalog возвращает e.ErrCatalogCacheStale, если эпоха сменилась после чтения catalog.Epoch.
	SetCatalog(ctx context.Context, catalog *CachedCatalog) error
	// InvalidateCatalog сдвигает эпоху и удаляет снимок.
	InvalidateCatalog(ctx context.Context) error
}

// Transactor выполняет fn в одной транзакции БД.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
