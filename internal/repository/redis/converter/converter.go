package converter

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// CatalogSchema меняется вместе с форматом CatalogRedisModel; записи другой схемы считаются промахом.
const CatalogSchema = 2

// CatalogConverter преобразует снимок каталога между usecase и моделью Redis.
type CatalogConverter interface {
	ToRedisModel(catalog *usecase.CachedCatalog, cachedAt time.Time) *CatalogRedisModel
	ToUseCase(model *CatalogRedisModel) *usecase.CachedCatalog
}

type CatalogConverterImpl struct{}

func (CatalogConverterImpl) ToRedisModel(catalog *usecase.CachedCatalog, cachedAt time.Time) *CatalogRedisModel {
	if catalog == nil {
		return nil
	}

	model := &CatalogRedisModel{
		Schema:     CatalogSchema,
		Epoch:      catalog.Epoch,
		Products:   make([]ProductRedisModel, 0, len(catalog.Products)),
		Categories: make([]CategoryRedisModel, 0, len(catalog.Categories)),
		CachedAt:   cachedAt,
	}
	for _, p := range catalog.Products {
		model.Products = append(model.Products, ProductRedisModel{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			Category:       p.Category,
			ImageURL:       p.ImageURL,
			Price:          p.Price,
			StockQuantity:  p.StockQuantity,
			IsActive:       p.IsActive,
			Specifications: p.Specifications,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		})
	}
	for _, c := range catalog.Categories {
		model.Categories = append(model.Categories, CategoryRedisModel{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			ImageURL:    c.ImageURL,
			SortOrder:   c.SortOrder,
			IsActive:    c.IsActive,
			CreatedAt:   c.CreatedAt,
		})
	}

	return model
}

func (CatalogConverterImpl) ToUseCase(model *CatalogRedisModel) *usecase.CachedCatalog {
	if model == nil {
		return nil
	}

	catalog := &usecase.CachedCatalog{
		Products:   make([]domain.Product, 0, len(model.Products)),
		Categories: make([]domain.Category, 0, len(model.Categories)),
		Epoch:      model.Epoch,
	}
	for _, p := range model.Products {
		catalog.Products = append(catalog.Products, domain.Product{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			Category:       p.Category,
			ImageURL:       p.ImageURL,
			Price:          p.Price,
			StockQuantity:  p.StockQuantity,
			IsActive:       p.IsActive,
			Specifications: p.Specifications,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		})
	}
	for _, c := range model.Categories {
		catalog.Categories = append(catalog.Categories, domain.Category{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			ImageURL:    c.ImageURL,
			SortOrder:   c.SortOrder,
			IsActive:    c.IsActive,
			CreatedAt:   c.CreatedAt,
		})
	}

	return catalog
}
