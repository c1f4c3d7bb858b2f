package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/storefront/internal/catalog"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Category       string          `json:"category"`
	ImageURL       *string         `json:"image_url"`
	Price          *int64          `json:"price"`
	StockQuantity  int64           `json:"stock_quantity"`
	InStock        bool            `json:"in_stock"`
	IsActive       bool            `json:"is_active"`
	Specifications json.RawMessage `json:"specifications,omitempty" swaggertype:"object"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type BrowseResponse struct {
	Products []ProductResponse       `json:"products"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PerPage  int                     `json:"per_page"`
	Counts   []CategoryCountResponse `json:"counts"`
}

type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	SortOrder   int     `json:"sort_order"`
}

type ContentSectionResponse struct {
	Section   string          `json:"section"`
	Content   json.RawMessage `json:"content" swaggertype:"object"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductRequest struct {
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	Category       string           `json:"category"`
	ImageURL       *string          `json:"image_url"`
	Price          *decimal.Decimal `json:"price" swaggertype:"number"`
	StockQuantity  int64            `json:"stock_quantity"`
	IsActive       *bool            `json:"is_active"`
	Specifications json.RawMessage  `json:"specifications" swaggertype:"object"`
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	SortOrder   int     `json:"sort_order"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AssetResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ReloadResponse struct {
	Version    string    `json:"version"`
	Products   int       `json:"products"`
	Categories int       `json:"categories"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// toUseCase переводит тело запроса в форму usecase. Отсутствующий is_active означает true.
func (p *ProductRequest) toUseCase() (*usecase.ProductReq, error) {
	req := &usecase.ProductReq{
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		StockQuantity:  p.StockQuantity,
		IsActive:       true,
		Specifications: p.Specifications,
	}

	if p.IsActive != nil {
		req.IsActive = *p.IsActive
	}

	if p.Price != nil {
		price, err := priceFromDecimal(*p.Price)
		if err != nil {
			return nil, err
		}
		req.Price = &price
	}

	return req, nil
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		Price:          p.Price,
		StockQuantity:  p.StockQuantity,
		InStock:        p.InStock(),
		IsActive:       p.IsActive,
		Specifications: p.Specifications,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		SortOrder:   c.SortOrder,
	}
}

func toCountResponses(counts []catalog.CategoryCount) []CategoryCountResponse {
	out := make([]CategoryCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, CategoryCountResponse{Category: c.Category, Count: c.Count})
	}
	return out
}
