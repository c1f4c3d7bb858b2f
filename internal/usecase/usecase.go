package usecase

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CatalogUC interface {
	Browse(ctx context.Context, req *BrowseReq) (*BrowseRes, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Content(ctx context.Context) (map[string]json.RawMessage, error)
}

type AdminUC interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, req *ProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error)
	UpdateContent(ctx context.Context, section string, content json.RawMessage) (*domain.ContentSection, error)
	UploadAsset(ctx context.Context, req *UploadAssetReq) (*UploadAssetRes, error)
	DeleteAsset(ctx context.Context, key string) error
	RefreshCatalog(ctx context.Context) (*CatalogSnapshot, error)
}

type AuthUC interface {
	Login(ctx context.Context, req *LoginReq) (*LoginRes, error)
	Authenticate(token string) (*Claims, error)
}
