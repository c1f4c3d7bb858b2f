package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type AssetsInfra interface {
	UploadAsset(ctx context.Context, req *UploadAssetReq) (*UploadAssetRes, error)
	DeleteAsset(ctx context.Context, key string) error
}

type MessageProducer interface {
	PublishEvent(ctx context.Context, event *OutboxEvent) error
}

type TokenService interface {
	GenerateToken(admin *domain.AdminUser) (string, time.Time, error)
	ParseToken(token string) (*Claims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// CatalogInvalidator помечает локальный снимок каталога устаревшим.
type CatalogInvalidator interface {
	Invalidate()
}

type CatalogReloader interface {
	CatalogInvalidator
	Reload(ctx context.Context) (*CatalogSnapshot, error)
}
