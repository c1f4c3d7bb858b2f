package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/storefront/internal/catalog"
	"github.com/DRSN-tech/storefront/internal/domain"
)

// CATALOG USECASE

// CatalogSnapshot — неизменяемый снимок каталога, по которому выполняется фильтрация.
type CatalogSnapshot struct {
	Products   []domain.Product
	Categories []domain.Category
	Version    string // отпечаток содержимого, используется как ETag
	LoadedAt   time.Time
	generation uint64
}

// CachedCatalog — то, что хранится в общем кэше.
type CachedCatalog struct {
	Products   []domain.Product
	Categories []domain.Category
	Epoch      int64 // эпоха кэша на момент чтения из БД
}

// BrowseReq — запрос витрины: фильтры и страница.
type BrowseReq struct {
	Filter  catalog.FilterConfig
	Page    int
	PerPage int
}

// BrowseRes — отфильтрованная страница и счётчики по категориям.
type BrowseRes struct {
	Products []domain.Product
	Total    int // количество товаров после фильтрации, до пагинации
	Counts   []catalog.CategoryCount
	Version  string
}

// ADMIN USECASE

// ProductReq — данные товара из формы администратора.
type ProductReq struct {
	Name           string  `validate:"required,max=200"`
	Description    *string `validate:"omitempty,max=5000"`
	Category       string  `validate:"required,max=100"`
	ImageURL       *string `validate:"omitempty,url"`
	Price          *int64  `validate:"omitempty,gte=0"`
	StockQuantity  int64   `validate:"gte=0"`
	IsActive       bool
	Specifications json.RawMessage
}

// CategoryReq — данные новой категории.
type CategoryReq struct {
	Name        string  `validate:"required,max=100"`
	Description *string `validate:"omitempty,max=2000"`
	ImageURL    *string `validate:"omitempty,url"`
	SortOrder   int     `validate:"gte=0"`
}

// UploadAssetReq — файл, загруженный через multipart/form-data.
type UploadAssetReq struct {
	Kind     domain.AssetKind
	Data     []byte
	MimeType string
	Name     string // оригинальное имя файла (для логов и расширения)
}

// UploadAssetRes — ключ объекта и публичная ссылка на него.
type UploadAssetRes struct {
	Key string
	URL string
}

// AUTH USECASE

type LoginReq struct {
	Email    string
	Password string
}

type LoginRes struct {
	Token     string
	ExpiresAt time.Time
}

// Claims — данные администратора из токена.
type Claims struct {
	AdminID int64
	Email   string
}

// MAPPERS

func NewBrowseReq(filter catalog.FilterConfig, page, perPage int) *BrowseReq {
	return &BrowseReq{
		Filter:  filter,
		Page:    page,
		PerPage: perPage,
	}
}

func NewUploadAssetReq(kind domain.AssetKind, data []byte, mimeType string, name string) *UploadAssetReq {
	return &UploadAssetReq{
		Kind:     kind,
		Data:     data,
		MimeType: mimeType,
		Name:     name,
	}
}

func NewUploadAssetRes(key string, url string) *UploadAssetRes {
	return &UploadAssetRes{
		Key: key,
		URL: url,
	}
}

func NewLoginReq(email, password string) *LoginReq {
	return &LoginReq{Email: email, Password: password}
}

// ToProduct переносит поля формы в сущность. ID и временные метки не трогаются.
func (r *ProductReq) ToProduct(p *domain.Product) {
	p.Name = r.Name
	p.Description = r.Description
	p.Category = r.Category
	p.ImageURL = r.ImageURL
	p.Price = r.Price
	p.StockQuantity = r.StockQuantity
	p.IsActive = r.IsActive
	p.Specifications = r.Specifications
}
