package converter

import (
	"encoding/json"
	"time"
)

// CatalogRedisModel — снимок каталога в том виде, в каком он лежит в Redis.
type CatalogRedisModel struct {
	Schema     int                  `json:"schema"`
	Epoch      int64                `json:"epoch"`
	Products   []ProductRedisModel  `json:"products"`
	Categories []CategoryRedisModel `json:"categories"`
	CachedAt   time.Time            `json:"cached_at"`
}

type ProductRedisModel struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	Category       string          `json:"category"`
	ImageURL       *string         `json:"image_url,omitempty"`
	Price          *int64          `json:"price,omitempty"`
	StockQuantity  int64           `json:"stock_quantity"`
	IsActive       bool            `json:"is_active"`
	Specifications json.RawMessage `json:"specifications,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CategoryRedisModel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
