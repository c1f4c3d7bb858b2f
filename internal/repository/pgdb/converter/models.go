package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Description    *string   `db:"description"`
	Category       string    `db:"category"`
	ImageURL       *string   `db:"image_url"`
	Price          *int64    `db:"price"`
	StockQuantity  int64     `db:"stock_quantity"`
	IsActive       bool      `db:"is_active"`
	Specifications []byte    `db:"specifications"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	ImageURL    *string   `db:"image_url"`
	SortOrder   int       `db:"sort_order"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

// ContentModel представляет запись таблицы landing_content.
type ContentModel struct {
	Section   string    `db:"section"`
	Content   []byte    `db:"content"`
	UpdatedAt time.Time `db:"updated_at"`
}

type AdminModel struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	EntityID    string     `db:"entity_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
