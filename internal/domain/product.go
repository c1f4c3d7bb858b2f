package domain

import (
	"encoding/json"
	"time"
)

// Product описывает товар витрины.
type Product struct {
	ID             string // uuid, неизменяемый
	Name           string
	Description    *string
	Category       string // имя категории, сравнивается точно
	ImageURL       *string
	Price          *int64 // целые денежные единицы, nil — цена не указана
	StockQuantity  int64
	IsActive       bool
	Specifications json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceOrZero возвращает цену, считая отсутствующую равной нулю.
func (p *Product) PriceOrZero() int64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// InStock сообщает, есть ли товар на складе.
func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

func NewProduct(name string, category string) *Product {
	return &Product{
		Name:     name,
		Category: category,
		IsActive: true,
	}
}
