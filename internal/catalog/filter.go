// Package catalog содержит чистые функции отбора и сортировки товаров витрины.
// Функции пакета не выполняют I/O и не изменяют входные данные.
package catalog

import (
	"fmt"
	"math"

	"github.com/DRSN-tech/storefront/pkg/e"
)

// AllCategories — значение фильтра категории, при котором категория не ограничивается.
const AllCategories = "All"

// MaxPrice — верхняя граница цены в конфигурации по умолчанию.
const MaxPrice int64 = math.MaxInt64

// SortKey задаёт порядок выдачи.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCategory SortKey = "category"
	SortByNewest   SortKey = "newest"
)

// ParseSortKey разбирает ключ сортировки. Пустая строка означает SortByNewest.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByNewest, nil
	case SortByName, SortByCategory, SortByNewest:
		return SortKey(s), nil
	default:
		return "", e.Wrap(fmt.Sprintf("sort=%q", s), e.ErrUnknownSortKey)
	}
}

// PriceRange — включительный диапазон цен [Min, Max].
type PriceRange struct {
	Min int64
	Max int64
}

// Contains сообщает, попадает ли цена в диапазон.
func (r PriceRange) Contains(price int64) bool {
	return price >= r.Min && price <= r.Max
}

// FilterConfig — набор активных фильтров и сортировки витрины.
type FilterConfig struct {
	Category    string
	SearchText  string
	PriceRange  PriceRange
	InStockOnly bool
	SortKey     SortKey
}

// DefaultFilterConfig возвращает конфигурацию, которая пропускает все товары
// и сортирует их от новых к старым.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Category:   AllCategories,
		PriceRange: PriceRange{Min: 0, Max: MaxPrice},
		SortKey:    SortByNewest,
	}
}

// Validate проверяет конфигурацию, пришедшую извне. Apply корректно работает и с невалидной.
func (c FilterConfig) Validate() error {
	if c.PriceRange.Min < 0 || c.PriceRange.Max < 0 || c.PriceRange.Min > c.PriceRange.Max {
		return e.Wrap(fmt.Sprintf("price range [%d, %d]", c.PriceRange.Min, c.PriceRange.Max), e.ErrInvalidPriceRange)
	}

	if _, err := ParseSortKey(string(c.SortKey)); err != nil {
		return err
	}

	return nil
}
