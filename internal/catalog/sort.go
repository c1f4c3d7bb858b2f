package catalog

import (
	"slices"

	"github.com/DRSN-tech/storefront/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortProducts сортирует срез на месте. Сортировка стабильная: товары с равным ключом
// сохраняют исходный взаимный порядок. Неизвестный ключ сортирует как SortByNewest.
func sortProducts(products []domain.Product, key SortKey) {
	switch key {
	case SortByName:
		col := newCollator()
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	case SortByCategory:
		col := newCollator()
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return col.CompareString(a.Category, b.Category)
		})
	default:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

// Collator хранит внутренние буферы и не потокобезопасен, поэтому создаётся на каждый вызов.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}
