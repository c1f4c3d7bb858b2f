package catalog

import "github.com/DRSN-tech/storefront/internal/domain"

// CategoryCount — количество товаров в категории для подписи фильтра.
type CategoryCount struct {
	Category string
	Count    int
}

// CountByCategory считает товары по известным категориям на полном (неотфильтрованном) списке.
// Первым элементом идёт AllCategories с размером списка, далее категории в порядке categories.
func CountByCategory(products []domain.Product, categories []string) []CategoryCount {
	byName := make(map[string]int, len(categories))
	for i := range products {
		byName[products[i].Category]++
	}

	counts := make([]CategoryCount, 0, len(categories)+1)
	counts = append(counts, CategoryCount{Category: AllCategories, Count: len(products)})
	for _, name := range categories {
		if name == AllCategories {
			continue
		}
		counts = append(counts, CategoryCount{Category: name, Count: byName[name]})
	}

	return counts
}
