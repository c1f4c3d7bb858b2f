package catalog

import (
	"slices"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// Apply отбирает товары по конфигурации и сортирует результат.
// Фильтры применяются по очереди: категория, текст, цена, наличие; затем стабильная сортировка.
// Возвращает новый срез (пустой, но не nil, если ничего не подошло); products не изменяется.
func Apply(products []domain.Product, cfg FilterConfig) []domain.Product {
	search := strings.ToLower(cfg.SearchText)

	result := make([]domain.Product, 0, len(products))
	for i := range products {
		p := &products[i]

		if !matchesCategory(p, cfg.Category) ||
			!matchesSearch(p, search) ||
			!cfg.PriceRange.Contains(p.PriceOrZero()) ||
			(cfg.InStockOnly && !p.InStock()) {
			continue
		}

		result = append(result, *p)
	}

	sortProducts(result, cfg.SortKey)

	return result
}

func matchesCategory(p *domain.Product, category string) bool {
	return category == AllCategories || p.Category == category
}

// matchesSearch ожидает search уже в нижнем регистре.
func matchesSearch(p *domain.Product, search string) bool {
	if search == "" {
		return true
	}

	if strings.Contains(strings.ToLower(p.Name), search) {
		return true
	}

	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), search)
}

// Paginate возвращает страницу page (с единицы) размером perPage.
// perPage <= 0 отключает пагинацию. Страница за пределами списка пуста.
func Paginate(products []domain.Product, page, perPage int) []domain.Product {
	if perPage <= 0 {
		return products
	}

	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(products) || start < 0 {
		return []domain.Product{}
	}

	end := min(start+perPage, len(products))

	return slices.Clip(products[start:end])
}
