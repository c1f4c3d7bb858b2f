package domain

import "time"

// Category описывает категорию товаров
type Category struct {
	ID          string
	Name        string
	Description *string
	ImageURL    *string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
}

func NewCategory(name string, sortOrder int) *Category {
	return &Category{
		Name:      name,
		SortOrder: sortOrder,
		IsActive:  true,
	}
}

// CategoryNames возвращает имена категорий в исходном порядке.
func CategoryNames(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
