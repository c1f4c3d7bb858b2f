package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// ListActive возвращает активные категории в порядке отображения.
func (c *CategoryRepo) ListActive(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id::text, name, description, image_url, sort_order, is_active, created_at
		FROM categories
		WHERE is_active
		ORDER BY sort_order, name
	`

	rows, err := tr.QuerierFromCtx(ctx, c.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Description, &model.ImageURL, &model.SortOrder, &model.IsActive, &model.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Create создаёт категорию. Повтор имени возвращает e.ErrCategoryExists.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	m := c.conv.ToModel(category)
	query := `
		INSERT INTO categories (id, name, description, image_url, sort_order, is_active)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING id::text, name, description, image_url, sort_order, is_active, created_at;
	`

	var model converter.CategoryModel
	if err := tr.QuerierFromCtx(ctx, c.pool).QueryRow(ctx, query,
		m.ID, m.Name, m.Description, m.ImageURL, m.SortOrder, m.IsActive,
	).Scan(
		&model.ID, &model.Name, &model.Description, &model.ImageURL, &model.SortOrder, &model.IsActive, &model.CreatedAt,
	); err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(fmt.Sprintf("%s: name=%s", whereami.WhereAmI(), category.Name), e.ErrCategoryExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}
