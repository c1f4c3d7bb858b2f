package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `id::text, name, description, category, image_url, price,
	stock_quantity, is_active, specifications, created_at, updated_at`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// ListActive возвращает активные товары, новые первыми.
func (p *ProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY created_at DESC, id`

	return p.list(ctx, query)
}

// ListAll возвращает все товары для панели администратора.
func (p *ProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id`

	return p.list(ctx, query)
}

func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = $1::uuid`

	model, err := scanProduct(tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query, id))
	if err != nil {
		if noRows(err) || invalidText(err) {
			return nil, e.Wrap(fmt.Sprintf("%s: id=%s", whereami.WhereAmI(), id), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// Create вставляет товар. ID генерируется вызывающим, временные метки — базой.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m := p.conv.ToModel(product)
	query := `
		INSERT INTO products (id, name, description, category, image_url, price, stock_quantity, is_active, specifications)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + productColumns

	model, err := scanProduct(tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query,
		m.ID, m.Name, m.Description, m.Category, m.ImageURL, m.Price, m.StockQuantity, m.IsActive, m.Specifications,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// Update заменяет изменяемые поля. updated_at не уменьшается, даже если часы сервера ушли назад.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m := p.conv.ToModel(product)
	query := `
		UPDATE products SET
			name = $2,
			description = $3,
			category = $4,
			image_url = $5,
			price = $6,
			stock_quantity = $7,
			is_active = $8,
			specifications = $9,
			updated_at = GREATEST(NOW(), updated_at)
		WHERE id = $1::uuid
		RETURNING ` + productColumns

	model, err := scanProduct(tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query,
		m.ID, m.Name, m.Description, m.Category, m.ImageURL, m.Price, m.StockQuantity, m.IsActive, m.Specifications,
	))
	if err != nil {
		if noRows(err) || invalidText(err) {
			return nil, e.Wrap(fmt.Sprintf("%s: id=%s", whereami.WhereAmI(), product.ID), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := tr.QuerierFromCtx(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1::uuid`, id)
	if err != nil {
		if invalidText(err) {
			return e.Wrap(fmt.Sprintf("%s: id=%s", whereami.WhereAmI(), id), e.ErrProductNotFound)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(fmt.Sprintf("%s: id=%s", whereami.WhereAmI(), id), e.ErrProductNotFound)
	}

	return nil
}

func (p *ProductRepo) list(ctx context.Context, query string) ([]domain.Product, error) {
	rows, err := tr.QuerierFromCtx(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Description, &model.Category, &model.ImageURL, &model.Price,
		&model.StockQuantity, &model.IsActive, &model.Specifications, &model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}
