package pgdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ContentRepo хранит тексты лендинга по секциям.
type ContentRepo struct {
	pool *pgxpool.Pool
	conv converter.ContentConverter
}

func NewContentRepo(pool *pgxpool.Pool, conv converter.ContentConverter) *ContentRepo {
	return &ContentRepo{pool: pool, conv: conv}
}

func (c *ContentRepo) GetAll(ctx context.Context) ([]domain.ContentSection, error) {
	rows, err := c.pool.Query(ctx, `SELECT section, content, updated_at FROM landing_content ORDER BY section`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.ContentSection, 0)
	for rows.Next() {
		var model converter.ContentModel
		if err := rows.Scan(&model.Section, &model.Content, &model.UpdatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Update заменяет содержимое секции. Новые секции не создаются.
func (c *ContentRepo) Update(ctx context.Context, section string, content json.RawMessage) (*domain.ContentSection, error) {
	query := `
		UPDATE landing_content
		SET content = $2, updated_at = NOW()
		WHERE section = $1
		RETURNING section, content, updated_at
	`

	var model converter.ContentModel
	if err := c.pool.QueryRow(ctx, query, section, []byte(content)).
		Scan(&model.Section, &model.Content, &model.UpdatedAt); err != nil {
		if noRows(err) {
			return nil, e.Wrap(fmt.Sprintf("%s: section=%s", whereami.WhereAmI(), section), e.ErrContentSectionNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}
