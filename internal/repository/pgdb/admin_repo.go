package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	conv converter.AdminConverter
}

func NewAdminRepo(pool *pgxpool.Pool, conv converter.AdminConverter) *AdminRepo {
	return &AdminRepo{pool: pool, conv: conv}
}

// GetByEmail ищет администратора по email в нижнем регистре.
func (a *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = $1`

	var model converter.AdminModel
	if err := a.pool.QueryRow(ctx, query, email).
		Scan(&model.ID, &model.Email, &model.PasswordHash, &model.CreatedAt); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAdminNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

// Upsert создаёт администратора или обновляет хэш пароля существующего.
func (a *AdminRepo) Upsert(ctx context.Context, admin *domain.AdminUser) (*domain.AdminUser, error) {
	m := a.conv.ToModel(admin)
	query := `
		INSERT INTO admin_users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email)
		DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, email, password_hash, created_at
	`

	var model converter.AdminModel
	if err := a.pool.QueryRow(ctx, query, m.Email, m.PasswordHash).
		Scan(&model.ID, &model.Email, &model.PasswordHash, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}
