package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// AuthUseCase выдаёт и проверяет токены администраторов.
type AuthUseCase struct {
	adminRepo AdminRepository
	hasher    PasswordHasher
	tokens    TokenService
	logger    logger.Logger
}

func NewAuthUC(adminRepo AdminRepository, hasher PasswordHasher, tokens TokenService, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		adminRepo: adminRepo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
	}
}

// Login проверяет email и пароль и возвращает подписанный токен.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*LoginRes, error) {
	const op = "AuthUseCase.Login"

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, e.Wrap(op, e.ErrInvalidCredentialsReq)
	}

	admin, err := a.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrAdminNotFound) {
			a.logger.Infof("login attempt for unknown admin %s", email)
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if err := a.hasher.Compare(admin.PasswordHash, req.Password); err != nil {
		a.logger.Infof("login attempt with wrong password for %s", email)
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	token, expiresAt, err := a.tokens.GenerateToken(admin)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &LoginRes{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate разбирает токен из заголовка Authorization.
func (a *AuthUseCase) Authenticate(token string) (*Claims, error) {
	const op = "AuthUseCase.Authenticate"

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	claims, err := a.tokens.ParseToken(token)
	if err != nil {
		return nil, e.Wrap(op, errors.Join(e.ErrUnauthorized, err))
	}

	return claims, nil
}

// EnsureAdmin создаёт или обновляет учётную запись администратора из конфигурации.
func (a *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) (*domain.AdminUser, error) {
	const op = "AuthUseCase.EnsureAdmin"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	admin, err := a.adminRepo.Upsert(ctx, &domain.AdminUser{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("admin account %s is ready", admin.Email)
	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
