package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const maxJSONBody = 1 << 20

type claimsKey struct{}

// AuthHandler выдаёт токены и проверяет их на админских маршрутах.
type AuthHandler struct {
	authUC usecase.AuthUC
	logger logger.Logger
}

func NewAuthHandler(authUC usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUC: authUC, logger: logger}
}

// login
//
//	@Summary	Вход администратора
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LoginRequest	true	"Email и пароль"
//	@Success	200		{object}	LoginResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := decodeJSON(w, r, &body, maxJSONBody); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.authUC.Login(r.Context(), usecase.NewLoginReq(body.Email, body.Password))
	if err != nil {
		h.logger.Infof("login failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, LoginResponse{Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// requireAdmin пропускает запрос только с валидным Bearer-токеном.
func (h *AuthHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			WriteError(w, e.ErrUnauthorized)
			return
		}

		claims, err := h.authUC.Authenticate(token)
		if err != nil {
			h.logger.Debugf("rejected admin token: %v", err)
			WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// claimsFromCtx возвращает администратора, прошедшего requireAdmin.
func claimsFromCtx(ctx context.Context) *usecase.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*usecase.Claims)
	return claims
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
