package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/storefront/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	servertiming "github.com/mitchellh/go-server-timing"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
	cfg    *cfg.Config
}

func NewRouter(router *chi.Mux, logger logger.Logger, cfg *cfg.Config) *Router {
	return &Router{router: router, logger: logger, cfg: cfg}
}

// Init регистрирует маршруты и возвращает обработчик с заголовком Server-Timing.
func (r *Router) Init(catalogUC usecase.CatalogUC, adminUC usecase.AdminUC, authUC usecase.AuthUC) http.Handler {
	r.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(r.logger),
		middleware.Recoverer,
	)

	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.cfg.Http.SwaggerURL), // ссылка на JSON
	))

	catalogHandler := NewCatalogHandler(catalogUC, r.logger, r.cfg.Catalog.MaxPerPage)
	authHandler := NewAuthHandler(authUC, r.logger)
	adminHandler := NewAdminHandler(adminUC, r.logger, r.cfg.Minio.MaxUploadSize)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerCatalogRoutes(v1, catalogHandler)
		v1.Post("/auth/login", authHandler.login)

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(authHandler.requireAdmin)
			registerAdminRoutes(admin, adminHandler)
		})
	})

	return servertiming.Middleware(r.router, nil)
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Get("/products", h.listProducts)
	router.Get("/products/{id}", h.getProduct)
	router.Get("/categories", h.listCategories)
	router.Get("/content", h.getContent)
}

func registerAdminRoutes(router chi.Router, h *AdminHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Post("/", h.createProduct)
		pr.Put("/{id}", h.updateProduct)
		pr.Delete("/{id}", h.deleteProduct)
	})
	router.Post("/categories", h.createCategory)
	router.Put("/content/{section}", h.updateContent)
	router.Post("/assets", h.uploadAsset)
	router.Delete("/assets", h.deleteAsset)
	router.Post("/catalog/reload", h.reloadCatalog)
}

// requestLogger пишет одну строку на запрос через общий логгер.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Infof("%s %s %d %dB %s request_id=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
