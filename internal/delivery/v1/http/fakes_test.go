package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/catalog"
	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const validToken = "valid-token"

type fakeCatalogUC struct {
	mu       sync.Mutex
	lastReq  *usecase.BrowseReq
	products []domain.Product
	version  string
	err      error
}

func (f *fakeCatalogUC) Browse(_ context.Context, req *usecase.BrowseReq) (*usecase.BrowseRes, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	filtered := catalog.Apply(f.products, req.Filter)
	return &usecase.BrowseRes{
		Products: catalog.Paginate(filtered, req.Page, req.PerPage),
		Total:    len(filtered),
		Counts:   catalog.CountByCategory(f.products, []string{"Ceramics", "Textiles"}),
		Version:  f.version,
	}, nil
}

func (f *fakeCatalogUC) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeCatalogUC) Categories(context.Context) ([]domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Category{{ID: "c1", Name: "Ceramics", SortOrder: 1}}, nil
}

func (f *fakeCatalogUC) Content(context.Context) (map[string]json.RawMessage, error) {
	return map[string]json.RawMessage{"hero": json.RawMessage(`{"title":"Hi"}`)}, nil
}

func (f *fakeCatalogUC) request() *usecase.BrowseReq {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

const knownProductID = "3f2b8c1e-6d4a-4e8b-9c7f-1a2b3c4d5e6f"

type fakeAdminUC struct {
	touched     []string // id, дошедшие до UpdateProduct и DeleteProduct
	created     *usecase.ProductReq
	uploaded    *usecase.UploadAssetReq
	deletedKey  string
	createErr   error
	contentSeen json.RawMessage
}

func (f *fakeAdminUC) ListProducts(context.Context) ([]domain.Product, error) {
	return []domain.Product{{ID: "p1", Name: "Hidden", IsActive: false}}, nil
}

func (f *fakeAdminUC) CreateProduct(_ context.Context, req *usecase.ProductReq) (*domain.Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = req
	p := &domain.Product{ID: "new-id", CreatedAt: time.Now()}
	req.ToProduct(p)
	return p, nil
}

func (f *fakeAdminUC) UpdateProduct(_ context.Context, id string, req *usecase.ProductReq) (*domain.Product, error) {
	f.touched = append(f.touched, id)
	if id != knownProductID {
		return nil, e.ErrProductNotFound
	}
	p := &domain.Product{ID: id}
	req.ToProduct(p)
	return p, nil
}

func (f *fakeAdminUC) DeleteProduct(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	if id != knownProductID {
		return e.ErrProductNotFound
	}
	return nil
}

func (f *fakeAdminUC) CreateCategory(_ context.Context, req *usecase.CategoryReq) (*domain.Category, error) {
	if req.Name == "Ceramics" {
		return nil, e.ErrCategoryExists
	}
	return &domain.Category{ID: "c2", Name: req.Name, SortOrder: req.SortOrder, IsActive: true}, nil
}

func (f *fakeAdminUC) UpdateContent(_ context.Context, section string, content json.RawMessage) (*domain.ContentSection, error) {
	if section != "hero" {
		return nil, e.ErrContentSectionNotFound
	}
	f.contentSeen = content
	return &domain.ContentSection{Section: section, Content: content, UpdatedAt: time.Now()}, nil
}

func (f *fakeAdminUC) UploadAsset(_ context.Context, req *usecase.UploadAssetReq) (*usecase.UploadAssetRes, error) {
	f.uploaded = req
	key := req.Kind.Prefix() + "/asset.png"
	return usecase.NewUploadAssetRes(key, "http://assets/"+key), nil
}

func (f *fakeAdminUC) DeleteAsset(_ context.Context, key string) error {
	if key == "" {
		return e.ErrInvalidAssetKey
	}
	f.deletedKey = key
	return nil
}

func (f *fakeAdminUC) RefreshCatalog(context.Context) (*usecase.CatalogSnapshot, error) {
	return &usecase.CatalogSnapshot{
		Products: []domain.Product{{ID: "p1"}},
		Version:  "v2",
		LoadedAt: time.Now(),
	}, nil
}

type fakeAuthUC struct{}

func (fakeAuthUC) Login(_ context.Context, req *usecase.LoginReq) (*usecase.LoginRes, error) {
	if req.Email != "admin@example.com" || req.Password != "secret" {
		return nil, e.ErrInvalidCredentials
	}
	return &usecase.LoginRes{Token: validToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeAuthUC) Authenticate(token string) (*usecase.Claims, error) {
	if token != validToken {
		return nil, e.ErrUnauthorized
	}
	return &usecase.Claims{AdminID: 1, Email: "admin@example.com"}, nil
}

type testServer struct {
	handler http.Handler
	catalog *fakeCatalogUC
	admin   *fakeAdminUC
}

func newTestServer(products []domain.Product) *testServer {
	config := &cfg.Config{
		Http:    &cfg.HTTPConfig{SwaggerURL: "/swagger/doc.json"},
		Catalog: &cfg.CatalogCfg{MaxPerPage: 50},
		Minio:   &cfg.MinIOCfg{MaxUploadSize: 1 << 20},
	}

	catalogUC := &fakeCatalogUC{products: products, version: "v1"}
	adminUC := &fakeAdminUC{}
	router := NewRouter(chi.NewRouter(), logger.NewDiscardLogger(), config)

	return &testServer{
		handler: router.Init(catalogUC, adminUC, fakeAuthUC{}),
		catalog: catalogUC,
		admin:   adminUC,
	}
}
