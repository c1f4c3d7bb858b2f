package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AdminUseCase реализует операции панели администратора.
// Каждое изменение каталога пишется в одной транзакции с событием outbox,
// после коммита общий кэш и локальный снимок сбрасываются.
type AdminUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	contentRepo  ContentRepository
	outboxRepo   OutboxRepository
	tx           Transactor
	assetsInfra  AssetsInfra
	cacheRepo    CacheRepository
	catalog      CatalogReloader
	validate     *validator.Validate
	logger       logger.Logger
	now          func() time.Time
}

func NewAdminUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	contentRepo ContentRepository,
	outboxRepo OutboxRepository,
	tx Transactor,
	assetsInfra AssetsInfra,
	cacheRepo CacheRepository,
	catalog CatalogReloader,
	logger logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		contentRepo:  contentRepo,
		outboxRepo:   outboxRepo,
		tx:           tx,
		assetsInfra:  assetsInfra,
		cacheRepo:    cacheRepo,
		catalog:      catalog,
		validate:     validator.New(),
		logger:       logger,
		now:          time.Now,
	}
}

// ListProducts возвращает все товары, включая скрытые.
func (a *AdminUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "AdminUseCase.ListProducts"

	products, err := a.productRepo.ListAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// CreateProduct создаёт товар и событие product.created.
func (a *AdminUseCase) CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.CreateProduct"

	if err := a.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := &domain.Product{ID: uuid.NewString()}
	req.ToProduct(product)

	var created *domain.Product
	err := a.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = a.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}

		return a.writeEvent(ctx, ProductCreated, created.ID, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.afterWrite(ctx, op)
	return created, nil
}

// UpdateProduct заменяет изменяемые поля товара. ID и created_at не меняются.
func (a *AdminUseCase) UpdateProduct(ctx context.Context, id string, req *ProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.UpdateProduct"

	if err := a.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Product
	err := a.tx.Do(ctx, func(ctx context.Context) error {
		existing, err := a.productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		req.ToProduct(existing)
		updated, err = a.productRepo.Update(ctx, existing)
		if err != nil {
			return err
		}

		return a.writeEvent(ctx, ProductUpdated, updated.ID, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.afterWrite(ctx, op)
	return updated, nil
}

// DeleteProduct удаляет товар и пишет событие product.deleted.
func (a *AdminUseCase) DeleteProduct(ctx context.Context, id string) error {
	const op = "AdminUseCase.DeleteProduct"

	err := a.tx.Do(ctx, func(ctx context.Context) error {
		if err := a.productRepo.Delete(ctx, id); err != nil {
			return err
		}

		return a.writeEvent(ctx, ProductDeleted, id, map[string]string{"id": id})
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	a.afterWrite(ctx, op)
	return nil
}

// CreateCategory создаёт категорию. Имя категории уникально.
func (a *AdminUseCase) CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error) {
	const op = "AdminUseCase.CreateCategory"

	req.Name = strings.TrimSpace(req.Name)
	if err := a.validate.Struct(req); err != nil {
		return nil, e.Wrap(op, translateValidationErr(err))
	}

	category := domain.NewCategory(req.Name, req.SortOrder)
	category.ID = uuid.NewString()
	category.Description = req.Description
	category.ImageURL = req.ImageURL

	var created *domain.Category
	err := a.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = a.categoryRepo.Create(ctx, category)
		if err != nil {
			return err
		}

		return a.writeEvent(ctx, CategoryCreated, created.ID, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.afterWrite(ctx, op)
	return created, nil
}

// UpdateContent заменяет содержимое существующей секции страницы.
func (a *AdminUseCase) UpdateContent(ctx context.Context, section string, content json.RawMessage) (*domain.ContentSection, error) {
	const op = "AdminUseCase.UpdateContent"

	section = strings.TrimSpace(section)
	if section == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	if !isJSONObject(content) {
		return nil, e.Wrap(op, e.ErrInvalidContent)
	}

	updated, err := a.contentRepo.Update(ctx, section, content)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

// UploadAsset сохраняет файл и возвращает его публичный URL.
func (a *AdminUseCase) UploadAsset(ctx context.Context, req *UploadAssetReq) (*UploadAssetRes, error) {
	const op = "AdminUseCase.UploadAsset"

	if len(req.Data) == 0 {
		return nil, e.Wrap(op, e.ErrNoFile)
	}

	res, err := a.assetsInfra.UploadAsset(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// DeleteAsset удаляет ранее загруженный файл по ключу объекта.
func (a *AdminUseCase) DeleteAsset(ctx context.Context, key string) error {
	const op = "AdminUseCase.DeleteAsset"

	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") {
		return e.Wrap(op, e.ErrInvalidAssetKey)
	}

	if err := a.assetsInfra.DeleteAsset(ctx, key); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// RefreshCatalog сбрасывает кэш и синхронно перечитывает каталог из базы.
func (a *AdminUseCase) RefreshCatalog(ctx context.Context) (*CatalogSnapshot, error) {
	const op = "AdminUseCase.RefreshCatalog"

	a.afterWrite(ctx, op)

	snap, err := a.catalog.Reload(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return snap, nil
}

// writeEvent записывает событие outbox в текущую транзакцию.
func (a *AdminUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, entityID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = a.outboxRepo.Create(ctx, NewOutboxEvent(eventType, entityID, data, a.now().UTC()))
	return err
}

// afterWrite сбрасывает общий кэш и локальный снимок. Ошибка кэша не отменяет изменение.
func (a *AdminUseCase) afterWrite(ctx context.Context, op string) {
	if err := a.cacheRepo.InvalidateCatalog(ctx); err != nil {
		a.logger.Warnf("Failed to drop catalog cache: %v", e.Wrap(op, err))
	}

	a.catalog.Invalidate()
}

// validateProduct нормализует и проверяет данные товара.
func (a *AdminUseCase) validateProduct(req *ProductReq) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Description = trimToNil(req.Description)
	req.ImageURL = trimToNil(req.ImageURL)

	if len(req.Specifications) > 0 && !json.Valid(req.Specifications) {
		return e.ErrInvalidJSON
	}

	if err := a.validate.Struct(req); err != nil {
		return translateValidationErr(err)
	}

	return nil
}

// translateValidationErr сводит ошибку валидатора к ошибке из пакета e по первому полю.
func translateValidationErr(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	fe := vErrs[0]
	switch fe.StructField() {
	case "Name":
		if fe.Tag() == "required" {
			if fe.StructNamespace() == "CategoryReq.Name" {
				return e.ErrCategoryNameRequired
			}
			return e.ErrProductNameRequired
		}
	case "Category":
		return e.ErrCategoryRequired
	case "Price":
		return e.ErrInvalidPrice
	case "StockQuantity":
		return e.ErrInvalidStock
	}

	return e.Wrap(fmt.Sprintf("field %s failed %q", fe.Field(), fe.Tag()), e.ErrStatusBadRequest)
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
