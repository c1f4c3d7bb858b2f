package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToModel(entity *domain.Category) *CategoryModel
	ToEntity(model *CategoryModel) *domain.Category
}

type ContentConverter interface {
	ToEntity(model *ContentModel) *domain.ContentSection
}

type AdminConverter interface {
	ToModel(entity *domain.AdminUser) *AdminModel
	ToEntity(model *AdminModel) *domain.AdminUser
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}
	return &ProductModel{
		ID:             entity.ID,
		Name:           entity.Name,
		Description:    entity.Description,
		Category:       entity.Category,
		ImageURL:       entity.ImageURL,
		Price:          entity.Price,
		StockQuantity:  entity.StockQuantity,
		IsActive:       entity.IsActive,
		Specifications: ConvertRawJSON(entity.Specifications),
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}
	return &domain.Product{
		ID:             model.ID,
		Name:           model.Name,
		Description:    model.Description,
		Category:       model.Category,
		ImageURL:       model.ImageURL,
		Price:          model.Price,
		StockQuantity:  model.StockQuantity,
		IsActive:       model.IsActive,
		Specifications: json.RawMessage(model.Specifications),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

type CategoryConverterImpl struct{}

func (CategoryConverterImpl) ToModel(entity *domain.Category) *CategoryModel {
	if entity == nil {
		return nil
	}
	return &CategoryModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		ImageURL:    entity.ImageURL,
		SortOrder:   entity.SortOrder,
		IsActive:    entity.IsActive,
		CreatedAt:   entity.CreatedAt,
	}
}

func (CategoryConverterImpl) ToEntity(model *CategoryModel) *domain.Category {
	if model == nil {
		return nil
	}
	return &domain.Category{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		ImageURL:    model.ImageURL,
		SortOrder:   model.SortOrder,
		IsActive:    model.IsActive,
		CreatedAt:   model.CreatedAt,
	}
}

type ContentConverterImpl struct{}

func (ContentConverterImpl) ToEntity(model *ContentModel) *domain.ContentSection {
	if model == nil {
		return nil
	}
	return &domain.ContentSection{
		Section:   model.Section,
		Content:   json.RawMessage(model.Content),
		UpdatedAt: model.UpdatedAt,
	}
}

type AdminConverterImpl struct{}

func (AdminConverterImpl) ToModel(entity *domain.AdminUser) *AdminModel {
	if entity == nil {
		return nil
	}
	return &AdminModel{
		ID:           entity.ID,
		Email:        entity.Email,
		PasswordHash: entity.PasswordHash,
		CreatedAt:    entity.CreatedAt,
	}
}

func (AdminConverterImpl) ToEntity(model *AdminModel) *domain.AdminUser {
	if model == nil {
		return nil
	}
	return &domain.AdminUser{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
	}
}

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		EntityID:    entity.EntityID,
		Payload:     ConvertRawJSON(entity.Payload),
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		EntityID:    model.EntityID,
		Payload:     json.RawMessage(model.Payload),
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	if models == nil {
		return nil
	}
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, c.ToEntity(m))
	}
	return out
}

// ConvertRawJSON возвращает nil для пустого JSON, чтобы в JSONB попал NULL.
func ConvertRawJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
