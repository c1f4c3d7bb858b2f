package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const multipartMemory = 8 << 20

// AdminHandler обслуживает панель администратора.
type AdminHandler struct {
	adminUC       usecase.AdminUC
	logger        logger.Logger
	maxUploadSize int64
}

func NewAdminHandler(adminUC usecase.AdminUC, logger logger.Logger, maxUploadSize int64) *AdminHandler {
	return &AdminHandler{adminUC: adminUC, logger: logger, maxUploadSize: maxUploadSize}
}

// listProducts
//
//	@Summary	Все товары, включая скрытые
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		ProductResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/admin/products [get]
func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.adminUC.ListProducts(r.Context())
	if err != nil {
		h.logger.Errorf(err, "list products for admin")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponses(products))
}

// createProduct
//
//	@Summary	Создание товара
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		ProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/admin/products [post]
func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.adminUC.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	h.logger.Infof("admin %s created product %s", adminEmail(r), product.ID)
	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// updateProduct
//
//	@Summary	Изменение товара
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"ID товара"
//	@Param		body	body		ProductRequest	true	"Товар"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/products/{id} [put]
func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	id, err := productID(r)
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	product, err := h.adminUC.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	h.logger.Infof("admin %s updated product %s", adminEmail(r), id)
	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"ID товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/products/{id} [delete]
func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	if err := h.adminUC.DeleteProduct(r.Context(), id); err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	h.logger.Infof("admin %s deleted product %s", adminEmail(r), id)
	w.WriteHeader(http.StatusNoContent)
}

// createCategory
//
//	@Summary	Создание категории
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		CategoryRequest	true	"Категория"
//	@Success	201		{object}	CategoryResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/admin/categories [post]
func (h *AdminHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var body CategoryRequest
	if err := decodeJSON(w, r, &body, maxJSONBody); err != nil {
		WriteError(w, err)
		return
	}

	category, err := h.adminUC.CreateCategory(r.Context(), &usecase.CategoryReq{
		Name:        body.Name,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		SortOrder:   body.SortOrder,
	})
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

// updateContent
//
//	@Summary	Изменение секции страницы
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		section	path		string	true	"Секция: hero, about, contact"
//	@Param		body	body		object	true	"Новое содержимое секции"
//	@Success	200		{object}	ContentSectionResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/content/{section} [put]
func (h *AdminHandler) updateContent(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeJSON(w, r, &body, maxJSONBody); err != nil {
		WriteError(w, err)
		return
	}

	section, err := h.adminUC.UpdateContent(r.Context(), chi.URLParam(r, "section"), body)
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ContentSectionResponse{
		Section:   section.Section,
		Content:   section.Content,
		UpdatedAt: section.UpdatedAt,
	})
}

// uploadAsset
//
//	@Summary	Загрузка файла
//	@Tags		admin
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		file	formData	file	true	"Файл"
//	@Param		kind	formData	string	false	"product-image | category-image | document"
//	@Success	201		{object}	AssetResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/assets [post]
func (h *AdminHandler) uploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartMemory)

	if err := ensureMultipartForm(r, multipartMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	kind, err := domain.ParseAssetKind(strings.TrimSpace(r.FormValue("kind")))
	if err != nil {
		WriteError(w, err)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		WriteError(w, e.ErrNoFile)
		return
	}

	data, mimeType, err := readFile(files[0], h.maxUploadSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.adminUC.UploadAsset(r.Context(), usecase.NewUploadAssetReq(kind, data, mimeType, files[0].Filename))
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, AssetResponse{Key: res.Key, URL: res.URL})
}

// deleteAsset
//
//	@Summary	Удаление файла
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		key	query	string	true	"Ключ объекта"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Router		/admin/assets [delete]
func (h *AdminHandler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.adminUC.DeleteAsset(r.Context(), r.URL.Query().Get("key")); err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// reloadCatalog
//
//	@Summary	Принудительная перезагрузка каталога
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ReloadResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/admin/catalog/reload [post]
func (h *AdminHandler) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := h.adminUC.RefreshCatalog(r.Context())
	if err != nil {
		h.writeAdminError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ReloadResponse{
		Version:    snap.Version,
		Products:   len(snap.Products),
		Categories: len(snap.Categories),
		LoadedAt:   snap.LoadedAt,
	})
}

func (h *AdminHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*usecase.ProductReq, bool) {
	var body ProductRequest
	if err := decodeJSON(w, r, &body, maxJSONBody); err != nil {
		WriteError(w, err)
		return nil, false
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return nil, false
	}

	return req, true
}

// writeAdminError логирует серверные ошибки с контекстом администратора.
func (h *AdminHandler) writeAdminError(w http.ResponseWriter, r *http.Request, err error) {
	if code, _ := ToHTTPResponse(err); code >= http.StatusInternalServerError {
		h.logger.Errorf(err, "%s %s by %s", r.Method, r.URL.Path, adminEmail(r))
	} else {
		h.logger.Debugf("%s %s by %s: %v", r.Method, r.URL.Path, adminEmail(r), err)
	}
	WriteError(w, err)
}

// productID читает id товара из пути. Не-UUID не может совпасть ни с одним товаром.
func productID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		return "", e.Wrap(fmt.Sprintf("id=%q", id), e.ErrProductNotFound)
	}
	return id, nil
}

func adminEmail(r *http.Request) string {
	if claims := claimsFromCtx(r.Context()); claims != nil {
		return claims.Email
	}
	return "unknown"
}
