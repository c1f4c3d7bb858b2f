package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/catalog"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
)

const defaultPerPage = 20

// CatalogHandler обслуживает публичную витрину.
type CatalogHandler struct {
	catalogUC  usecase.CatalogUC
	logger     logger.Logger
	maxPerPage int
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, logger logger.Logger, maxPerPage int) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, logger: logger, maxPerPage: maxPerPage}
}

// listProducts
//
//	@Summary		Список товаров витрины
//	@Description	Фильтрация по категории, тексту, цене и наличию, сортировка и пагинация
//	@Tags			catalog
//	@Produce		json
//	@Param			category	query		string	false	"Категория, All — без ограничения"
//	@Param			search		query		string	false	"Подстрока в названии или описании"
//	@Param			min_price	query		integer	false	"Минимальная цена"
//	@Param			max_price	query		integer	false	"Максимальная цена"
//	@Param			in_stock	query		boolean	false	"Только в наличии"
//	@Param			sort		query		string	false	"name | category | newest"
//	@Param			page		query		integer	false	"Номер страницы, с 1"
//	@Param			per_page	query		integer	false	"Размер страницы"
//	@Success		200			{object}	BrowseResponse
//	@Success		304			"Не изменилось с If-None-Match"
//	@Failure		400			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/products [get]
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseBrowseReq(r)
	if err != nil {
		h.logger.Debugf("%d %s: %v", http.StatusBadRequest, r.URL.RawQuery, err)
		WriteError(w, err)
		return
	}

	res, err := h.catalogUC.Browse(r.Context(), req)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	etag := browseETag(res.Version, r.URL.Query().Encode())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	WriteSuccess(w, http.StatusOK, BrowseResponse{
		Products: toProductResponses(res.Products),
		Total:    res.Total,
		Page:     req.Page,
		PerPage:  req.PerPage,
		Counts:   toCountResponses(res.Counts),
	})
}

// getProduct
//
//	@Summary	Карточка товара
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// listCategories
//
//	@Summary	Активные категории
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{array}		CategoryResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/categories [get]
func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogUC.Categories(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}

	WriteSuccess(w, http.StatusOK, out)
}

// getContent
//
//	@Summary	Тексты страниц по секциям
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/content [get]
func (h *CatalogHandler) getContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.catalogUC.Content(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, content)
}

func (h *CatalogHandler) parseBrowseReq(r *http.Request) (*usecase.BrowseReq, error) {
	q := r.URL.Query()
	cfg := catalog.DefaultFilterConfig()

	if category := strings.TrimSpace(q.Get("category")); category != "" {
		cfg.Category = category
	}
	// Поиск — подстрока как есть: пробелы по краям значимы.
	cfg.SearchText = q.Get("search")

	if raw := q.Get("min_price"); raw != "" {
		v, err := parsePrice(raw)
		if err != nil {
			return nil, e.Wrap("min_price", err)
		}
		cfg.PriceRange.Min = v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := parsePrice(raw)
		if err != nil {
			return nil, e.Wrap("max_price", err)
		}
		cfg.PriceRange.Max = v
	}

	if raw := q.Get("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, e.Wrap("in_stock="+raw, e.ErrInvalidQueryParam)
		}
		cfg.InStockOnly = v
	}

	sortKey, err := catalog.ParseSortKey(q.Get("sort"))
	if err != nil {
		return nil, err
	}
	cfg.SortKey = sortKey

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	page, err := parseIntParam(r, "page", 1)
	if err != nil {
		return nil, err
	}
	def := defaultPerPage
	if h.maxPerPage > 0 {
		def = min(def, h.maxPerPage)
	}
	perPage, err := parseIntParam(r, "per_page", def)
	if err != nil {
		return nil, err
	}
	if h.maxPerPage > 0 && perPage > h.maxPerPage {
		return nil, e.Wrap("per_page="+strconv.Itoa(perPage), e.ErrInvalidPagination)
	}

	return usecase.NewBrowseReq(cfg, page, perPage), nil
}

// browseETag зависит и от содержимого каталога, и от параметров запроса.
func browseETag(version, canonicalQuery string) string {
	d := xxhash.New()
	_, _ = d.WriteString(version)
	_, _ = d.WriteString("?")
	_, _ = d.WriteString(canonicalQuery)
	return `"` + strconv.FormatUint(d.Sum64(), 16) + `"`
}

// etagMatches разбирает If-None-Match со списком и слабыми тегами.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
