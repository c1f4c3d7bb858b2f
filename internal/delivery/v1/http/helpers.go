package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// maxPriceUnits — верхняя граница цены, принимаемой от клиента.
const maxPriceUnits = 1_000_000_000_000

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var badRequestErrs = []error{
	e.ErrMissingFields,
	e.ErrProductNameRequired,
	e.ErrCategoryRequired,
	e.ErrCategoryNameRequired,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrInvalidStock,
	e.ErrInvalidPriceRange,
	e.ErrUnknownSortKey,
	e.ErrInvalidPagination,
	e.ErrInvalidQueryParam,
	e.ErrInvalidJSON,
	e.ErrInvalidContent,
	e.ErrExpectedMultipart,
	e.ErrNoFile,
	e.ErrFileTooLarge,
	e.ErrUnsupportedMediaType,
	e.ErrInvalidAssetKind,
	e.ErrInvalidAssetKey,
	e.ErrInvalidCredentialsReq,
	e.ErrStatusBadRequest,
}

// ToHTTPResponse сопоставляет ошибку статусу и безопасному для клиента сообщению.
func ToHTTPResponse(err error) (int, string) {
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized, e.ErrInvalidCredentials.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrContentSectionNotFound):
		return http.StatusNotFound, e.ErrContentSectionNotFound.Error()
	case errors.Is(err, e.ErrCategoryExists):
		return http.StatusConflict, e.ErrCategoryExists.Error()
	case errors.Is(err, e.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, e.ErrCatalogUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// priceFromDecimal переводит цену в целые денежные единицы.
// Дробная часть допустима только нулевая: "600" и "600.00" — одна и та же цена.
func priceFromDecimal(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, e.ErrInvalidPrice
	}

	if d.GreaterThan(decimal.NewFromInt(maxPriceUnits)) {
		return 0, e.ErrInvalidPrice
	}

	if !d.Equal(d.Truncate(0)) {
		return 0, e.ErrPricePrecision
	}

	return d.IntPart(), nil
}

// parsePrice разбирает цену из строки запроса.
func parsePrice(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	return priceFromDecimal(d)
}

// parseIntParam читает положительное целое из query; пустое значение даёт def.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, e.Wrap(fmt.Sprintf("%s=%q", name, raw), e.ErrInvalidPagination)
	}

	return v, nil
}

// decodeJSON читает тело запроса не больше maxBytes в dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
		}
		return e.Wrap(err.Error(), e.ErrInvalidJSON)
	}

	if dec.More() {
		return e.Wrap("trailing data after json body", e.ErrInvalidJSON)
	}

	return nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return nil
}

// readFile читает файл из формы. MIME берётся из заголовка части, при его отсутствии определяется по содержимому.
func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data[:min(len(data), 512)])
	}
	return data, mimeType, nil
}
