package e

import "fmt"

var (
	// Внутренние ошибки
	ErrTransactionNotFound  = fmt.Errorf("transaction not found")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrInternalServerError  = fmt.Errorf("internal server error")

	// 400 Bad Request
	ErrStatusBadRequest      = fmt.Errorf("bad request")
	ErrMissingFields         = fmt.Errorf("missing required fields")
	ErrProductNameRequired   = fmt.Errorf("product name is required")
	ErrCategoryRequired      = fmt.Errorf("product category is required")
	ErrCategoryNameRequired  = fmt.Errorf("category name is required")
	ErrInvalidPrice          = fmt.Errorf("invalid price")
	ErrPricePrecision        = fmt.Errorf("price must be a whole number")
	ErrInvalidStock          = fmt.Errorf("stock quantity must not be negative")
	ErrInvalidPriceRange     = fmt.Errorf("invalid price range")
	ErrUnknownSortKey        = fmt.Errorf("unknown sort key")
	ErrInvalidPagination     = fmt.Errorf("invalid pagination")
	ErrInvalidQueryParam     = fmt.Errorf("invalid query parameter")
	ErrInvalidJSON           = fmt.Errorf("invalid json body")
	ErrInvalidContent        = fmt.Errorf("content must be a json object")
	ErrExpectedMultipart     = fmt.Errorf("expected multipart/form-data")
	ErrNoFile                = fmt.Errorf("no file provided")
	ErrFileTooLarge          = fmt.Errorf("file too large")
	ErrUnsupportedMediaType  = fmt.Errorf("unsupported media type")
	ErrInvalidAssetKind      = fmt.Errorf("invalid asset kind")
	ErrInvalidAssetKey       = fmt.Errorf("invalid asset key")
	ErrInvalidCredentialsReq = fmt.Errorf("email and password are required")

	// 401 Unauthorized
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrUnauthorized       = fmt.Errorf("unauthorized")

	// 404 Not Found
	ErrProductNotFound        = fmt.Errorf("product not found")
	ErrContentSectionNotFound = fmt.Errorf("content section not found")
	ErrAdminNotFound          = fmt.Errorf("admin not found")

	// 409 Conflict
	ErrCategoryExists = fmt.Errorf("category already exists")

	// 503 Service Unavailable
	ErrCatalogUnavailable = fmt.Errorf("catalog is temporarily unavailable")

	// Кэш
	ErrCatalogCacheStale = fmt.Errorf("catalog cache epoch changed")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
