package catalog

import (
	"strconv"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint возвращает короткий отпечаток содержимого каталога.
// Отпечаток меняется при изменении любого товара (id, updated_at) или набора категорий.
func Fingerprint(products []domain.Product, categories []domain.Category) string {
	d := xxhash.New()
	for i := range products {
		_, _ = d.WriteString(products[i].ID)
		_, _ = d.WriteString(strconv.FormatInt(products[i].UpdatedAt.UnixNano(), 36))
		_, _ = d.WriteString("\x00")
	}
	_, _ = d.WriteString("\x01")
	for i := range categories {
		_, _ = d.WriteString(categories[i].Name)
		_, _ = d.WriteString(strconv.Itoa(categories[i].SortOrder))
		_, _ = d.WriteString("\x00")
	}

	return strconv.FormatUint(d.Sum64(), 16)
}
