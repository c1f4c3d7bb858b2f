package infrastructure

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

// GetExtensionFromMIME возвращает расширение файла по MIME-типу.
// Изображения допустимы для любого вида ассета, PDF — только для документов.
func GetExtensionFromMIME(kind domain.AssetKind, mime string) (string, error) {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	case "image/gif":
		return "gif", nil
	case "application/pdf":
		if kind == domain.AssetDocument {
			return "pdf", nil
		}
	}
	return "bin", e.ErrUnsupportedMediaType
}
