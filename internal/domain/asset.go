package domain

import (
	"fmt"

	"github.com/DRSN-tech/storefront/pkg/e"
)

// AssetKind определяет назначение загружаемого файла и префикс ключа в бакете.
type AssetKind string

const (
	AssetProductImage  AssetKind = "product-image"
	AssetCategoryImage AssetKind = "category-image"
	AssetDocument      AssetKind = "document"
)

// Prefix возвращает префикс ключа объекта для данного вида ассета.
func (k AssetKind) Prefix() string {
	switch k {
	case AssetProductImage:
		return "product-images"
	case AssetCategoryImage:
		return "category-images"
	case AssetDocument:
		return "documents"
	default:
		return ""
	}
}

// ParseAssetKind проверяет вид ассета. Пустая строка означает изображение товара.
func ParseAssetKind(s string) (AssetKind, error) {
	if s == "" {
		return AssetProductImage, nil
	}
	kind := AssetKind(s)
	if kind.Prefix() == "" {
		return "", e.Wrap(fmt.Sprintf("kind=%q", s), e.ErrInvalidAssetKind)
	}
	return kind, nil
}

// Asset описывает файл, который хранится в S3
type Asset struct {
	ID          string // uuid
	Bucket      string
	ObjectKey   string
	Bytes       []byte
	Size        int64
	ContentType string
}

func NewAsset(id string, bucket string, objectKey string, data []byte, contentType string) *Asset {
	return &Asset{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       data,
		Size:        int64(len(data)),
		ContentType: contentType,
	}
}
