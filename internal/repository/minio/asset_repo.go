package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// AssetRepo реализует хранилище файлов витрины поверх MinIO.
type AssetRepo struct {
	mc     *minio.Client
	bucket string
}

func NewAssetRepo(mc *minio.Client, bucket string) *AssetRepo {
	return &AssetRepo{
		mc:     mc,
		bucket: bucket,
	}
}

// Upload загружает файл в MinIO и возвращает ключ объекта.
func (a *AssetRepo) Upload(ctx context.Context, asset *domain.Asset) (string, error) {
	bucket := asset.Bucket
	if bucket == "" {
		bucket = a.bucket
	}

	info, err := a.mc.PutObject(ctx, bucket, asset.ObjectKey, bytes.NewReader(asset.Bytes), asset.Size, minio.PutObjectOptions{
		ContentType:  asset.ContentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (a *AssetRepo) Delete(ctx context.Context, key string) error {
	if err := a.mc.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
