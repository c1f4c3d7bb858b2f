package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/infrastructure"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"

	"github.com/google/uuid"
)

const (
	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

// MinioInfrastructure управляет загрузкой и удалением файлов витрины в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// UploadAsset проверяет файл, кладёт его под ключом <префикс вида>/<uuid>.<ext>
// и возвращает публичную ссылку. Если загрузка прервалась, недозагруженный объект удаляется в фоне.
func (m *MinioInfrastructure) UploadAsset(ctx context.Context, req *usecase.UploadAssetReq) (*usecase.UploadAssetRes, error) {
	const op = "MinioInfrastructure.UploadAsset"

	prefix := req.Kind.Prefix()
	if prefix == "" {
		return nil, e.Wrap(op, e.ErrInvalidAssetKind)
	}

	if m.cfg.MaxUploadSize > 0 && int64(len(req.Data)) > m.cfg.MaxUploadSize {
		return nil, e.Wrap(fmt.Sprintf("%s: %s is %d bytes", op, req.Name, len(req.Data)), e.ErrFileTooLarge)
	}

	mimeType := detectMIME(req.MimeType, req.Data)
	ext, err := infrastructure.GetExtensionFromMIME(req.Kind, mimeType)
	if err != nil {
		return nil, e.Wrap(fmt.Sprintf("%s: invalid mime type %s for %s", op, mimeType, req.Name), err)
	}

	id := uuid.NewString()
	objKey := fmt.Sprintf("%s/%s.%s", prefix, id, ext)
	asset := domain.NewAsset(id, m.cfg.BucketName, objKey, req.Data, mimeType)

	key, err := m.minioRepo.Upload(ctx, asset)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			m.CleanupAssets([]string{objKey})
		}
		return nil, e.Wrap(op, err)
	}

	m.logger.Infof("asset %s uploaded as %s (%d bytes)", req.Name, key, asset.Size)
	return usecase.NewUploadAssetRes(key, m.PublicURL(key)), nil
}

// DeleteAsset удаляет объект. Ключ должен начинаться с префикса одного из видов ассетов.
func (m *MinioInfrastructure) DeleteAsset(ctx context.Context, key string) error {
	const op = "MinioInfrastructure.DeleteAsset"

	if !knownPrefix(key) {
		return e.Wrap(fmt.Sprintf("%s: key=%s", op, key), e.ErrInvalidAssetKey)
	}

	if err := m.minioRepo.Delete(ctx, key); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// PublicURL собирает внешнюю ссылку на объект.
func (m *MinioInfrastructure) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", m.cfg.PublicBaseURL, m.cfg.BucketName, key)
}

// CleanupAssets запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupAssets(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет указанные объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 1; attempt <= cleanupAttempts; attempt++ {
			err := m.minioRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts {
				m.logger.Warnf("%s: giving up on key=%s: %v", op, key, err)
				break
			}

			if jitter.Sleep(ctx, jitter.ExponentialBackoff(time.Second, 8*time.Second, attempt, 0.5)) != nil {
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

// detectMIME берёт тип из заголовка части multipart, а если его нет, определяет по содержимому.
func detectMIME(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

func knownPrefix(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	for _, kind := range []domain.AssetKind{domain.AssetProductImage, domain.AssetCategoryImage, domain.AssetDocument} {
		if rest, ok := strings.CutPrefix(key, kind.Prefix()+"/"); ok && rest != "" {
			return true
		}
	}
	return false
}
