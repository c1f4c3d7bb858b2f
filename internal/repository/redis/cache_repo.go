package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	catalogKey = "storefront:catalog"
	epochKey   = "storefront:catalog:epoch"
)

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.CatalogConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.CatalogConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetCatalog возвращает снимок каталога из кэша. Промах — (nil, nil).
// Повреждённая запись удаляется и тоже считается промахом.
func (c *CacheRepo) GetCatalog(ctx context.Context) (*usecase.CachedCatalog, error) {
	data, err := c.client.Client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshalCatalog(data)
	if err != nil {
		c.logger.Warnf("Dropping unreadable catalog cache entry: %v", e.Wrap(whereami.WhereAmI(), err))
		if err := c.client.Client.Del(ctx, catalogKey).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil
	}

	return c.conv.ToUseCase(model), nil
}

// CatalogEpoch возвращает текущую эпоху кэша. Отсутствующий ключ — эпоха 0.
func (c *CacheRepo) CatalogEpoch(ctx context.Context) (int64, error) {
	epoch, err := readEpoch(ctx, c.client.Client)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return epoch, nil
}

// SetCatalog сохраняет снимок с TTL из конфигурации, если эпоха не менялась с момента
// чтения снимка из БД. Иначе возвращает e.ErrCatalogCacheStale.
func (c *CacheRepo) SetCatalog(ctx context.Context, catalog *usecase.CachedCatalog) error {
	data, err := json.Marshal(c.conv.ToRedisModel(catalog, time.Now().UTC()))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = c.client.Client.Watch(ctx, func(tx *r.Tx) error {
		current, err := readEpoch(ctx, tx)
		if err != nil {
			return err
		}
		if current != catalog.Epoch {
			return e.ErrCatalogCacheStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe r.Pipeliner) error {
			pipe.Set(ctx, catalogKey, data, c.cfg.CatalogTTL)
			return nil
		})
		return err
	}, epochKey)

	if errors.Is(err, r.TxFailedErr) {
		err = e.ErrCatalogCacheStale
	}
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// InvalidateCatalog сдвигает эпоху и удаляет снимок одной транзакцией.
func (c *CacheRepo) InvalidateCatalog(ctx context.Context) error {
	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		pipe.Incr(ctx, epochKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func readEpoch(ctx context.Context, cmd r.StringCmdable) (int64, error) {
	epoch, err := cmd.Get(ctx, epochKey).Int64()
	if errors.Is(err, r.Nil) {
		return 0, nil
	}
	return epoch, err
}

func unmarshalCatalog(data []byte) (*converter.CatalogRedisModel, error) {
	var model converter.CatalogRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	if model.Schema != converter.CatalogSchema {
		return nil, errors.New("catalog cache schema mismatch")
	}

	return &model, nil
}
