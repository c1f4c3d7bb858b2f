package clients

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// RedisClient — клиент общего кэша снимка каталога.
type RedisClient struct {
	Client      *r.Client
	pingTries   int
	pingBackoff time.Duration
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	client := r.NewClient(&r.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	return &RedisClient{
		Client:      client,
		pingTries:   max(cfg.MaxRetries, 1),
		pingBackoff: 200 * time.Millisecond,
	}
}

// Ping проверяет соединение, повторяя попытку с экспоненциальной задержкой,
// пока не кончатся попытки или контекст.
func (c *RedisClient) Ping(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < c.pingTries; attempt++ {
		if err = c.Client.Ping(ctx).Err(); err == nil {
			return nil
		}

		if attempt+1 == c.pingTries {
			break
		}
		if sleepErr := jitter.Sleep(ctx, jitter.ExponentialBackoff(c.pingBackoff, 2*time.Second, attempt, jitter.DefaultJitter)); sleepErr != nil {
			break
		}
	}

	return e.Wrap(whereami.WhereAmI(), err)
}

func (c *RedisClient) Close() error {
	return c.Client.Close()
}
