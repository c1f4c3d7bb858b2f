package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout       = 5 * time.Second
	healthCheckPeriod = 30 * time.Second
)

// PgDatabase инкапсулирует пул соединений с PostgreSQL и применение миграций.
type PgDatabase struct {
	Pool *pgxpool.Pool
	Dsn  string // нужен отдельному соединению LISTEN и драйверу миграций
}

// DSN собирает строку подключения в формате key=value.
func DSN(cfg *cfg.PGDBCfg) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// PoolConfig разбирает DSN и применяет к пулу настройки из конфигурации.
func PoolConfig(cfg *cfg.PGDBCfg) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, e.Wrap("PgDatabase.PoolConfig", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.HealthCheckPeriod = healthCheckPeriod

	return poolCfg, nil
}

// Connect открывает пул и проверяет, что база отвечает.
func Connect(cfg *cfg.PGDBCfg) (*PgDatabase, error) {
	const op = "PgDatabase.Connect"

	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	db := &PgDatabase{Pool: pool, Dsn: DSN(cfg)}
	if err := db.Ping(); err != nil {
		pool.Close()
		return nil, e.Wrap(op, err)
	}

	return db, nil
}

func (db *PgDatabase) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return e.Wrap("PgDatabase.Ping", err)
	}

	return nil
}

// Close закрывает пул соединений.
func (db *PgDatabase) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// RunMigrations применяет недостающие миграции из source (обычно встроенный migrations.FS).
func (db *PgDatabase) RunMigrations(source fs.FS, logger logger.Logger) error {
	const op = "PgDatabase.RunMigrations"

	src, err := iofs.New(source, ".")
	if err != nil {
		return e.Wrap(op, err)
	}

	sqlDb, err := sql.Open("pgx", db.Dsn)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer sqlDb.Close()

	driver, err := postgres.WithInstance(sqlDb, &postgres.Config{})
	if err != nil {
		return e.Wrap(op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return e.Wrap(op, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return e.Wrap(op, err)
	}
	if dirty {
		return e.Wrap(op, fmt.Errorf("schema version %d is dirty", version))
	}

	logger.Infof("database schema at version %d", version)
	return nil
}
