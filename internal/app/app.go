package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DRSN-tech/storefront/db/migrations"
	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront/internal/infrastructure/minio"
	"github.com/DRSN-tech/storefront/internal/infrastructure/security"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/repository/redis"
	redisConv "github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	shutdownTimeout  = 10 * time.Second
	forcedTimeout    = 3 * time.Second
	warmupTimeout    = 15 * time.Second
	topicTimeout     = 10 * time.Second
	cleanupWaitLimit = 5 * time.Second
)

// App связывает зависимости сервиса и управляет его жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	// bgCtx живёт до начала остановки, на нём работают фоновые воркеры.
	bgCtx    context.Context
	bgCancel context.CancelFunc

	catalogUC *usecase.CatalogUseCase
	grpcSrv   *v1Grpc.GRPCServer
	httpSrv   *v1Http.Server
	outbox    *kafka.OutboxWorker
	consumer  *kafka.InvalidationConsumer
}

// NewApp поднимает подключения к хранилищам и собирает usecase и транспорт.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   log,
		closer:   closer.NewCloser(forcedTimeout),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}
	defer func() {
		if err != nil {
			bgCancel()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if closeErr := a.closer.Close(ctx); closeErr != nil {
				log.Warnf("cleanup after failed start: %v", closeErr)
			}
		}
	}()

	if err = a.init(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger

	// === PostgreSQL ===
	db, err := initPGDB(log, cfg)
	if err != nil {
		return err
	}
	a.closer.AddSimple("postgres", db.Close)

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverterImpl{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverterImpl{})
	contentRepo := pgdb.NewContentRepo(db.Pool, pgdbConv.ContentConverterImpl{})
	adminRepo := pgdb.NewAdminRepo(db.Pool, pgdbConv.AdminConverterImpl{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverterImpl{})
	txManager := pgdb.NewTxManager(db.Pool)

	// === MinIO ===
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return e.Wrap("minio client", err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName)
	minioCancel()
	if err != nil {
		return e.Wrap("minio bucket", err)
	}

	assetRepo := s3Repo.NewAssetRepo(minioClient, cfg.Minio.BucketName)
	assetsInfra := minioInfra.NewMinioInfrastructure(assetRepo, cfg.Minio, log, a.bgCtx)
	a.closer.Add("minio cleanup", func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, cleanupWaitLimit)
		defer cancel()
		return assetsInfra.WaitForCleanup(waitCtx)
	})

	// === Redis ===
	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(redisCtx)
	redisCancel()
	if err != nil {
		// Кэш снимка необязателен: без Redis каталог читается из PostgreSQL.
		log.Warnf("redis is unavailable, catalog cache disabled until it recovers: %v", err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.CatalogConverterImpl{}, cfg.Redis, log)

	// === Kafka ===
	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	// === Usecases ===
	a.catalogUC = usecase.NewCatalogUC(productRepo, categoryRepo, contentRepo, cacheRepo, cfg.Catalog.SnapshotTTL, log)

	hasher := security.NewBcryptService(cfg.Auth.BcryptCost)
	tokens := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	adminUC := usecase.NewAdminUC(
		productRepo,
		categoryRepo,
		contentRepo,
		outboxRepo,
		txManager,
		assetsInfra,
		cacheRepo,
		a.catalogUC,
		log,
	)
	authUC := usecase.NewAuthUC(adminRepo, hasher, tokens, log)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		admin, err := authUC.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		cancel()
		if err != nil {
			return e.Wrap("bootstrap admin", err)
		}
		log.Infof("admin account %s is ready", admin.Email)
	}

	// === Events ===
	a.outbox = kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	a.consumer = kafka.NewInvalidationConsumer(cfg.Kafka, a.catalogUC, log)

	// === Transport ===
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.catalogUC.OnLoad(func(*usecase.CatalogSnapshot) { a.grpcSrv.SetCatalogReady(true) })

	router := v1Http.NewRouter(chi.NewRouter(), log, cfg)
	a.httpSrv = v1Http.NewServer(router.Init(a.catalogUC, adminUC, authUC), cfg.Http)

	return nil
}

// Run запускает серверы и фоновые воркеры и блокируется до сигнала остановки
// или фатальной ошибки одного из серверов.
func (a *App) Run() error {
	log := a.logger

	a.outbox.Start(a.bgCtx)
	a.closer.AddSimple("outbox worker", a.outbox.Stop)

	a.consumer.Start(a.bgCtx)
	a.closer.Add("invalidation consumer", func(context.Context) error { return a.consumer.Stop() })

	a.warmup()

	grpcErrCh := make(chan error, 1)
	go func() {
		log.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-httpErrCh:
		log.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		log.Errorf(appErr, "gRPC server fatal error")
	case sig := <-shutdown:
		log.Infof("Received %s, stopping gracefully...", sig)
	}

	// === Graceful shutdown ===
	a.bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		log.Warnf("%v", err)
	}

	log.Infof("Application shutdown complete")
	return appErr
}

// warmup загружает первый снимок до открытия портов. Неудача не фатальна:
// health отвечает NOT_SERVING, а витрина повторит загрузку на первом запросе.
func (a *App) warmup() {
	ctx, cancel := context.WithTimeout(a.bgCtx, warmupTimeout)
	defer cancel()

	snap, err := a.catalogUC.Reload(ctx)
	if err != nil {
		a.logger.Warnf("catalog warmup failed: %v", err)
		return
	}

	a.logger.Infof("catalog warmed up: %d products, %d categories", len(snap.Products), len(snap.Categories))
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(migrations.FS, logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
