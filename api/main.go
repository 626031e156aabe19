package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rogerio-castellano/product-catalog/internal/apiclient"
	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	"github.com/rogerio-castellano/product-catalog/internal/config"
	"github.com/rogerio-castellano/product-catalog/internal/db"
	"github.com/rogerio-castellano/product-catalog/internal/events"
	api "github.com/rogerio-castellano/product-catalog/internal/http"
	"github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	rl "github.com/rogerio-castellano/product-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/product-catalog/internal/logging"
	"github.com/rogerio-castellano/product-catalog/internal/redissvc"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/rogerio-castellano/product-catalog/internal/web"
)

// @title Product Catalog API
// @version 1.0
// @description REST API and web page for managing the product catalog.
// @host localhost:8080
// @BasePath /
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.NewLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	products, closeStore, err := openProductRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing product events to kafka")
	}
	defer publisher.Close()

	handlers.SetProductRepo(products)
	handlers.SetPublisher(publisher)
	handlers.SetLogger(logger)

	limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	page := web.NewPage()
	ctrl := catalog.NewController(apiclient.NewClient(cfg.APIBaseURL), page, logger)
	ui := web.NewHandler(ctrl, page, logger)

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(api.RouterConfig{
			Logger:  logger,
			Limiter: limiter,
			UI:      ui.Routes(),
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return limiter.StartVisitorCleanupLoop(gctx, time.Minute, 3*time.Minute)
	})

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("api", cfg.APIBaseURL).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openProductRepo picks postgres when DATABASE_URL is set and the in-memory
// store otherwise, and puts the redis cache in front when REDIS_ADDR is set.
func openProductRepo(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repo.ProductRepository, func(), error) {
	var (
		products repo.ProductRepository
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { database.Close() })
		if err := db.Migrate(database); err != nil {
			closeAll()
			return nil, nil, err
		}
		products = repo.NewPostgresProductRepository(database)
		logger.Info().Msg("using postgres product store")
	} else {
		products = repo.NewInMemoryProductRepository()
		logger.Warn().Msg("DATABASE_URL not set, products are kept in memory")
	}

	if cfg.Redis.Addr != "" {
		cache, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { cache.Close() })
		products = repo.NewCachedProductRepository(products, cache, cfg.Redis.TTL, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("caching products in redis")
	}

	return products, closeAll, nil
}
