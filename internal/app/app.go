package app

import (
	"context"
	"fmt"
	"strings"

	grpcadapter "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/grpc"
	natsadapter "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/rest"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// App owns every long lived client. Resources are released in reverse
// order of creation.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *rest.Server
	grpcServer *grpcadapter.Server
	closers    []closer
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.release(context.Background())
		}
	}()

	tp, err := tracer.InitTracer(cfg.ServiceName, cfg.Telemetry.OTLPEndpoint, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	a.addCloser("tracer provider", tp.Shutdown)

	mongoClient, err := mongodb.NewClient(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	a.addCloser("MongoDB", mongoClient.Disconnect)
	log.Info("MongoDB connected", zap.String("database", cfg.Mongo.Database))
	db := mongoClient.Database(cfg.Mongo.Database)

	propertyRepo, err := mongodb.NewPropertyRepository(ctx, db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize property repository: %w", err)
	}
	userRepo, err := mongodb.NewUserRepository(ctx, db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user repository: %w", err)
	}

	media, err := s3.NewS3Storage(ctx, cfg.MinIO, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	var listingCache domain.PropertyCache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		a.addCloser("Redis", func(context.Context) error { return redisClient.Close() })
		listingCache = cache.NewListingCache(redisClient, cfg.Redis.TTL)
		log.Info("Listing cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	} else {
		log.Info("Listing cache disabled (REDIS_ADDR not set)")
	}

	var events domain.EventPublisher
	if cfg.NATS.URL != "" {
		publisher, err := natsadapter.NewPublisher(cfg.NATS.URL, log, cfg.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		a.addCloser("NATS", func(context.Context) error { publisher.Close(); return nil })
		events = publisher
	} else {
		log.Info("Event publishing disabled (NATS_URL not set)")
	}

	var notifier domain.Notifier
	if cfg.SMTP.Enabled() {
		notifier = mailer.NewSMTPMailer(cfg.SMTP)
		log.Info("Listing notifications enabled", zap.String("to", cfg.SMTP.NotifyEmail))
	}

	m := metrics.NewMetricsManager(strings.ReplaceAll(cfg.ServiceName, "-", "_"))

	propertyUC := usecase.NewPropertyUsecase(propertyRepo, media, listingCache, events, notifier, m, log)
	queryUC := usecase.NewQueryUsecase(propertyRepo, listingCache, log)
	userUC := usecase.NewUserUsecase(userRepo, m, log)

	router := rest.NewRouter(rest.RouterDeps{
		HTTP:       cfg.HTTP,
		JWTSecret:  cfg.Auth.JWTSecret,
		Properties: rest.NewPropertyHandler(propertyUC, queryUC, log),
		Users:      rest.NewUserHandler(userUC, log),
		Metrics:    m,
		Logger:     log,
	})
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}

	a.httpServer = rest.NewServer(cfg.HTTP, router, log)
	a.grpcServer = grpcadapter.NewServer(cfg.GRPC, cfg.ServiceName, log)
	return a, nil
}

// Run serves until ctx is cancelled or a server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.httpServer.Start)
	g.Go(a.grpcServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("HTTP server shutdown failed", zap.Error(err))
		}
		a.grpcServer.Stop()
		a.release(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("Application shut down successfully")
	return nil
}

func (a *App) addCloser(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) release(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.log.Error("Failed to close resource", zap.String("resource", c.name), zap.Error(err))
			continue
		}
		a.log.Info("Resource closed", zap.String("resource", c.name))
	}
	a.closers = nil
}
