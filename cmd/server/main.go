// @title                       Porto Geoloc Entregas API
// @version                     1.0
// @description                 Delivery location confirmation: seller dashboard and customer flow.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/portogeoloc/entregas/internal/api"
	"github.com/portogeoloc/entregas/internal/api/handler"
	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/service"
	mongodb "github.com/portogeoloc/entregas/internal/infrastructure/db/mongo"
	redisdb "github.com/portogeoloc/entregas/internal/infrastructure/db/redis"
	"github.com/portogeoloc/entregas/internal/infrastructure/qrcode"
	"github.com/portogeoloc/entregas/internal/infrastructure/queue"
	"github.com/portogeoloc/entregas/internal/infrastructure/storage"
	"github.com/portogeoloc/entregas/internal/pkg/config"
	"github.com/portogeoloc/entregas/pkg/logger"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "entregas",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     cfg.Mongo.AppName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	deliveries := mongodb.NewDeliveryRepository(db)
	events := mongodb.NewEventRepository(db)
	users := mongodb.NewAuthRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"entregas":         deliveries.EnsureIndexes,
		"entregas_eventos": events.EnsureIndexes,
		"users":            users.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("failed to ensure indexes")
		}
	}

	photos, err := photoStore(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Photos.Backend).Msg("failed to initialise photo storage")
	}

	auth := service.NewAuthService(users, cfg.JWTSecret, tokenTTL)
	if cfg.Admin.Enabled() {
		admin, created, err := auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin account")
		}
		if created {
			log.Info().Str("email", admin.Email).Msg("admin account created")
		}
	}

	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, events, logger.Component("audit"))
	dispatcher.Start(ctx)

	dashboard := service.NewDashboardService(deliveries, dispatcher, logger.Component("dashboard"))
	confirmation := service.NewConfirmationService(service.ConfirmationDeps{
		Deliveries:         deliveries,
		Photos:             photos,
		Sessions:           redisdb.NewSessionStore(rdb, cfg.Confirmation.SessionTTL),
		Lock:               redisdb.NewSubmitLock(rdb, cfg.Confirmation.SubmitLockTTL),
		Events:             dispatcher,
		GeolocationTimeout: cfg.Confirmation.GeolocationTimeout,
	}, logger.Component("confirmation"))

	e := api.NewRouter(api.Deps{
		Dashboard:    dashboard,
		Confirmation: confirmation,
		Auth:         auth,
		History:      events,
		Photos:       photos,
		QR:           qrcode.NewEncoder(),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		PhotoBucket:   cfg.Photos.Bucket,
		MaxPhotoBytes: cfg.Photos.MaxBytes,
		PublicOrigin:  cfg.PublicOrigin,
		JWTSecret:     cfg.JWTSecret,
		Logger:        logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("origin", cfg.PublicOrigin).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// photoStore selects the bucket backend. Both serve public URLs under
// <origin>/storage/<bucket>/.
func photoStore(cfg *config.Config, db *mongo.Database) (ports.PhotoStore, error) {
	baseURL := cfg.PublicOrigin + "/storage"
	if cfg.Photos.Backend == "local" {
		bucket, err := storage.NewLocalBucket(cfg.Photos.Dir, cfg.Photos.Bucket, baseURL)
		if err != nil {
			return nil, err
		}
		return bucket, nil
	}
	return mongodb.NewPhotoBucket(db, cfg.Photos.Bucket, baseURL), nil
}
