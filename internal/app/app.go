package app

import (
	"context"
	"errors"
	"net/http"

	"family-recipes-go/internal/auth"
	"family-recipes-go/internal/config"
	"family-recipes-go/internal/db"
	familydomain "family-recipes-go/internal/domain/family"
	recipedomain "family-recipes-go/internal/domain/recipe"
	userdomain "family-recipes-go/internal/domain/user"
	"family-recipes-go/internal/metrics"
	"family-recipes-go/internal/ratelimit"
	familyrepo "family-recipes-go/internal/repository/postgres/family"
	reciperepo "family-recipes-go/internal/repository/postgres/recipe"
	userrepo "family-recipes-go/internal/repository/postgres/user"
	"family-recipes-go/internal/storage/photos"
	"family-recipes-go/internal/transport/httpserver"
	"family-recipes-go/internal/transport/httpserver/handler"
	authmw "family-recipes-go/internal/transport/httpserver/middleware"
	"family-recipes-go/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	redis      *redis.Client
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn, log); err != nil {
		closeDB(dbConn)
		return nil, err
	}

	application := &App{cfg: cfg, db: dbConn}

	router, err := application.buildRouter(ctx, log)
	if err != nil {
		_ = application.Close()
		return nil, err
	}

	log.Info("app: initializing http server")
	application.httpServer = httpserver.New(cfg, router)
	return application, nil
}

// Migrate applies pending migrations and closes the connection.
func Migrate(log logger.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return err
	}
	defer closeDB(dbConn)
	return db.Migrate(dbConn, log)
}

// NewRouter assembles the HTTP stack over an existing database without photo
// storage. It backs in-process API and end-to-end tests.
func NewRouter(cfg config.Config, dbConn *gorm.DB, limiters httpserver.Limiters, registry *metrics.Registry, log logger.Logger) http.Handler {
	users, families, recipes := newServices(cfg, dbConn)
	handlers := handler.New(users, families, recipes, nil, registry, healthCheck(dbConn), log)
	return httpserver.NewRouter(cfg, handlers, authmw.NewAuth(users, log), limiters, registry, log)
}

func (a *App) buildRouter(ctx context.Context, log logger.Logger) (http.Handler, error) {
	users, families, recipes := newServices(a.cfg, a.db)

	var limiters httpserver.Limiters
	if a.cfg.Redis.URL != "" {
		log.Info("app: connecting to redis")
		client, err := ratelimit.NewClient(ctx, a.cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		limiters.Login = ratelimit.New(client, ratelimit.Config{
			Limit:     a.cfg.Redis.LoginLimit,
			Window:    a.cfg.Redis.LoginWindow,
			KeyPrefix: "ratelimit:login",
		})
		limiters.RecipeCreate = ratelimit.New(client, ratelimit.Config{
			Limit:     a.cfg.Redis.RecipeCreateLimit,
			Window:    a.cfg.Redis.RecipeCreateWindow,
			KeyPrefix: "ratelimit:recipes",
		})
	} else {
		log.Warn("app: REDIS_URL not set, rate limiting disabled")
	}

	var uploader handler.PhotoUploader
	if a.cfg.Photos.Bucket != "" {
		log.Info("app: initializing photo storage", "bucket", a.cfg.Photos.Bucket)
		photoUploader, err := photos.NewUploader(ctx, photos.Config{
			Bucket:        a.cfg.Photos.Bucket,
			Region:        a.cfg.Photos.Region,
			Endpoint:      a.cfg.Photos.Endpoint,
			PublicBaseURL: a.cfg.Photos.PublicBaseURL,
			PresignTTL:    a.cfg.Photos.PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		uploader = photoUploader
	}

	var registry *metrics.Registry
	if a.cfg.MetricsEnabled {
		registry = metrics.New()
	}

	log.Info("app: initializing router")
	handlers := handler.New(users, families, recipes, uploader, registry, healthCheck(a.db), log)
	return httpserver.NewRouter(a.cfg, handlers, authmw.NewAuth(users, log), limiters, registry, log), nil
}

func newServices(cfg config.Config, dbConn *gorm.DB) (*userdomain.Service, *familydomain.Service, *recipedomain.Service) {
	users := userdomain.NewService(
		userrepo.NewPostgres(dbConn),
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	)
	families := familydomain.NewService(familyrepo.NewPostgres(dbConn), cfg.FrontendURL)
	recipes := recipedomain.NewService(reciperepo.NewPostgres(dbConn), families)
	return users, families, recipes
}

func healthCheck(dbConn *gorm.DB) handler.HealthChecker {
	return func(ctx context.Context) error {
		return db.Ping(ctx, dbConn)
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func closeDB(dbConn *gorm.DB) {
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
