package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/orghub/internal/app/controllers"
	appMigrations "github.com/yigit/orghub/internal/app/migrations"
	appRepos "github.com/yigit/orghub/internal/app/repositories"
	appRoutes "github.com/yigit/orghub/internal/app/routes"
	appServices "github.com/yigit/orghub/internal/app/services"
	"github.com/yigit/orghub/internal/config"
	"github.com/yigit/orghub/internal/db"
	appMiddleware "github.com/yigit/orghub/internal/middleware"
	pkgAuth "github.com/yigit/orghub/internal/pkg/auth"
	"github.com/yigit/orghub/internal/pkg/filestorage"
	"github.com/yigit/orghub/internal/pkg/helpers"
	"github.com/yigit/orghub/internal/pkg/logger"
	"github.com/yigit/orghub/internal/pkg/metrics"
	"github.com/yigit/orghub/internal/pkg/websocket"
	"github.com/yigit/orghub/internal/seed"
)

// DefaultConfigPath is used when ORGHUB_CONFIG is not set
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services               *appServices.Services
	AuthController         *appControllers.AuthController
	OrganizationController *appControllers.OrganizationController
	MembershipController   *appControllers.MembershipController
	FeedController         *appControllers.FeedController
	Hub                    *websocket.Hub
	AuthMiddleware         *appMiddleware.AuthMiddleware
	LoginLimiter           *appMiddleware.RateLimiter
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	Metrics                *metrics.Metrics
	Logger                 zerolog.Logger
	FileStorage            *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
// It returns nil when organizations are kept in the JSON data file.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if !cfg.UsesPostgres() {
		lgr.Info().Str("dataFile", cfg.Storage.DataFile).Msg("Using JSON data file storage")
		return nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if database != nil {
		deps.Repos = appRepos.NewPostgresRepositories(database, cfg.Storage.UsersFile)
	} else {
		deps.Repos = appRepos.NewFileRepositories(cfg.Storage.DataFile, cfg.Storage.UsersFile)
	}

	if cfg.Seed.Enabled {
		opts := seed.Options{DefaultPassword: cfg.Seed.DefaultPassword}
		if database != nil {
			opts.ImportFrom = cfg.Storage.DataFile
		}
		// Log the error but don't fail the startup
		if err := seed.CreateDefaultData(context.Background(), deps.Repos, opts, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.AssetRoot)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 8*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Metrics = metrics.New()
	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.FileStorage, helpers.SystemClock, lgr)

	// The hub queues events until its Run loop is started by the server
	deps.Hub = websocket.NewHub(lgr)
	deps.Services.SetNotifier(deps.Hub)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if cfg.RateLimit.LoginPerMinute > 0 {
		deps.LoginLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst, deps.Metrics)
	}

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService, deps.Metrics, lgr)
	deps.OrganizationController = appControllers.NewOrganizationController(deps.Services.OrganizationService, lgr)
	deps.MembershipController = appControllers.NewMembershipController(deps.Services.MembershipService, deps.Metrics, lgr)
	deps.FeedController = appControllers.NewFeedController(deps.Services.OrganizationService, deps.Hub, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr), appMiddleware.Metrics(deps.Metrics))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.OrganizationController,
		deps.MembershipController,
		deps.FeedController,
		deps.AuthMiddleware,
		deps.LoginLimiter,
		deps.Metrics,
	)

	return router, nil
}

// UploadDir is the directory served under /uploads
func UploadDir(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Server.StoragePath) {
		return cfg.Server.StoragePath
	}
	return filepath.Join(cfg.Server.AssetRoot, cfg.Server.StoragePath)
}
