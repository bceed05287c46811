package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/peerconnect/api/internal/app/auth"
	appControllers "github.com/peerconnect/api/internal/app/controllers"
	appMigrations "github.com/peerconnect/api/internal/app/migrations"
	"github.com/peerconnect/api/internal/app/models/dto"
	appRepos "github.com/peerconnect/api/internal/app/repositories"
	appRoutes "github.com/peerconnect/api/internal/app/routes"
	appServices "github.com/peerconnect/api/internal/app/services"
	"github.com/peerconnect/api/internal/config"
	"github.com/peerconnect/api/internal/db"
	appMiddleware "github.com/peerconnect/api/internal/middleware"
	pkgAuth "github.com/peerconnect/api/internal/pkg/auth"
	"github.com/peerconnect/api/internal/pkg/email"
	"github.com/peerconnect/api/internal/pkg/helpers"
	"github.com/peerconnect/api/internal/pkg/logger"
	"github.com/peerconnect/api/internal/pkg/websocket"
	"github.com/peerconnect/api/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            appServices.AuthService
	ActivityService        appServices.ActivityService
	ChatService            appServices.ChatService
	NotificationService    appServices.NotificationService
	AuthController         *appControllers.AuthController
	ActivityController     *appControllers.ActivityController
	NotificationController *appControllers.NotificationController
	HealthController       *appControllers.HealthController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	AuthLimiter            *appMiddleware.RateLimiter
	Hub                    *websocket.Hub
	WSHandler              *websocket.Handler
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	AuthzService           *appAuth.AuthorizationService
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", "configs/config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   strings.ToLower(cfg.Logging.Level),
		Format:  logger.Format(strings.ToLower(cfg.Logging.Format)),
		Service: "peerconnect-api",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, deps.Repos, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	deps.Hub = websocket.NewHub(logger.Component("hub"))

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.ActivityRepository,
		deps.Repos.NotificationRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 30*24*time.Hour),
		VerifyTokenExp: helpers.ParseDuration(cfg.JWT.VerifyTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromName:    cfg.SMTP.FromName,
		FromEmail:   cfg.SMTP.FromEmail,
		FrontendURL: cfg.Server.FrontendURL,
	}, logger.Component("email"))

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		emailService,
		cfg,
		cfg.PublicBaseURL(),
		lgr,
	)
	deps.ActivityService = appServices.NewActivityService(
		deps.Repos.ActivityRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		lgr,
	)
	deps.NotificationService = appServices.NewNotificationService(
		deps.Repos.NotificationRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		emailService,
		deps.Hub,
		lgr,
	)
	deps.ChatService = appServices.NewChatService(
		deps.Repos.ChatRepository,
		deps.Repos.ActivityRepository,
		deps.Repos.UserRepository,
		deps.NotificationService,
		deps.Hub,
		helpers.ParseDuration(cfg.Mentions.Timeout, appServices.DefaultMentionTimeout),
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.AuthRequestsPerMinute, cfg.RateLimit.AuthBurst)

	deps.WSHandler = websocket.NewHandler(
		deps.Hub,
		websocket.NewMessageHandler(deps.Hub, deps.ChatService, logger.Component("ws")),
		websocket.HandlerConfig{
			AllowedOrigins:    allowedOrigins(cfg),
			MessagesPerSecond: cfg.RateLimit.ChatMessagesPerSecond,
			MessageBurst:      cfg.RateLimit.ChatBurst,
		},
		logger.Component("ws"),
	)

	colleges := make([]dto.CollegeResponse, 0, len(cfg.Colleges))
	for _, c := range cfg.CollegeList() {
		colleges = append(colleges, dto.CollegeResponse{Name: c.Name, Domain: c.Domain})
	}

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, colleges, cfg.Server.FrontendURL, lgr)
	deps.ActivityController = appControllers.NewActivityController(deps.ActivityService, deps.ChatService, lgr)
	deps.NotificationController = appControllers.NewNotificationController(deps.NotificationService)
	deps.HealthController = appControllers.NewHealthController(database.Pool, lgr)

	return deps, nil
}

// allowedOrigins falls back to the frontend when no explicit list is configured
func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.Server.AllowedOrigins) > 0 {
		return cfg.Server.AllowedOrigins
	}
	return []string{cfg.Server.FrontendURL}
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
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(appMiddleware.CORS(allowedOrigins(cfg)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ActivityController,
		deps.NotificationController,
		deps.HealthController,
		deps.WSHandler,
		deps.AuthMiddleware,
		deps.AuthLimiter,
	)

	return router, nil
}
