package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/jumpyouth/checkin/internal/app/controllers"
	appMigrations "github.com/jumpyouth/checkin/internal/app/migrations"
	appRepos "github.com/jumpyouth/checkin/internal/app/repositories"
	appRoutes "github.com/jumpyouth/checkin/internal/app/routes"
	appServices "github.com/jumpyouth/checkin/internal/app/services"
	"github.com/jumpyouth/checkin/internal/config"
	"github.com/jumpyouth/checkin/internal/db"
	appMiddleware "github.com/jumpyouth/checkin/internal/middleware"
	pkgAuth "github.com/jumpyouth/checkin/internal/pkg/auth"
	"github.com/jumpyouth/checkin/internal/pkg/filestorage"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
	"github.com/jumpyouth/checkin/internal/pkg/notify"
	"github.com/jumpyouth/checkin/internal/pkg/sheets"
	"github.com/jumpyouth/checkin/internal/pkg/websocket"
)

// DefaultConfigPath is used when no path is given on the command line
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	FileStorage filestorage.FileStorage
	Hub         *websocket.Hub

	AuthService        *appServices.AuthService
	YearService        appServices.YearService
	ParticipantService appServices.ParticipantService
	GroupService       appServices.GroupService
	EventDayService    appServices.EventDayService
	CheckinService     appServices.CheckinService
	HeadcountService   appServices.HeadcountService
	DuplicateService   appServices.DuplicateService
	ReportService      appServices.ReportService
	ExportService      appServices.ExportService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Component("app")
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens and pings the connection pool.
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return dbPool, nil
}

// RunMigrations applies the pending SQL files in the configured directory.
func RunMigrations(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Str("dir", cfg.Database.MigrationsDir).Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(dbPool).MigrateFromDirectory(ctx, cfg.Database.MigrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, migrates and seeds the admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	dbPool, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := RunMigrations(ctx, cfg, dbPool, lgr); err != nil {
		dbPool.Close()
		return nil, err
	}

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		users := appRepos.NewUserRepository(dbPool)
		jwt := newJWTService(cfg)
		authService := appServices.NewAuthService(users, jwt, logger.Component("auth"))
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.Email); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
		}
	}

	return dbPool, nil
}

func newJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// NewFileStorage picks the photo backend from configuration
func NewFileStorage(cfg *config.Config) (filestorage.FileStorage, error) {
	switch strings.ToLower(cfg.App.PhotoStorage) {
	case "s3":
		return filestorage.NewS3Storage(filestorage.S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
		})
	default:
		return filestorage.NewLocalStorage(cfg.App.UploadDir, cfg.App.BaseURL)
	}
}

// NewSheetWriter returns nil when the Sheets export is disabled
func NewSheetWriter(ctx context.Context, cfg *config.Config) (appServices.SheetWriter, error) {
	if !cfg.Sheets.Enabled {
		return nil, nil
	}
	client, err := sheets.New(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return client, nil
}

func newNotifier(cfg *config.Config) (appServices.Notifier, error) {
	if !cfg.Telegram.Enabled {
		return nil, nil
	}
	bot, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
	}
	return bot, nil
}

// BuildServices initializes repositories, storage, integrations and services.
// The returned Dependencies has no controllers yet.
func BuildServices(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.JWTService = newJWTService(cfg)

	var err error
	deps.FileStorage, err = NewFileStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Str("backend", cfg.App.PhotoStorage).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Telegram disabled")
		return nil, err
	}
	sheet, err := NewSheetWriter(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Google Sheets disabled")
		return nil, err
	}

	deps.Hub = websocket.NewHub(logger.Component("livefeed"))
	feed := websocket.NewPublisher(deps.Hub)

	years := appServices.YearPolicy{Current: cfg.App.CurrentYear}
	repos := deps.Repos

	deps.AuthService = appServices.NewAuthService(repos.UserRepository, deps.JWTService, logger.Component("auth"))
	deps.YearService = appServices.NewYearService(repos.ParticipantRepository, years)
	deps.ParticipantService = appServices.NewParticipantService(
		repos.ParticipantRepository,
		repos.CohortRepository,
		repos.ImperioRepository,
		deps.FileStorage,
		years,
		appServices.ParticipantSettings{
			PageSize:   cfg.Checkin.ListPageSize,
			WindowDays: cfg.Checkin.RecentWindowInDays,
		},
	)
	deps.GroupService = appServices.NewGroupService(repos.CohortRepository, repos.ImperioRepository, repos.ParticipantRepository, years)
	deps.EventDayService = appServices.NewEventDayService(repos.EventDayRepository, years)
	deps.CheckinService = appServices.NewCheckinService(
		repos.ParticipantRepository,
		repos.EventDayRepository,
		repos.AttendanceRepository,
		repos.HeadcountRepository,
		feed,
		notifier,
		years,
		appServices.CheckinSettings{
			PageSize:     cfg.Checkin.RosterPageSize,
			VIPThreshold: cfg.Checkin.VIPThreshold,
		},
	)
	deps.HeadcountService = appServices.NewHeadcountService(repos.HeadcountRepository, repos.EventDayRepository, feed, years)
	deps.DuplicateService = appServices.NewDuplicateService(
		repos.DuplicateRepository,
		repos.ParticipantRepository,
		years,
		appServices.DuplicateSettings{
			Backend:          cfg.Duplicates.SimilarityBackend,
			DefaultThreshold: cfg.Duplicates.DefaultThreshold,
			DefaultLimit:     cfg.Duplicates.DefaultLimit,
		},
	)
	deps.ReportService = appServices.NewReportService(repos.ReportRepository, repos.EventDayRepository, repos.HeadcountRepository)
	deps.ExportService = appServices.NewExportService(
		repos.ParticipantRepository,
		repos.EventDayRepository,
		repos.AttendanceRepository,
		sheet,
		cfg.Sheets.Range,
	)

	return deps, nil
}

// BuildDependencies initializes services plus the HTTP layer on top of them.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps, err := BuildServices(ctx, cfg, dbPool, lgr)
	if err != nil {
		return nil, err
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	liveFeed := websocket.NewHandler(deps.Hub, deps.Repos.EventDayRepository, cfg.Server.AllowedOrigins, logger.Component("livefeed"))

	deps.Controllers = appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(deps.AuthService, deps.YearService, cfg.JWT.CookieSecure, logger.Component("auth")),
		Participant: appControllers.NewParticipantController(deps.ParticipantService),
		EventDay:    appControllers.NewEventDayController(deps.EventDayService),
		Checkin:     appControllers.NewCheckinController(deps.CheckinService, deps.HeadcountService),
		Group:       appControllers.NewGroupController(deps.GroupService),
		Duplicate:   appControllers.NewDuplicateController(deps.DuplicateService),
		Dashboard:   appControllers.NewDashboardController(deps.ReportService),
		Export:      appControllers.NewExportController(deps.ExportService, logger.Component("export")),
		LiveFeed:    liveFeed.HandleConnection,
	}

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
		return nil, err
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), gin.Recovery(), appMiddleware.CORS(cfg.Server.AllowedOrigins))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, cfg.App.CurrentYear)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
