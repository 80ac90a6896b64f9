package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieSecure          bool   `yaml:"cookie_secure" env:"JWT_COOKIE_SECURE"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	App struct {
		// CurrentYear is the enrollment year open for writes; earlier years are read-only.
		CurrentYear int    `yaml:"current_year" env:"APP_CURRENT_YEAR"`
		UploadDir   string `yaml:"upload_dir" env:"APP_UPLOAD_DIR"`
		BaseURL     string `yaml:"base_url" env:"APP_BASE_URL"`
		// PhotoStorage selects the photo backend: "local" or "s3".
		PhotoStorage string `yaml:"photo_storage" env:"APP_PHOTO_STORAGE"`
	} `yaml:"app"`

	Checkin struct {
		VIPThreshold       int `yaml:"vip_threshold" env:"CHECKIN_VIP_THRESHOLD"`
		ListPageSize       int `yaml:"list_page_size" env:"CHECKIN_LIST_PAGE_SIZE"`
		RosterPageSize     int `yaml:"roster_page_size" env:"CHECKIN_ROSTER_PAGE_SIZE"`
		RecentWindowInDays int `yaml:"recent_window_days" env:"CHECKIN_RECENT_WINDOW_DAYS"`
	} `yaml:"checkin"`

	Duplicates struct {
		SimilarityBackend string  `yaml:"similarity_backend" env:"DUPLICATES_SIMILARITY_BACKEND"`
		DefaultThreshold  float64 `yaml:"default_threshold" env:"DUPLICATES_DEFAULT_THRESHOLD"`
		DefaultLimit      int     `yaml:"default_limit" env:"DUPLICATES_DEFAULT_LIMIT"`
	} `yaml:"duplicates"`

	Telegram struct {
		Enabled  bool   `yaml:"enabled" env:"TELEGRAM_ENABLED"`
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled" env:"SHEETS_ENABLED"`
		CredentialsFile string `yaml:"credentials_file" env:"SHEETS_CREDENTIALS_FILE"`
		SpreadsheetID   string `yaml:"spreadsheet_id" env:"SHEETS_SPREADSHEET_ID"`
		Range           string `yaml:"range" env:"SHEETS_RANGE"`
	} `yaml:"sheets"`

	S3 struct {
		Region          string `yaml:"region" env:"S3_REGION"`
		Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
		AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
		Prefix          string `yaml:"prefix" env:"S3_PREFIX"`
	} `yaml:"s3"`

	Admin struct {
		Username string `yaml:"username" env:"ADMIN_USERNAME"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory, when present, is loaded into the
// process environment first.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"*"}

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "checkin"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "checkin.jump"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.App.CurrentYear = time.Now().Year()
	config.App.UploadDir = "uploads"
	config.App.BaseURL = "/uploads"
	config.App.PhotoStorage = "local"

	config.Checkin.VIPThreshold = 3
	config.Checkin.ListPageSize = 25
	config.Checkin.RosterPageSize = 20
	config.Checkin.RecentWindowInDays = 30

	config.Duplicates.SimilarityBackend = "postgres"
	config.Duplicates.DefaultThreshold = 0.75
	config.Duplicates.DefaultLimit = 50

	config.Sheets.Range = "Participantes!A1"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if config.App.CurrentYear < 2000 || config.App.CurrentYear > 2100 {
		return fmt.Errorf("current year %d is out of range", config.App.CurrentYear)
	}

	for name, size := range map[string]int{
		"list_page_size":   config.Checkin.ListPageSize,
		"roster_page_size": config.Checkin.RosterPageSize,
	} {
		if size < 1 || size > helpers.MaxPageSize {
			return fmt.Errorf("checkin.%s must be between 1 and %d", name, helpers.MaxPageSize)
		}
	}

	if config.Checkin.VIPThreshold < 1 {
		return fmt.Errorf("VIP threshold must be at least 1")
	}

	switch config.Duplicates.SimilarityBackend {
	case "postgres", "application":
	default:
		return fmt.Errorf("unknown similarity backend %q", config.Duplicates.SimilarityBackend)
	}

	switch config.App.PhotoStorage {
	case "local":
	case "s3":
		if config.S3.Bucket == "" || config.S3.Region == "" {
			return fmt.Errorf("s3 photo storage requires bucket and region")
		}
	default:
		return fmt.Errorf("unknown photo storage %q", config.App.PhotoStorage)
	}

	if config.Telegram.Enabled && (config.Telegram.BotToken == "" || config.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram notifications require bot token and chat id")
	}

	if config.Sheets.Enabled && (config.Sheets.CredentialsFile == "" || config.Sheets.SpreadsheetID == "") {
		return fmt.Errorf("sheets export requires credentials file and spreadsheet id")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.AccessTokenExpiration)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
