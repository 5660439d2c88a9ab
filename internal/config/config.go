package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Closing  ClosingConfig
	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	LogLevel       string
}

// StoreConfig selects the persistence backend. AnimalsSeedFile, when set,
// is upserted into the animal directory at startup.
type StoreConfig struct {
	Driver          string
	AnimalsSeedFile string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// PostgresConfig holds settings for PostgreSQL.
type PostgresConfig struct {
	URL string
}

// RedisConfig enables the cross-replica day lock when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// Enabled reports whether Redis locking is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string
}

// ClosingConfig holds day-end close settings. Hours are in Timezone.
type ClosingConfig struct {
	Timezone      string
	AutoHour      int
	ManualMinHour int
	CatchUpDays   int
	CronSchedule  string
}

// Location loads the configured timezone.
func (c ClosingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// WhatsAppConfig contains credentials for day-end notifications through the
// Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Enabled reports whether notifications can be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.ManagerID != ""
}

// SheetsConfig contains configuration required to export summaries to
// Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether summary export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	var errs []error
	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 25*time.Second, &errs),
			LogLevel:       getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverMongoDB)),
			AnimalsSeedFile: os.Getenv("ANIMALS_SEED_FILE"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "dairyfarm"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0, &errs),
			LockTTL:  getDuration("LOCK_TTL", 30*time.Second, &errs),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Closing: ClosingConfig{
			Timezone:      getenvWithDefault("FARM_TIMEZONE", "UTC"),
			AutoHour:      getInt("CLOSE_AUTO_HOUR", 23, &errs),
			ManualMinHour: getInt("CLOSE_MANUAL_MIN_HOUR", 22, &errs),
			CatchUpDays:   getInt("CLOSE_CATCHUP_DAYS", 7, &errs),
			CronSchedule:  getenvWithDefault("CLOSE_CRON_SCHEDULE", "* * * * *"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}

	switch c.Store.Driver {
	case DriverMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
			return errors.New("MONGODB_URI and MONGODB_DB_NAME must be provided")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return errors.New("DATABASE_URL must be provided when STORE_DRIVER=postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if _, err := c.Closing.Location(); err != nil {
		return fmt.Errorf("FARM_TIMEZONE invalid: %w", err)
	}
	if c.Closing.AutoHour < 0 || c.Closing.AutoHour > 23 {
		return errors.New("CLOSE_AUTO_HOUR must be between 0 and 23")
	}
	if c.Closing.ManualMinHour < 0 || c.Closing.ManualMinHour > 23 {
		return errors.New("CLOSE_MANUAL_MIN_HOUR must be between 0 and 23")
	}
	if c.Closing.ManualMinHour > c.Closing.AutoHour {
		return errors.New("CLOSE_MANUAL_MIN_HOUR must not be after CLOSE_AUTO_HOUR")
	}
	if c.Closing.CatchUpDays < 0 {
		return errors.New("CLOSE_CATCHUP_DAYS must not be negative")
	}
	if c.Closing.CronSchedule == "" {
		return errors.New("CLOSE_CRON_SCHEDULE must be provided")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return fallback
	}
	return d
}
