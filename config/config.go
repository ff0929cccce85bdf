package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Server    ServerConfig
	Logger    LoggerConfig
	RateLimit RateLimitConfig
	Fax       FaxConfig
	Inbound   InboundConfig
	Internal  InternalConfig
	Providers ProvidersConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name    string
	Version string
	Env     string
	Debug   bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StorageConfig holds storage backend configuration
type StorageConfig struct {
	Backend   string // local | s3
	LocalRoot string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	KMSKeyID  string
	UseSSL    bool
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	BootstrapToken  string // API_KEY, implicit admin scope
	RequireAPIKey   bool
	TokenSigningKey string // JWT signing key for tokenized PDF URLs
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	PublicAPIURL       string
	EnforcePublicHTTPS bool
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level          string
	Format         string
	AuditLogEnable bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Backend              string // memory | redis
	RedisAddr            string
	MaxRequestsPerMinute int // generic default route-group limit; 0 disables
	SendRPM              int
	StatusRPM            int
	InboundListRPM       int
	InboundGetRPM        int
	AdminRPM             int
	Burst                int
}

// FaxConfig holds outbound fax configuration
type FaxConfig struct {
	Backend       string // phaxio | sinch | sip | disabled
	Disabled      bool
	MaxFileSizeMB int
	PDFTokenTTL   time.Duration
}

// InboundConfig holds inbound ingestion configuration
type InboundConfig struct {
	Enabled          bool
	RetentionDays    int
	TokenTTL         time.Duration
	CleanupInterval  time.Duration
	DedupPurgeWindow time.Duration
}

// InternalConfig holds shared secrets for internal (non-webhook) hooks
type InternalConfig struct {
	AsteriskInboundSecret string
	AMIHost               string
	AMIPort               int
	AMIUsername           string
	AMIPassword           string
	FreeswitchSecret      string
}

// ProvidersConfig holds per-backend provider credentials
type ProvidersConfig struct {
	PhaxioAPIKey      string
	PhaxioAPISecret   string
	PhaxioCallbackURL string
	SinchProjectID    string
	SinchAPIToken     string
	SinchCallbackUser string
	SinchCallbackPass string
	SinchCallbackHMAC string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "Faxbot"),
			Version: getEnv("APP_VERSION", "1.0.0"),
			Env:     getEnv("APP_ENV", "development"),
			Debug:   getEnvBool("APP_DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			Database:        getEnv("DB_NAME", "faxbot"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			LocalRoot: getEnv("STORAGE_LOCAL_ROOT", "./data/faxes"),
			Endpoint:  getEnv("S3_ENDPOINT_URL", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "faxbot"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			KMSKeyID:  getEnv("S3_KMS_KEY_ID", ""),
			UseSSL:    getEnvBool("S3_USE_SSL", true),
		},
		Auth: AuthConfig{
			BootstrapToken:  getEnv("API_KEY", ""),
			RequireAPIKey:   getEnvBool("REQUIRE_API_KEY", true),
			TokenSigningKey: getEnv("TOKEN_SIGNING_KEY", "change-me-in-production-32bytes!"),
		},
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvInt("PORT", 8080),
			ReadTimeout:        getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:       getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:        getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			PublicAPIURL:       getEnv("PUBLIC_API_URL", "http://localhost:8080"),
			EnforcePublicHTTPS: getEnvBool("ENFORCE_PUBLIC_HTTPS", false),
		},
		Logger: LoggerConfig{
			Level:          getEnv("LOG_LEVEL", "info"),
			Format:         getEnv("LOG_FORMAT", "json"),
			AuditLogEnable: getEnvBool("AUDIT_LOG_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			Backend:              getEnv("RATE_LIMIT_BACKEND", "memory"),
			RedisAddr:            getEnv("RATE_LIMIT_REDIS_ADDR", "localhost:6379"),
			MaxRequestsPerMinute: getEnvInt("MAX_REQUESTS_PER_MINUTE", 0),
			SendRPM:              getEnvInt("SEND_RPM", 0),
			StatusRPM:            getEnvInt("STATUS_RPM", 0),
			InboundListRPM:       getEnvInt("INBOUND_LIST_RPM", 0),
			InboundGetRPM:        getEnvInt("INBOUND_GET_RPM", 0),
			AdminRPM:             getEnvInt("ADMIN_RPM", 0),
			Burst:                getEnvInt("RATE_LIMIT_BURST", 10),
		},
		Fax: FaxConfig{
			Backend:       getEnv("FAX_BACKEND", "disabled"),
			Disabled:      getEnvBool("FAX_DISABLED", false),
			MaxFileSizeMB: getEnvInt("MAX_FILE_SIZE_MB", 10),
			PDFTokenTTL:   getEnvMinutes("PDF_TOKEN_TTL_MINUTES", 60),
		},
		Inbound: InboundConfig{
			Enabled:          getEnvBool("INBOUND_ENABLED", false),
			RetentionDays:    getEnvInt("INBOUND_RETENTION_DAYS", 30),
			TokenTTL:         getEnvMinutes("INBOUND_TOKEN_TTL_MINUTES", 60),
			CleanupInterval:  getEnvDuration("RETENTION_SWEEP_INTERVAL", time.Hour),
			DedupPurgeWindow: getEnvDuration("DEDUP_PURGE_WINDOW", 48*time.Hour),
		},
		Internal: InternalConfig{
			AsteriskInboundSecret: getEnv("ASTERISK_INBOUND_SECRET", ""),
			AMIHost:               getEnv("ASTERISK_AMI_HOST", "localhost"),
			AMIPort:               getEnvInt("ASTERISK_AMI_PORT", 5038),
			AMIUsername:           getEnv("ASTERISK_AMI_USERNAME", ""),
			AMIPassword:           getEnv("ASTERISK_AMI_PASSWORD", ""),
			FreeswitchSecret:      getEnv("FREESWITCH_INTERNAL_SECRET", ""),
		},
		Providers: ProvidersConfig{
			PhaxioAPIKey:      getEnv("PHAXIO_API_KEY", ""),
			PhaxioAPISecret:   getEnv("PHAXIO_API_SECRET", ""),
			PhaxioCallbackURL: getEnv("PHAXIO_CALLBACK_URL", ""),
			SinchProjectID:    getEnv("SINCH_PROJECT_ID", ""),
			SinchAPIToken:     getEnv("SINCH_API_TOKEN", ""),
			SinchCallbackUser: getEnv("SINCH_CALLBACK_BASIC_USER", ""),
			SinchCallbackPass: getEnv("SINCH_CALLBACK_BASIC_PASS", ""),
			SinchCallbackHMAC: getEnv("SINCH_CALLBACK_HMAC_SECRET", ""),
		},
	}

	appConfig = config
	return config
}

// Get returns the global configuration instance
func Get() *Config {
	if appConfig == nil {
		return Load()
	}
	return appConfig
}

// Helper functions for environment variable parsing
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getEnvMinutes reads an integer-minutes env var and returns it as a Duration.
func getEnvMinutes(key string, fallbackMinutes int) time.Duration {
	minutes := getEnvInt(key, fallbackMinutes)
	return time.Duration(minutes) * time.Minute
}

// IsDevelopment returns true if the app is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if the app is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
