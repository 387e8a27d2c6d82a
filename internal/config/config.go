package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `toml:"host"`
	Port               string `toml:"port"`
	User               string `toml:"user"`
	Password           string `toml:"password"`
	Name               string `toml:"name"`
	SSLMode            string `toml:"sslmode"`
	MaxOpenConns       int    `toml:"max_open_conns"`
	MaxIdleConns       int    `toml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `toml:"conn_max_lifetime_sec"`
	AutoMigrate        bool   `toml:"auto_migrate"`
}

// BlobConfig selects the blob store backend and the container documents live in.
type BlobConfig struct {
	// Driver is one of "minio", "azure" or "memory".
	Driver        string `toml:"driver"`
	Container     string `toml:"container"`
	MaxUploadSize string `toml:"max_upload_size"`

	maxUploadBytes int64
}

// MaxUploadBytes returns the parsed MaxUploadSize.
func (b BlobConfig) MaxUploadBytes() int64 {
	return b.maxUploadBytes
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// AzureConfig holds Azure Blob Storage settings.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
}

// RedisConfig enables the shared session store. An empty Addr keeps sessions in process memory.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// AuthConfig holds token signing and bootstrap account settings.
type AuthConfig struct {
	JWTSecret          string        `toml:"jwt_secret"`
	TokenTTL           time.Duration `toml:"-"`
	TokenTTLRaw        string        `toml:"token_ttl"`
	AdminUsername      string        `toml:"admin_username"`
	AdminPassword      string        `toml:"admin_password"`
	LoginRatePerMinute int           `toml:"login_rate_per_minute"`
}

// LogConfig controls the zap logger and its optional rolling file sink.
type LogConfig struct {
	Level      string `toml:"level"`
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// CORSConfig lists allowed origins; empty means same-origin only.
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AppConfig is the centralized configuration struct for the application.
// Values come from defaults, then an optional TOML file, then environment variables.
type AppConfig struct {
	AppHost  string         `toml:"app_host"`
	Port     string         `toml:"port"`
	Env      string         `toml:"env"`
	Database DatabaseConfig `toml:"database"`
	Blob     BlobConfig     `toml:"blob"`
	MinIO    MinIOConfig    `toml:"minio"`
	Azure    AzureConfig    `toml:"azure"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
	CORS     CORSConfig     `toml:"cors"`
}

// DefaultConfigFile is read when CONFIG_FILE is not set. A missing file is not an error.
const DefaultConfigFile = "config.toml"

func defaults() *AppConfig {
	return &AppConfig{
		AppHost: "localhost:8080",
		Port:    "8080",
		Env:     "production",
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
			AutoMigrate:        true,
		},
		Blob: BlobConfig{
			Driver:        "minio",
			Container:     "documents",
			MaxUploadSize: "10MB",
		},
		Auth: AuthConfig{
			TokenTTLRaw:        "12h",
			LoginRatePerMinute: 20,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load reads configuration from defaults, the TOML file named by CONFIG_FILE and environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	cfg := defaults()

	path := getEnv("CONFIG_FILE", DefaultConfigFile)
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *AppConfig) {
	c.AppHost = getEnv("APP_HOST", c.AppHost)
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("APP_ENV", c.Env)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", c.Database.ConnMaxLifetimeSec)
	c.Database.AutoMigrate = getEnvBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.Blob.Driver = getEnv("BLOB_DRIVER", c.Blob.Driver)
	c.Blob.Container = getEnv("BLOB_CONTAINER", c.Blob.Container)
	c.Blob.MaxUploadSize = getEnv("BLOB_MAX_UPLOAD_SIZE", c.Blob.MaxUploadSize)

	c.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", c.MinIO.Endpoint)
	c.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", c.MinIO.AccessKey)
	c.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", c.MinIO.SecretKey)
	c.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", c.MinIO.UseSSL)

	c.Azure.ConnectionString = getEnv("AZURE_STORAGE_CONNECTION_STRING", c.Azure.ConnectionString)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTLRaw = getEnv("AUTH_TOKEN_TTL", c.Auth.TokenTTLRaw)
	c.Auth.AdminUsername = getEnv("ADMIN_USERNAME", c.Auth.AdminUsername)
	c.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", c.Auth.AdminPassword)
	c.Auth.LoginRatePerMinute = getEnvInt("AUTH_LOGIN_RATE_PER_MINUTE", c.Auth.LoginRatePerMinute)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Path = getEnv("LOG_PATH", c.Log.Path)
	c.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.Log.MaxSizeMB)
	c.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.Log.MaxBackups)
	c.Log.MaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.Log.MaxAgeDays)
	c.Log.Compress = getEnvBool("LOG_COMPRESS", c.Log.Compress)

	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
}

func (c *AppConfig) finalize() error {
	size, err := units.FromHumanSize(c.Blob.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid blob max upload size %q: %w", c.Blob.MaxUploadSize, err)
	}
	c.Blob.maxUploadBytes = size

	ttl, err := time.ParseDuration(c.Auth.TokenTTLRaw)
	if err != nil || ttl <= 0 {
		return fmt.Errorf("invalid auth token ttl %q", c.Auth.TokenTTLRaw)
	}
	c.Auth.TokenTTL = ttl

	switch c.Blob.Driver {
	case "minio", "azure", "memory":
	default:
		return fmt.Errorf("unsupported blob driver %q", c.Blob.Driver)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
