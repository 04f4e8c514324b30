package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		LogSQL   bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host           string
		Port           string
		AllowedOrigins []string
	}

	JWT struct {
		Secret string
		Issuer string
		TTL    time.Duration
	}

	Media struct {
		Backend   string // local | minio
		LocalDir  string
		PublicURL string
		MaxBytes  int64

		MinioEndpoint  string
		MinioAccessKey string
		MinioSecretKey string
		MinioBucket    string
		MinioUseSSL    bool
	}
}

// New builds the config from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "yourcode_api")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.LogSQL = isTruthy(os.Getenv("DB_LOG_SQL"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" && cfg.DB.Driver == "mysql" {
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "yourcode")

		switch cfg.DB.Driver {
		case "postgres":
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		case "sqlite":
			cfg.DB.DSN = getEnvDefault("SQLITE_PATH", "yourcode.db")
		default:
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// gRPC (health + reflection)
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP API
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")
	cfg.HTTP.AllowedOrigins = splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	// JWT
	cfg.JWT.Secret = getEnvDefault("JWT_SECRET", "change-me-in-production")
	cfg.JWT.Issuer = getEnvDefault("JWT_ISSUER", "yourcode")
	cfg.JWT.TTL = getEnvDuration("JWT_TTL", 24*time.Hour)

	// Media
	cfg.Media.Backend = strings.ToLower(getEnvDefault("MEDIA_BACKEND", "local"))
	cfg.Media.LocalDir = getEnvDefault("MEDIA_LOCAL_DIR", "./uploads")
	cfg.Media.PublicURL = strings.TrimRight(getEnvDefault("MEDIA_PUBLIC_URL", "/uploads"), "/")
	cfg.Media.MaxBytes = 5 << 20
	if v := getEnvDefault("MEDIA_MAX_BYTES", ""); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Media.MaxBytes = n
		}
	}
	cfg.Media.MinioEndpoint = getEnvDefault("MINIO_ENDPOINT", "localhost:9000")
	cfg.Media.MinioAccessKey = getEnvDefault("MINIO_ACCESS_KEY", "")
	cfg.Media.MinioSecretKey = getEnvDefault("MINIO_SECRET_KEY", "")
	cfg.Media.MinioBucket = getEnvDefault("MINIO_BUCKET", "yourcode-uploads")
	cfg.Media.MinioUseSSL = isTruthy(os.Getenv("MINIO_USE_SSL"))

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := getEnvDefault(k, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
