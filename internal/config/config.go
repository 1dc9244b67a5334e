package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Key-value store configuration
	KV KVConfig

	// Blog behavior configuration
	Blog BlogConfig

	// Site presentation settings
	Site SiteConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// KVConfig holds key-value store connection settings. Driver selects the
// backend: redis (default), postgres, or memory.
type KVConfig struct {
	Driver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string
	MigrationsPath   string
}

// BlogConfig holds article store and rendering behavior settings
type BlogConfig struct {
	PageSize           int
	ExcerptLength      int
	IndexCacheTTL      time.Duration
	ArticleCacheTTL    time.Duration
	TemplateCacheTTL   time.Duration
	TemplateTimeout    time.Duration
	ExportRequiresAuth bool
}

// SiteConfig holds the presentation values substituted into theme templates.
// It is immutable after Load; per-request theme selection derives a copy
// instead of mutating shared state.
type SiteConfig struct {
	Name           string
	Description    string
	Domain         string
	Keywords       string
	CopyRight      string
	Robots         string
	ThemeURL       string
	ThemeBaseURL   string
	CodeBeforeHead string
	CodeBeforeBody string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		KV: KVConfig{
			Driver:           getEnv("KV_DRIVER", "redis"),
			RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:    getEnv("REDIS_PASSWORD", ""),
			RedisDB:          getIntEnv("REDIS_DB", 0),
			RedisPrefix:      getEnv("REDIS_PREFIX", "blog"),
			PostgresHost:     getEnv("DB_HOST", "localhost"),
			PostgresPort:     getEnv("DB_PORT", "5432"),
			PostgresUser:     getEnv("DB_USER", "postgres"),
			PostgresPassword: getEnv("DB_PASSWORD", "postgres"),
			PostgresName:     getEnv("DB_NAME", "blog_content"),
			PostgresSSLMode:  getEnv("DB_SSLMODE", "disable"),
			MigrationsPath:   getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Blog: BlogConfig{
			PageSize:           getIntEnv("PAGE_SIZE", 10),
			ExcerptLength:      getIntEnv("EXCERPT_LENGTH", 150),
			IndexCacheTTL:      getDurationEnv("INDEX_CACHE_TTL", time.Minute),
			ArticleCacheTTL:    getDurationEnv("ARTICLE_CACHE_TTL", time.Minute),
			TemplateCacheTTL:   getDurationEnv("TEMPLATE_CACHE_TTL", 5*time.Minute),
			TemplateTimeout:    getDurationEnv("TEMPLATE_TIMEOUT", 10*time.Second),
			ExportRequiresAuth: getBoolEnv("EXPORT_REQUIRES_AUTH", true),
		},
		Site: SiteConfig{
			Name:           getEnv("SITE_NAME", "Blog"),
			Description:    getEnv("SITE_DESCRIPTION", "A blog powered by a key-value store"),
			Domain:         getEnv("SITE_DOMAIN", "localhost:8080"),
			Keywords:       getEnv("SITE_KEYWORDS", "blog"),
			CopyRight:      getEnv("SITE_COPYRIGHT", ""),
			Robots:         getEnv("SITE_ROBOTS", "User-agent: *\nDisallow: /admin"),
			ThemeURL:       getEnv("THEME_URL", ""),
			ThemeBaseURL:   getEnv("THEME_BASE_URL", ""),
			CodeBeforeHead: getEnv("CODE_BEFORE_HEAD", ""),
			CodeBeforeBody: getEnv("CODE_BEFORE_BODY", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.KV.Driver {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("KV_DRIVER must be one of: redis, postgres, memory")
	}
	if c.KV.Driver == "redis" && c.KV.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis driver")
	}
	if c.KV.Driver == "postgres" && (c.KV.PostgresHost == "" || c.KV.PostgresName == "") {
		return fmt.Errorf("DB_HOST and DB_NAME are required for the postgres driver")
	}
	if c.Blog.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	if c.Blog.ExcerptLength <= 0 {
		return fmt.Errorf("EXCERPT_LENGTH must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *KVConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresName, c.PostgresSSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
