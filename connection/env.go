package connection

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	BackendNotion    = "notion"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	Port    string
	GinMode string

	Backend      string
	StoreTimeout time.Duration
	SkipSchema   bool

	NotionToken      string
	NotionDatabaseID string
	NotionVersion    string
	NotionBaseURL    string
	NotionRateLimit  float64

	FirestoreCredentials string
	FirestoreProjectID   string
	FirestoreCollection  string

	CORSAllowOrigins []string
	JWTSecret        string
	LogLevel         slog.Level
}

// DatabaseID is the database (or collection) the task service is bound to.
func (c *Config) DatabaseID() string {
	switch c.Backend {
	case BackendFirestore:
		return c.FirestoreCollection
	case BackendMemory:
		return "tasks"
	default:
		return c.NotionDatabaseID
	}
}

// LoadConfig reads the environment, loading .env first when it exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found or failed to load", "error", err)
	}

	cfg := &Config{
		Port:                 getenv("PORT", "3001"),
		GinMode:              getenv("GIN_MODE", "release"),
		Backend:              strings.ToLower(getenv("STORE_BACKEND", BackendNotion)),
		NotionToken:          getenv("NOTION_TOKEN", ""),
		NotionDatabaseID:     getenv("NOTION_DATABASE_ID", ""),
		NotionVersion:        getenv("NOTION_VERSION", "2022-06-28"),
		NotionBaseURL:        getenv("NOTION_BASE_URL", "https://api.notion.com"),
		FirestoreCredentials: getenv("FIRESTORE_CREDENTIALS", ""),
		FirestoreProjectID:   getenv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCollection:  getenv("FIRESTORE_COLLECTION", "Tasks"),
		JWTSecret:            getenv("JWT_SECRET_KEY", ""),
	}

	var err error
	if cfg.StoreTimeout, err = time.ParseDuration(getenv("STORE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}
	if cfg.SkipSchema, err = strconv.ParseBool(getenv("SKIP_SCHEMA_CHECK", "false")); err != nil {
		return nil, fmt.Errorf("invalid SKIP_SCHEMA_CHECK: %w", err)
	}
	if cfg.NotionRateLimit, err = strconv.ParseFloat(getenv("NOTION_RATE_LIMIT", "3"), 64); err != nil {
		return nil, fmt.Errorf("invalid NOTION_RATE_LIMIT: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	for _, origin := range strings.Split(getenv("CORS_ALLOW_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowOrigins = append(cfg.CORSAllowOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid GIN_MODE %q: must be one of %s, %s, %s", c.GinMode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	switch c.Backend {
	case BackendNotion:
		if c.NotionToken == "" {
			return fmt.Errorf("environment variable NOTION_TOKEN is not set")
		}
		if c.NotionDatabaseID == "" {
			return fmt.Errorf("environment variable NOTION_DATABASE_ID is not set")
		}
		if u, err := url.Parse(c.NotionBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid NOTION_BASE_URL %q", c.NotionBaseURL)
		}
	case BackendFirestore:
		if c.FirestoreCredentials == "" {
			return fmt.Errorf("environment variable FIRESTORE_CREDENTIALS is not set")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}
	return nil
}

// LogValue keeps credentials out of the logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("backend", c.Backend),
		slog.String("database", c.DatabaseID()),
		slog.Int("token_length", len(c.NotionToken)),
		slog.Duration("store_timeout", c.StoreTimeout),
		slog.Bool("auth", c.JWTSecret != ""),
	)
}

// getenv returns the trimmed value of key, or def when it is unset or blank.
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
