package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"githubglimpse/favorites"
	"githubglimpse/models"
)

// DefaultAPIBaseURL is the hosted GitHub Glimpse API.
const DefaultAPIBaseURL = "https://us-central1-githubglimpse.cloudfunctions.net/appFunction"

// Favorites backends.
const (
	BackendFile = "file"
	BackendSQL  = "sql"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Client side
	APIBaseURL       string
	PageSize         int
	FavoritesBackend string
	FavoritesPath    string
	LogLevel         string
	HTTPTimeout      time.Duration

	// Catalog server
	ListenAddr      string
	GitHubToken     string
	RefreshInterval int
	SeedRepos       []string
	IssueLimit      int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration

	// Database
	DBDriver          string
	DatabaseURL       string
	SQLitePath        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

func setDefaults() {
	viper.SetDefault("GLIMPSE_CONFIG", ".env")
	viper.SetDefault("API_BASE_URL", DefaultAPIBaseURL)
	viper.SetDefault("PAGE_SIZE", models.DefaultPageSize)
	viper.SetDefault("FAVORITES_BACKEND", BackendFile)
	viper.SetDefault("FAVORITES_PATH", favorites.DefaultPath())
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_TIMEOUT_SEC", 30)
	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("REFRESH_INTERVAL", 3600)
	viper.SetDefault("ISSUE_LIMIT", 20)
	viper.SetDefault("READ_TIMEOUT_SEC", 5)
	viper.SetDefault("WRITE_TIMEOUT_SEC", 10)
	viper.SetDefault("DB_DRIVER", DriverSQLite)
	viper.SetDefault("SQLITE_PATH", "glimpse.db")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 25)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
}

// Load loads configuration from an optional env file and environment
// variables. Environment variables win over the file.
func (c *Config) Load() error {
	setDefaults()
	viper.AutomaticEnv()

	viper.SetConfigFile(viper.GetString("GLIMPSE_CONFIG"))
	viper.SetConfigType("env")

	// Read the env file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c.APIBaseURL = strings.TrimRight(viper.GetString("API_BASE_URL"), "/")
	c.PageSize = viper.GetInt("PAGE_SIZE")
	c.FavoritesBackend = strings.ToLower(viper.GetString("FAVORITES_BACKEND"))
	c.FavoritesPath = viper.GetString("FAVORITES_PATH")
	c.LogLevel = viper.GetString("LOG_LEVEL")
	c.HTTPTimeout = seconds("HTTP_TIMEOUT_SEC")

	c.ListenAddr = viper.GetString("LISTEN_ADDR")
	c.GitHubToken = viper.GetString("GITHUB_TOKEN")
	c.RefreshInterval = viper.GetInt("REFRESH_INTERVAL")
	c.SeedRepos = splitList(viper.GetString("SEED_REPOS"))
	c.IssueLimit = viper.GetInt("ISSUE_LIMIT")
	c.ReadTimeout = seconds("READ_TIMEOUT_SEC")
	c.WriteTimeout = seconds("WRITE_TIMEOUT_SEC")

	c.DBDriver = strings.ToLower(viper.GetString("DB_DRIVER"))
	c.DatabaseURL = viper.GetString("DATABASE_URL")
	c.SQLitePath = viper.GetString("SQLITE_PATH")
	c.DBMaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	c.DBMaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")

	lifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	c.DBConnMaxLifetime = lifetime

	return c.Validate()
}

// Validate checks the options every command needs.
func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}

	switch c.FavoritesBackend {
	case BackendFile:
		if c.FavoritesPath == "" {
			return fmt.Errorf("FAVORITES_PATH is required for the file backend")
		}
	case BackendSQL:
	default:
		return fmt.Errorf("unknown FAVORITES_BACKEND %q", c.FavoritesBackend)
	}

	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	return nil
}

// ValidateServer checks the options the catalog server needs on top of Validate.
func (c *Config) ValidateServer() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}
	if c.RefreshInterval < 1 {
		return fmt.Errorf("REFRESH_INTERVAL must be a positive number of seconds")
	}
	if c.IssueLimit < 0 {
		return fmt.Errorf("ISSUE_LIMIT cannot be negative")
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s port=%s host=%s sslmode=disable",
		viper.GetString("POSTGRES_USER"),
		viper.GetString("POSTGRES_PASSWORD"),
		viper.GetString("POSTGRES_DB"),
		viper.GetString("POSTGRES_PORT"),
		viper.GetString("POSTGRES_HOST"),
	)
}

// seconds reads an integer number of seconds as a duration.
func seconds(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Second
}

// splitList parses a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
