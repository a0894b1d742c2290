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
	DBDriver       string
	DatabaseURL    string
	MigrationsPath string
	Port           int

	AllowedOrigins  []string
	SessionLifetime time.Duration

	R2   R2Config
	Auth AuthConfig
}

// AuthConfig holds the OAuth providers operators can log in with. A provider
// without both key and secret stays disabled.
type AuthConfig struct {
	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string

	GoogleKey         string
	GoogleSecret      string
	GoogleCallbackURL string

	// Signs the short lived cookie holding the OAuth state
	SessionSecret string
	// Where the callback sends the browser once logged in, empty answers JSON
	LoginRedirectURL string
}

func (c AuthConfig) DiscordEnabled() bool { return c.DiscordKey != "" && c.DiscordSecret != "" }
func (c AuthConfig) GoogleEnabled() bool  { return c.GoogleKey != "" && c.GoogleSecret != "" }

// R2Config is the Cloudflare R2 bucket used for player avatars.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled reports whether every R2 setting is present.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != "" && c.PublicBaseURL != ""
}

// Load reads the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	// A missing .env is fine, real deployments set the variables directly
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:       getEnv("DB_DRIVER", "sqlite3"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		Auth: AuthConfig{
			DiscordKey:         os.Getenv("DISCORD_KEY"),
			DiscordSecret:      os.Getenv("DISCORD_SECRET"),
			DiscordCallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
			GoogleKey:          os.Getenv("GOOGLE_KEY"),
			GoogleSecret:       os.Getenv("GOOGLE_SECRET"),
			GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
			SessionSecret:      os.Getenv("SESSION_SECRET"),
			LoginRedirectURL:   os.Getenv("LOGIN_REDIRECT_URL"),
		},
	}

	if (cfg.Auth.DiscordEnabled() || cfg.Auth.GoogleEnabled()) && cfg.Auth.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required when an OAuth provider is configured")
	}

	switch cfg.DBDriver {
	case "sqlite3":
		cfg.DatabaseURL = getEnv("DATABASE_URL", "sabo_arena.db?_journal_mode=WAL&_foreign_keys=on")
	case "postgres":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	cfg.Port = port

	lifetime, err := time.ParseDuration(getEnv("SESSION_LIFETIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// MigrationsDir is the dialect specific migrations folder.
func (c *Config) MigrationsDir() string {
	return strings.TrimSuffix(c.MigrationsPath, "/") + "/" + c.DBDriver
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
