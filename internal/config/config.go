package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Tickets  TicketConfig
	Settings SettingsConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls the ops HTTP server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DiscordConfig holds gateway credentials and presence.
type DiscordConfig struct {
	Token                     string
	AppID                     string
	GuildID                   string
	BrandName                 string
	Presence                  string
	InteractionTimeoutSeconds int
}

// TicketConfig tunes lifecycle timing and rating bounds.
type TicketConfig struct {
	CloseGraceMillis      int
	DeletionPollMillis    int
	DeletionMaxAttempts   int
	ReservationTTLSeconds int
	RatingMin             int
	RatingMax             int
}

// SettingsConfig locates the guild settings file.
type SettingsConfig struct {
	Path string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. Empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminPasswordHash     string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Discord: DiscordConfig{
			Token:                     os.Getenv("DISCORD_TOKEN"),
			AppID:                     os.Getenv("DISCORD_APP_ID"),
			GuildID:                   os.Getenv("DISCORD_GUILD_ID"),
			BrandName:                 getEnv("BOT_BRAND_NAME", "Support"),
			Presence:                  getEnv("BOT_PRESENCE", "Open a ticket in the panel channel"),
			InteractionTimeoutSeconds: getEnvAsInt("INTERACTION_TIMEOUT_SECONDS", 15),
		},
		Tickets: TicketConfig{
			CloseGraceMillis:      getEnvAsInt("TICKET_CLOSE_GRACE_MS", 3000),
			DeletionPollMillis:    getEnvAsInt("DELETION_POLL_INTERVAL_MS", 1000),
			DeletionMaxAttempts:   getEnvAsInt("DELETION_MAX_ATTEMPTS", 3),
			ReservationTTLSeconds: getEnvAsInt("RESERVATION_TTL_SECONDS", 30),
			RatingMin:             getEnvAsInt("RATING_MIN", 1),
			RatingMax:             getEnvAsInt("RATING_MAX", 10),
		},
		Settings: SettingsConfig{
			Path: getEnv("SETTINGS_PATH", "./config.json"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminPasswordHash:     os.Getenv("AUTH_ADMIN_PASSWORD_HASH"),
		},
	}

	if err := cfg.Tickets.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (t TicketConfig) validate() error {
	if t.RatingMin > t.RatingMax {
		return fmt.Errorf("RATING_MIN (%d) exceeds RATING_MAX (%d)", t.RatingMin, t.RatingMax)
	}
	if t.CloseGraceMillis < 0 {
		return fmt.Errorf("invalid TICKET_CLOSE_GRACE_MS: %d", t.CloseGraceMillis)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// InteractionTimeout bounds a single interaction handler.
func (d DiscordConfig) InteractionTimeout() time.Duration {
	if d.InteractionTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(d.InteractionTimeoutSeconds) * time.Second
}

// CloseGrace is the delay between closing a ticket and deleting its channel.
func (t TicketConfig) CloseGrace() time.Duration {
	return time.Duration(t.CloseGraceMillis) * time.Millisecond
}

// DeletionPollInterval is how often due deletions are drained.
func (t TicketConfig) DeletionPollInterval() time.Duration {
	if t.DeletionPollMillis <= 0 {
		return time.Second
	}
	return time.Duration(t.DeletionPollMillis) * time.Millisecond
}

// ReservationTTL caps how long an in-flight open holds its requester.
func (t TicketConfig) ReservationTTL() time.Duration {
	if t.ReservationTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.ReservationTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
