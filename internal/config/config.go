package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Storage  string
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Log      LogConfig
	App      AppConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
	Migrate  bool
}

// DSN renders the connection string understood by pgxpool.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	CatalogPath      string
	ReportScope      string
	RateLimitPerMin  int
	CampaignCacheTTL time.Duration
	IdempotencyTTL   time.Duration
	Location         string
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: stringEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	storage := strings.ToLower(stringEnv("STORAGE", StoragePostgres))
	if storage != StoragePostgres && storage != StorageMemory {
		return nil, fmt.Errorf("%s: invalid STORAGE %q", op, storage)
	}

	postgresCfg, err := postgresConfig(storage == StoragePostgres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisEnabled, err := boolEnv("REDIS_ENABLED", storage == StoragePostgres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Enabled:  redisEnabled,
		Addr:     stringEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	authCfg, err := authConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rateLimit, err := intEnv("RATE_LIMIT_PER_MIN", 30)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheTTL, err := durationEnv("CAMPAIGN_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idemTTL, err := durationEnv("IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	location := stringEnv("APP_TIMEZONE", "America/Sao_Paulo")
	if _, err := time.LoadLocation(location); err != nil {
		return nil, fmt.Errorf("%s: invalid APP_TIMEZONE: %w", op, err)
	}

	appCfg := AppConfig{
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		ReportScope:      stringEnv("REPORT_SCOPE", "finished"),
		RateLimitPerMin:  rateLimit,
		CampaignCacheTTL: cacheTTL,
		IdempotencyTTL:   idemTTL,
		Location:         location,
	}

	return &Config{
		Server:   serverCfg,
		Storage:  storage,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Auth:     authCfg,
		Log: LogConfig{
			Level:  stringEnv("LOG_LEVEL", "info"),
			Format: stringEnv("LOG_FORMAT", "text"),
		},
		App: appCfg,
	}, nil
}

// NewAuth reads only the token settings, for tools that do not start the server.
func NewAuth() (AuthConfig, error) {
	_ = godotenv.Load()

	cfg, err := authConfig()
	if err != nil {
		return AuthConfig{}, fmt.Errorf("config.NewAuth: %w", err)
	}
	return cfg, nil
}

func authConfig() (AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return AuthConfig{}, errors.New("missing JWT_SECRET")
	}

	ttl, err := durationEnv("JWT_TTL", 12*time.Hour)
	if err != nil {
		return AuthConfig{}, err
	}

	return AuthConfig{
		JWTSecret:      secret,
		JWTIssuer:      stringEnv("JWT_ISSUER", "cartodesk"),
		AccessTokenTTL: ttl,
	}, nil
}

func postgresConfig(required bool) (PostgresConfig, error) {
	port, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return PostgresConfig{}, err
	}

	migrate, err := boolEnv("POSTGRES_MIGRATE", true)
	if err != nil {
		return PostgresConfig{}, err
	}

	cfg := PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		Host:     stringEnv("POSTGRES_HOST", "localhost"),
		Port:     port,
		SSLMode:  stringEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
		Migrate:  migrate,
	}

	if !required {
		return cfg, nil
	}

	switch {
	case cfg.User == "":
		return cfg, fmt.Errorf("missing POSTGRES_USER")
	case cfg.Password == "":
		return cfg, fmt.Errorf("missing POSTGRES_PASSWORD")
	case cfg.Name == "":
		return cfg, fmt.Errorf("missing POSTGRES_DB")
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
