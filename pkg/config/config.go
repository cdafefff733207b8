package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Lock backends supported by the scheduler write path.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduler  SchedulerConfig
	Calendar   CalendarConfig
	Migrations MigrationsConfig
	Metrics    MetricsConfig
	Cache      CacheConfig
	Monitor    MonitorConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig governs the per-slot lock guarding session creation.
type SchedulerConfig struct {
	LockBackend string
	LockTTL     time.Duration
	LockWait    time.Duration
	LockPrefix  string
}

// CalendarConfig anchors recurring sessions on real dates for iCalendar feeds.
type CalendarConfig struct {
	TermStart  time.Time
	TermWeeks  int
	Timezone   string
	FeedSecret string
	FeedTTL    time.Duration
}

// MigrationsConfig toggles embedded schema migrations at boot.
type MigrationsConfig struct {
	AutoMigrate bool
}

// CacheConfig controls the Redis grid cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// MonitorConfig controls the background conflict scan triggered by writes.
type MonitorConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("SCHEDULER_LOCK_BACKEND")))
	if backend != LockBackendRedis {
		backend = LockBackendMemory
	}
	cfg.Scheduler = SchedulerConfig{
		LockBackend: backend,
		LockTTL:     parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 10*time.Second),
		LockWait:    parseDuration(v.GetString("SCHEDULER_LOCK_WAIT"), 3*time.Second),
		LockPrefix:  v.GetString("SCHEDULER_LOCK_PREFIX"),
	}

	weeks := v.GetInt("CALENDAR_TERM_WEEKS")
	if weeks <= 0 {
		weeks = 16
	}
	cfg.Calendar = CalendarConfig{
		TermStart:  parseDate(v.GetString("CALENDAR_TERM_START")),
		TermWeeks:  weeks,
		Timezone:   v.GetString("CALENDAR_TIMEZONE"),
		FeedSecret: v.GetString("CALENDAR_FEED_SECRET"),
		FeedTTL:    parseDuration(v.GetString("CALENDAR_FEED_TTL"), 90*24*time.Hour),
	}
	if cfg.Calendar.FeedSecret == "" {
		cfg.Calendar.FeedSecret = cfg.JWT.Secret
	}

	cfg.Migrations = MigrationsConfig{AutoMigrate: v.GetBool("DB_AUTO_MIGRATE")}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
		Prefix:  v.GetString("CACHE_PREFIX"),
	}
	cfg.Monitor = MonitorConfig{
		Enabled:    v.GetBool("CONFLICT_MONITOR_ENABLED"),
		Workers:    v.GetInt("CONFLICT_MONITOR_WORKERS"),
		MaxRetries: v.GetInt("CONFLICT_MONITOR_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("CONFLICT_MONITOR_RETRY_DELAY"), 2*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "department_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "timetable-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_LOCK_BACKEND", LockBackendMemory)
	v.SetDefault("SCHEDULER_LOCK_TTL", "10s")
	v.SetDefault("SCHEDULER_LOCK_WAIT", "3s")
	v.SetDefault("SCHEDULER_LOCK_PREFIX", "timetable:slot")

	v.SetDefault("CALENDAR_TERM_START", "")
	v.SetDefault("CALENDAR_TERM_WEEKS", 16)
	v.SetDefault("CALENDAR_TIMEZONE", "America/Mexico_City")
	v.SetDefault("CALENDAR_FEED_SECRET", "")
	v.SetDefault("CALENDAR_FEED_TTL", "2160h")

	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_PREFIX", "timetable:grid")

	v.SetDefault("CONFLICT_MONITOR_ENABLED", true)
	v.SetDefault("CONFLICT_MONITOR_WORKERS", 1)
	v.SetDefault("CONFLICT_MONITOR_MAX_RETRIES", 3)
	v.SetDefault("CONFLICT_MONITOR_RETRY_DELAY", "2s")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseDate reads YYYY-MM-DD; an empty or malformed value yields the zero time.
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
