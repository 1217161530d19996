package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Log        LogConfig
	Scraper    ScraperConfig
	Migrations MigrationsConfig
	Admin      AdminConfig
}

type AppConfig struct {
	AppName         string
	Environment     string
	HTTPPort        string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

// Configured reports whether enough is set to attempt a connection.
func (c DatabaseConfig) Configured() bool {
	return c.DBHost != "" && c.DBName != "" && c.DBUser != ""
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
	Issuer           string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type LogConfig struct {
	Level  string
	Format string
}

type ScraperConfig struct {
	UserAgent       string
	Timeout         time.Duration
	HeadlessEnabled bool
	MinTextLength   int
}

type MigrationsConfig struct {
	Dir  string
	Auto bool
}

// AdminConfig seeds the first administrator; both Email and Password must
// be set for the seeder to run.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// ConfigFileEnv names the variable holding an optional TOML file path.
const ConfigFileEnv = "JOBTRAIL_CONFIG"

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidValue       = errors.New("invalid configuration value")
)

var defaults = map[string]string{
	"APP_ENV":                  "development",
	"APP_SHUTDOWN_TIMEOUT":     "10s",
	"DB_PORT":                  "5432",
	"DB_SSL_MODE":              "disable",
	"DB_CONNECT_TIMEOUT":       "5s",
	"DB_POOL_MAX_CONNS":        "10",
	"DB_POOL_MIN_CONNS":        "0",
	"JWT_ACCESS_EXPIRES_IN":    "15m",
	"JWT_REFRESH_EXPIRES_IN":   "168h",
	"JWT_ISSUER":               "job-trail",
	"REDIS_HOST":               "localhost",
	"REDIS_PORT":               "6379",
	"REDIS_DB":                 "0",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "text",
	"SCRAPER_USER_AGENT":       "Mozilla/5.0 (compatible; job-trail/1.0)",
	"SCRAPER_TIMEOUT":          "20s",
	"SCRAPER_HEADLESS_ENABLED": "false",
	"SCRAPER_MIN_TEXT_LENGTH":  "200",
	"MIGRATIONS_DIR":           "migrations",
	"ADMIN_USERNAME":           "admin",
	"MIGRATIONS_AUTO":          "false",
}

// Load resolves every key from the environment first, then the TOML file
// named by JOBTRAIL_CONFIG, then the built-in defaults. A .env file in the
// working directory is read into the environment when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	file, err := readFile(strings.TrimSpace(os.Getenv(ConfigFileEnv)))
	if err != nil {
		return Config{}, err
	}
	return build(func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		if v, ok := file[key]; ok {
			return v
		}
		return defaults[key]
	})
}

// readFile flattens a TOML document into environment-style keys, so that
// [jwt] access_expires_in = "15m" resolves JWT_ACCESS_EXPIRES_IN.
func readFile(path string) (map[string]string, error) {
	out := map[string]string{}
	if path == "" {
		return out, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	for section, v := range doc {
		table, ok := v.(map[string]any)
		if !ok {
			out[strings.ToUpper(section)] = fmt.Sprint(v)
			continue
		}
		for k, val := range table {
			out[strings.ToUpper(section+"_"+k)] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func build(lookup func(string) string) (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := lookup(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return lookup(key)
	}
	dur := func(key string) time.Duration {
		raw := lookup(key)
		if raw == "" {
			return 0
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return 0
		}
		return d
	}
	num := func(key string) int {
		raw := lookup(key)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			invalid = append(invalid, key)
			return 0
		}
		return n
	}
	flag := func(key string) bool {
		raw := lookup(key)
		if raw == "" {
			return false
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return false
		}
		return b
	}

	cfg.App = AppConfig{
		AppName:         req("APP_NAME"),
		Environment:     opt("APP_ENV"),
		HTTPPort:        req("HTTP_PORT"),
		ShutdownTimeout: dur("APP_SHUTDOWN_TIMEOUT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS")),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS")),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  dur("JWT_ACCESS_EXPIRES_IN"),
		RefreshExpiresIn: dur("JWT_REFRESH_EXPIRES_IN"),
		Issuer:           opt("JWT_ISSUER"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		DB:       num("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  strings.ToLower(opt("LOG_LEVEL")),
		Format: strings.ToLower(opt("LOG_FORMAT")),
	}

	cfg.Scraper = ScraperConfig{
		UserAgent:       opt("SCRAPER_USER_AGENT"),
		Timeout:         dur("SCRAPER_TIMEOUT"),
		HeadlessEnabled: flag("SCRAPER_HEADLESS_ENABLED"),
		MinTextLength:   num("SCRAPER_MIN_TEXT_LENGTH"),
	}

	cfg.Migrations = MigrationsConfig{
		Dir:  opt("MIGRATIONS_DIR"),
		Auto: flag("MIGRATIONS_AUTO"),
	}

	cfg.Admin = AdminConfig{
		Username: opt("ADMIN_USERNAME"),
		Email:    opt("ADMIN_EMAIL"),
		Password: opt("ADMIN_PASSWORD"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidValue, strings.Join(invalid, ", "))
	}

	switch cfg.Log.Format {
	case "text", "json", "logfmt":
	default:
		return Config{}, fmt.Errorf("%w: LOG_FORMAT %q", errInvalidValue, cfg.Log.Format)
	}

	return cfg, nil
}
