package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"

	defaultJWTSecret = "defaultsecret"
)

type Config struct {
	APIPort    string
	AppEnv     string
	AppVersion string

	JWTKey       []byte
	JWTAlgorithm string
	JWTExp       time.Duration

	SessionSecret []byte
	SessionMaxAge time.Duration

	// SessionSweepInterval is how often expired login sessions are
	// deactivated. Zero disables the sweeper.
	SessionSweepInterval time.Duration

	PasswordMinLength int
	BcryptCost        int

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBPath     string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WidgetColors []string
	WidgetColor  string
}

var AppConfig *Config

// Load reads .env (when present) and the process environment, validates the
// result and stores it in AppConfig.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	env := &envParser{}
	cfg := &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		AppEnv:     strings.ToLower(getEnv("APP_ENV", getEnv("NODE_ENV", EnvDevelopment))),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		JWTKey:       []byte(getEnv("JWT_SECRET", defaultJWTSecret)),
		JWTAlgorithm: strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		JWTExp:       env.asDuration("JWT_EXPIRE_IN", time.Hour),

		SessionSecret: []byte(getEnv("SESSION_SECRET", "")),
		SessionMaxAge: time.Duration(env.asInt("SESSION_MAX_AGE", 3600000)) * time.Millisecond,

		SessionSweepInterval: env.asDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),

		PasswordMinLength: env.asInt("PASSWORD_MIN_LENGTH", 8),
		BcryptCost:        env.asInt("SALT_ITERATIONS", bcrypt.DefaultCost),

		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "blog_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "data/blog.db"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       env.asInt("REDIS_DB", 0),

		WidgetColors: splitColors(getEnv("TW_WIDGET_COLORS", "slate|red|orange|amber|green|teal|blue|indigo|violet|pink")),
		WidgetColor:  strings.ToLower(getEnv("TW_WIDGET_COLOR", "slate")),
	}

	if err := env.err(); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		cfg.DBConnStr = "file:" + cfg.DBPath + "?_foreign_keys=on&_busy_timeout=5000"
	default:
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.JWTExp <= 0 {
		return fmt.Errorf("config: JWT_EXPIRE_IN must be positive")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("config: SESSION_MAX_AGE must be positive")
	}
	if c.SessionSweepInterval < 0 {
		return fmt.Errorf("config: SESSION_SWEEP_INTERVAL must not be negative")
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("config: PASSWORD_MIN_LENGTH must be at least 1")
	}

	// bcrypt refuses costs outside its range.
	if c.BcryptCost < bcrypt.MinCost {
		c.BcryptCost = bcrypt.MinCost
	}
	if c.BcryptCost > bcrypt.MaxCost {
		c.BcryptCost = bcrypt.MaxCost
	}

	if c.IsProduction() {
		if string(c.JWTKey) == defaultJWTSecret || len(c.JWTKey) == 0 {
			return fmt.Errorf("config: JWT_SECRET must be set in production")
		}
		if len(c.SessionSecret) == 0 {
			return fmt.Errorf("config: SESSION_SECRET must be set in production")
		}
	}
	if len(c.SessionSecret) == 0 {
		c.SessionSecret = c.JWTKey
	}

	known := false
	for _, color := range c.WidgetColors {
		if color == c.WidgetColor {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config: unknown TW_WIDGET_COLOR %q", c.WidgetColor)
	}
	return nil
}

func splitColors(raw string) []string {
	var colors []string
	for _, color := range strings.Split(raw, "|") {
		color = strings.ToLower(strings.TrimSpace(color))
		if color != "" {
			colors = append(colors, color)
		}
	}
	return colors
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// envParser reads typed settings. A set but malformed value is recorded as
// an error instead of falling back to the default.
type envParser struct {
	errs []error
}

func (p *envParser) asInt(key string, fallback int) int {
	valueStr, ok := os.LookupEnv(key)
	if !ok || valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s must be an integer, got %q", key, valueStr))
		return fallback
	}
	return value
}

func (p *envParser) asDuration(key string, fallback time.Duration) time.Duration {
	valueStr, ok := os.LookupEnv(key)
	if !ok || valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s must be a duration such as 30m or 1h, got %q", key, valueStr))
		return fallback
	}
	return value
}

func (p *envParser) err() error {
	return errors.Join(p.errs...)
}
