package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

type Config struct {
	Port    string
	AppName string

	StoreDriver string
	MongoURI    string
	DBName      string
	DatabaseURL string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	TokenRatePerMin   int

	StripeSecretKey string
	CloudinaryURL   string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	CORSOrigins string
	LogLevel    string
	LogFormat   string

	JobsEnabled        bool
	StorePingSchedule  string
	AdminCheckSchedule string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg(".env file not found, reading from system environment variables")
	}

	env := &envReader{}
	cfg := &Config{
		Port:    getenv("PORT", "5000"),
		AppName: getenv("APP_NAME", "EduConnect"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "mongo")),
		MongoURI:    os.Getenv("MONGODB_URI"),
		DBName:      getenv("DB_NAME", "eduConnectDB"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getenv("ADMIN_NAME", "Administrator"),

		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:    env.duration("ACCESS_TOKEN_TTL", time.Hour),
		TokenRatePerMin:   env.integer("TOKEN_RATE_PER_MINUTE", 30),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),

		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		EmailSender:     os.Getenv("EMAIL_SENDER"),
		EmailSenderName: os.Getenv("EMAIL_SENDER_NAME"),

		CORSOrigins: getenv("CORS_ORIGINS", "*"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "console"),

		JobsEnabled:        env.boolean("JOBS_ENABLED", true),
		StorePingSchedule:  getenv("STORE_PING_SCHEDULE", "@every 1m"),
		AdminCheckSchedule: getenv("ADMIN_CHECK_SCHEDULE", "@every 1h"),
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = mongoURIFromParts(os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_HOST"))
	}

	if err := multierr.Append(env.err, cfg.validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.TokenRatePerMin <= 0 {
		return errors.New("TOKEN_RATE_PER_MINUTE must be positive")
	}
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI or DB_USER/DB_PASS/DB_HOST is required for the mongo store")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// AdminConfigured reports whether the admin bootstrap has credentials.
func (c *Config) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

func mongoURIFromParts(user, pass, host string) string {
	if user == "" || pass == "" || host == "" {
		return ""
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(user), url.QueryEscape(pass), host)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// envReader parses typed variables. A value that is set but malformed is
// collected as an error instead of being replaced by the default.
type envReader struct {
	err error
}

func (r *envReader) integer(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %q is not an integer", key, val))
		return fallback
	}
	return n
}

func (r *envReader) boolean(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %q is not a boolean", key, val))
		return fallback
	}
	return b
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		r.err = multierr.Append(r.err, fmt.Errorf("%s: %q is not a duration such as 30m or 1h", key, val))
		return fallback
	}
	return d
}
