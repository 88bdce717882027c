package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

type AppConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type JWTConfig struct {
	JWTSecret   string
	AccessTTL   time.Duration
	JWTIssuer   string
	JWTAudience string
	JWTKID      string
}

type CookieConfig struct {
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

type RateLimitConfig struct {
	LoginRequests int
	LoginWindow   time.Duration
}

type Config struct {
	AppConfig       *AppConfig
	DbConfig        *DbConfig
	JWTConfig       *JWTConfig
	CookieConfig    *CookieConfig
	RateLimitConfig *RateLimitConfig
}

// LoadConfig reads the process environment, after merging an optional .env file.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	/** db config */
	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	dbConfig := &DbConfig{
		DSN:             os.Getenv("POSTGRES_DSN"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** app config */
	readTimeout, err := durationEnv("APP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("APP_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationEnv("APP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationEnv("APP_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Port:            stringEnv("APP_PORT", "8080"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
		AllowedOrigins:  listEnv("APP_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	/** jwt config */
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}
	accessTTL, err := durationEnv("ACCESS_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	jwtConfig := &JWTConfig{
		JWTSecret:   secret,
		AccessTTL:   accessTTL,
		JWTIssuer:   stringEnv("JWT_ISSUER", "mbg-portal"),
		JWTAudience: stringEnv("JWT_AUDIENCE", "mbg-portal"),
		JWTKID:      os.Getenv("JWT_KID"),
	}

	/** cookie config */
	secure, err := boolEnv("COOKIE_SECURE", true)
	if err != nil {
		return nil, err
	}
	sameSite, err := parseSameSite(stringEnv("COOKIE_SAMESITE", "lax"))
	if err != nil {
		return nil, err
	}
	cookieConfig := &CookieConfig{
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:   secure,
		CookieSameSite: sameSite,
	}

	/** rate limit config */
	loginRequests, err := intEnv("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	loginWindow, err := durationEnv("LOGIN_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		AppConfig:    appConfig,
		DbConfig:     dbConfig,
		JWTConfig:    jwtConfig,
		CookieConfig: cookieConfig,
		RateLimitConfig: &RateLimitConfig{
			LoginRequests: loginRequests,
			LoginWindow:   loginWindow,
		},
	}, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func listEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("COOKIE_SAMESITE: unknown mode %q", s)
	}
}
