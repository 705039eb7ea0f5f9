// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL payment ledger; empty disables it
	PostgresURI string

	// Redis one-time code store; empty selects the in-memory store
	RedisURL      string
	RedisPassword string

	// Auth
	JWTSecret     string
	JWTExpires    time.Duration
	CookieExpires time.Duration
	OTPTTL        time.Duration
	OTPSweep      time.Duration
	SecureCookies bool
	BcryptCost    int

	// Object storage
	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string

	// Payments
	StripeSecretKey string
	PaymentCurrency string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	MailFrom          string

	// Links used in emails
	FrontendURL  string
	DashboardURL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:         getEnv("PORT", "4000"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		CORSOrigins:  getEnv("CORS_ORIGINS", ""),

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "safarsathi"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:     getEnv("JWT_SECRET_KEY", ""),
		JWTExpires:    time.Duration(getEnvAsInt("JWT_EXPIRES", 24*7)) * time.Hour,
		CookieExpires: time.Duration(getEnvAsInt("COOKIE_EXPIRES", 7)) * 24 * time.Hour,
		OTPTTL:        time.Duration(getEnvAsInt("OTP_TTL", 15)) * time.Minute,
		OTPSweep:      time.Duration(getEnvAsInt("OTP_SWEEP", 60)) * time.Second,
		SecureCookies: getEnvAsBool("SECURE_COOKIES", true),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", 10),

		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "ap-south-1"),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency: strings.ToUpper(getEnv("PAYMENT_CURRENCY", "INR")),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		MailFrom:          getEnv("MAIL_FROM", "SafarSathi <no-reply@safarsathi.in>"),

		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:5174"),
	}

	return config, nil
}

// Validate checks settings the service cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_DSN is required"))
	}
	return errors.Join(errs...)
}

// AllowedOrigins returns the CORS origins, defaulting to the two web clients
func (c *Config) AllowedOrigins() string {
	if c.CORSOrigins != "" {
		return c.CORSOrigins
	}
	return c.FrontendURL + "," + c.DashboardURL
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
