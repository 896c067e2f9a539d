package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Timezone string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Gateway  GatewayConfig
	WhatsApp WhatsAppConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Cron     CronConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// GatewayConfig holds the hosted-invoice payment gateway settings
type GatewayConfig struct {
	BaseURL         string
	APIKey          string
	WebhookToken    string
	InvoiceDuration time.Duration
	SuccessRedirect string
	FailureRedirect string
	RequestTimeout  time.Duration
}

// Enabled reports whether outbound gateway calls can be made
func (g GatewayConfig) Enabled() bool {
	return g.APIKey != ""
}

// WhatsAppConfig holds the WhatsApp bridge settings
type WhatsAppConfig struct {
	Enabled        bool
	APIURL         string
	Token          string
	RatePerMinute  int
	RequestTimeout time.Duration
}

// StorageConfig holds S3 settings for payment proof uploads
type StorageConfig struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether uploads go to S3
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.Region != ""
}

// RedisConfig holds the reminder queue settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// Enabled reports whether reminders are queued instead of sent inline
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// CronConfig holds scheduled job settings
type CronConfig struct {
	Enabled            bool
	InvoiceSpec        string
	ReminderSpec       string
	InvoiceDueDay      int
	ReminderDaysBefore int
}

// AdminConfig holds the bootstrap admin account
type AdminConfig struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	cfg := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Gateway:  loadGatewayConfig(),
		WhatsApp: loadWhatsAppConfig(),
		Storage:  loadStorageConfig(),
		Redis:    loadRedisConfig(),
		Cron:     loadCronConfig(),
		Admin:    loadAdminConfig(),
	}

	if cfg.IsProd() && cfg.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}
	if cfg.Cron.InvoiceDueDay < 1 || cfg.Cron.InvoiceDueDay > 31 {
		return nil, fmt.Errorf("invalid INVOICE_DUE_DAY: %d (must be 1-31)", cfg.Cron.InvoiceDueDay)
	}

	return cfg, nil
}

const defaultJWTSecret = "default_secret"

// modePrefix returns the env prefix for mode-specific settings
func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "kost_management"),
	}
}

func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)
	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		AccessTokenMins: getEnvInt("ACCESS_TOKEN_MINUTES", 60*24),
	}
}

func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)
	return CookieConfig{
		Secure:   getEnvBool(prefix+"COOKIE_SECURE", false),
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadGatewayConfig() GatewayConfig {
	return GatewayConfig{
		BaseURL:         strings.TrimRight(getEnv("XENDIT_BASE_URL", "https://api.xendit.co"), "/"),
		APIKey:          getEnv("XENDIT_API_KEY", ""),
		WebhookToken:    getEnv("XENDIT_WEBHOOK_TOKEN", ""),
		InvoiceDuration: time.Duration(getEnvInt("XENDIT_INVOICE_DURATION_HOURS", 24)) * time.Hour,
		SuccessRedirect: getEnv("XENDIT_SUCCESS_URL", ""),
		FailureRedirect: getEnv("XENDIT_FAILURE_URL", ""),
		RequestTimeout:  time.Duration(getEnvInt("XENDIT_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

func loadWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{
		Enabled:        getEnvBool("WHATSAPP_ENABLED", false),
		APIURL:         strings.TrimRight(getEnv("WHATSAPP_API_URL", "http://localhost:3001"), "/"),
		Token:          getEnv("WHATSAPP_TOKEN", ""),
		RatePerMinute:  getEnvInt("WHATSAPP_RATE_PER_MIN", 20),
		RequestTimeout: time.Duration(getEnvInt("WHATSAPP_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Region:          getEnv("S3_REGION", ""),
		Bucket:          getEnv("S3_BUCKET", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Queue:    getEnv("REDIS_REMINDER_QUEUE", "kost:reminders"),
	}
}

func loadCronConfig() CronConfig {
	return CronConfig{
		Enabled: getEnvBool("CRON_ENABLED", false),
		// 00:05 on the 1st of each month
		InvoiceSpec: getEnv("CRON_INVOICE_SPEC", "5 0 1 * *"),
		// every day at 09:00
		ReminderSpec:       getEnv("CRON_REMINDER_SPEC", "0 9 * * *"),
		InvoiceDueDay:      getEnvInt("INVOICE_DUE_DAY", 10),
		ReminderDaysBefore: getEnvInt("REMINDER_DAYS_BEFORE", 3),
	}
}

func loadAdminConfig() AdminConfig {
	return AdminConfig{
		Name:     getEnv("ADMIN_NAME", "Administrator"),
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Phone:    getEnv("ADMIN_PHONE", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// Location returns the business timezone used for billing months
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Now returns the current time in the business timezone
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location())
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://kost.example.com"
	}
	return origins
}
