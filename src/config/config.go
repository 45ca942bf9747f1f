package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort         string `mapstructure:"APP_PORT"`
	AppHost         string `mapstructure:"APP_HOST"`
	Env             string `mapstructure:"API_ENV"`
	MaintenanceMode bool   `mapstructure:"MAINTENANCE_MODE"`
	LogDir          string `mapstructure:"LOG_DIR"`
	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`

	DatabaseHost     string `mapstructure:"DATABASE_HOST"`
	DatabasePort     string `mapstructure:"DATABASE_PORT"`
	DatabaseUser     string `mapstructure:"DATABASE_USER"`
	DatabasePassword string `mapstructure:"DATABASE_PASSWORD"`
	DatabaseName     string `mapstructure:"DATABASE_NAME"`
	DatabaseSSLMode  string `mapstructure:"DATABASE_SSLMODE"`
	DatabaseTimezone string `mapstructure:"DATABASE_TIMEZONE"`

	RedisHost string `mapstructure:"REDIS_HOST"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// FinalizeMode is "remote" (edge function at FinalizeURL) or "local".
	FinalizeMode     string        `mapstructure:"FINALIZE_MODE"`
	FinalizeURL      string        `mapstructure:"FINALIZE_URL"`
	FinalizeAPIKey   string        `mapstructure:"FINALIZE_API_KEY"`
	FinalizeTimeout  time.Duration `mapstructure:"FINALIZE_TIMEOUT"`
	ServiceJWTSecret string        `mapstructure:"SERVICE_JWT_SECRET"`
	AnonReadWindow   time.Duration `mapstructure:"ANON_READ_WINDOW"`

	PixelID         string        `mapstructure:"PIXEL_ID"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	KafkaBroker     string        `mapstructure:"KAFKA_BROKER"`
	ConversionTopic string        `mapstructure:"CONVERSION_TOPIC"`
	ConversionQueue string        `mapstructure:"CONVERSION_QUEUE"`
	SNSTopicArn     string        `mapstructure:"SNS_TOPIC_ARN"`
	AWSIAMRoleArn   string        `mapstructure:"AWS_IAM_ROLE_ARN"`

	MailDriver   string `mapstructure:"MAIL_DRIVER"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	MailFromName string `mapstructure:"MAIL_FROM_NAME"`
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	CalendarID            string        `mapstructure:"CALENDAR_ID"`
	GoogleCredentialsFile string        `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	ClinicTimezone        string        `mapstructure:"CLINIC_TIMEZONE"`
	AppointmentDuration   time.Duration `mapstructure:"APPOINTMENT_DURATION"`

	SitePasswordHash string        `mapstructure:"SITE_PASSWORD_HASH"`
	PendingTTL       time.Duration `mapstructure:"PENDING_TTL"`
	SweepInterval    time.Duration `mapstructure:"SWEEP_INTERVAL"`
}

var defaults = map[string]any{
	"APP_PORT":                "9090",
	"APP_HOST":                "",
	"API_ENV":                 "development",
	"MAINTENANCE_MODE":        false,
	"LOG_DIR":                 "logs",
	"RATE_LIMIT_PER_MIN":      120,
	"DATABASE_HOST":           "localhost",
	"DATABASE_PORT":           "5432",
	"DATABASE_USER":           "postgres",
	"DATABASE_PASSWORD":       "",
	"DATABASE_NAME":           "clinic",
	"DATABASE_SSLMODE":        "disable",
	"DATABASE_TIMEZONE":       "Europe/Amsterdam",
	"REDIS_HOST":              "redis://localhost:6379/0",
	"STRIPE_SECRET_KEY":       "",
	"STRIPE_WEBHOOK_SECRET":   "",
	"FINALIZE_MODE":           "local",
	"FINALIZE_URL":            "",
	"FINALIZE_API_KEY":        "",
	"FINALIZE_TIMEOUT":        "20s",
	"SERVICE_JWT_SECRET":      "",
	"ANON_READ_WINDOW":        "1h",
	"PIXEL_ID":                "",
	"SESSION_TTL":             "24h",
	"KAFKA_BROKER":            "localhost:9092",
	"CONVERSION_TOPIC":        "conversion-events",
	"CONVERSION_QUEUE":        "ConversionEvents",
	"SNS_TOPIC_ARN":           "",
	"AWS_IAM_ROLE_ARN":        "",
	"MAIL_DRIVER":             "smtp",
	"MAIL_FROM":               "",
	"MAIL_FROM_NAME":          "Clinic",
	"SMTP_HOST":               "",
	"SMTP_PORT":               587,
	"SMTP_USERNAME":           "",
	"SMTP_PASSWORD":           "",
	"CALENDAR_ID":             "primary",
	"GOOGLE_CREDENTIALS_FILE": "",
	"CLINIC_TIMEZONE":         "Europe/Amsterdam",
	"APPOINTMENT_DURATION":    "1h",
	"SITE_PASSWORD_HASH":      "",
	"PENDING_TTL":             "24h",
	"SWEEP_INTERVAL":          "15m",
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads config.yaml (optional) and the environment. With API_ENV=local
// the .env file in the working directory is loaded first.
func Load() (*Config, error) {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	once.Do(func() {
		c, err := Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = c
	})
	return cfg
}

// Set replaces the process-wide configuration. Used by tests.
func Set(c *Config) {
	once.Do(func() {})
	cfg = c
}

func (c *Config) IsProd() bool {
	return c.Env == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DatabaseHost, c.DatabaseUser, c.DatabasePassword, c.DatabaseName, c.DatabasePort, c.DatabaseSSLMode, c.DatabaseTimezone)
}

func GetDSN() string {
	return Get().DSN()
}
