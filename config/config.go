package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         int      `env:"SERVER_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Auth     AuthConfig
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Notify   NotifyConfig
	SMTP     SMTPConfig     `envPrefix:"SMTP_"`
	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	PubSub   PubSubConfig   `envPrefix:"PUBSUB_"`

	// ExportStorage selects where spreadsheet exports are archived: "minio",
	// "gcs", or empty to skip archiving.
	ExportStorage string      `env:"EXPORT_STORAGE"`
	Minio         MinioConfig `envPrefix:"MINIO_"`
	GCS           GCSConfig   `envPrefix:"GCS_"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"portal"`
	Password string `env:"PASSWORD" envDefault:"password"`
	DBName   string `env:"NAME" envDefault:"portal_db"`
	UseSSL   bool   `env:"USE_SSL" envDefault:"false"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTExpirationMs int64         `env:"JWT_EXPIRATION_MS" envDefault:"86400000"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
	OTPTTL          time.Duration `env:"OTP_TTL" envDefault:"5m"`
}

// TokenTTL is the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.JWTExpirationMs) * time.Millisecond
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type NotifyConfig struct {
	// Backend is one of "log", "smtp", "rabbitmq" or "pubsub".
	Backend string `env:"NOTIFY_BACKEND" envDefault:"log"`
	Channel string `env:"NOTIFY_CHANNEL" envDefault:"portal-notifications"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@techmaa.local"`
}

type RabbitMQConfig struct {
	URL             string `env:"URL"`
	QueueDurable    bool   `env:"QUEUE_DURABLE" envDefault:"true"`
	QueueAutoDelete bool   `env:"QUEUE_AUTO_DELETE" envDefault:"false"`
	PrefetchCount   int    `env:"PREFETCH_COUNT" envDefault:"10"`
}

type PubSubConfig struct {
	ProjectID          string `env:"PROJECT_ID"`
	CredentialsFile    string `env:"CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"SUBSCRIPTION_SUFFIX" envDefault:"-sub"`
}

type MinioConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"portal-exports"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

type GCSConfig struct {
	Bucket          string `env:"BUCKET"`
	ProjectID       string `env:"PROJECT_ID"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Auth.JWTSecret = strings.TrimSpace(cfg.Auth.JWTSecret)
	if cfg.Auth.JWTExpirationMs <= 0 {
		return Config{}, errors.New("JWT_EXPIRATION_MS must be positive")
	}
	return cfg, nil
}
