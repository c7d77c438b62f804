package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	DocStore DocStoreConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Media    MediaConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	AutoMigrate bool
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// DocStoreConfig selects the document store driver: postgres, firestore or memory.
type DocStoreConfig struct {
	Driver              string
	FirestoreProject    string
	FirestoreCredential string
}

type StorageConfig struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
}

type AuthConfig struct {
	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration
	LinkBaseURL    string
}

type MediaConfig struct {
	DefaultAvatarURL string
	MaxUploadBytes   int64
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// the .env file is optional, the environment alone is enough
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			AutoMigrate: viper.GetBool("APP_AUTO_MIGRATE"),
			CORSOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		DocStore: DocStoreConfig{
			Driver:              viper.GetString("DOCSTORE_DRIVER"),
			FirestoreProject:    viper.GetString("FIRESTORE_PROJECT_ID"),
			FirestoreCredential: viper.GetString("FIRESTORE_CREDENTIALS_FILE"),
		},
		Storage: StorageConfig{
			Region:        viper.GetString("S3_REGION"),
			Bucket:        viper.GetString("S3_BUCKET"),
			AccessKey:     viper.GetString("S3_ACCESS_KEY"),
			SecretKey:     viper.GetString("S3_SECRET_KEY"),
			Endpoint:      viper.GetString("S3_ENDPOINT"),
			PublicBaseURL: viper.GetString("S3_PUBLIC_BASE_URL"),
		},
		Auth: AuthConfig{
			ResetTokenTTL:  durationOr("AUTH_RESET_TOKEN_TTL", time.Hour),
			VerifyTokenTTL: durationOr("AUTH_VERIFY_TOKEN_TTL", 48*time.Hour),
			LinkBaseURL:    viper.GetString("AUTH_LINK_BASE_URL"),
		},
		Media: MediaConfig{
			DefaultAvatarURL: viper.GetString("MEDIA_DEFAULT_AVATAR_URL"),
			MaxUploadBytes:   viper.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_AUTO_MIGRATE", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("DOCSTORE_DRIVER", "postgres")
	viper.SetDefault("AUTH_LINK_BASE_URL", "http://localhost:8080/api/v1/auth")
	viper.SetDefault("MEDIA_DEFAULT_AVATAR_URL", "https://static.insurance-marketplace.app/avatar-default.png")
	viper.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 5<<20)
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

// splitList turns a comma separated value into its trimmed, non-empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
