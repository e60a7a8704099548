package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// AppConfig holds the runtime configuration, grouped the same way as config/config.json.
// Secrets never get defaults in code and must come from the environment or the JSON file.
type AppConfig struct {
	Server   ServerConfig    `json:"server"`
	Database DatabaseConfig  `json:"database"`
	Redis    RedisConfig     `json:"redis"`
	Log      LogConfig       `json:"log"`
	SMTP     SMTPConfig      `json:"smtp"`
	Limits   RateLimitConfig `json:"rateLimit"`
	Storage  StorageConfig   `json:"storage"`
}

type ServerConfig struct {
	Port           string   `json:"Port" env:"PORT"`
	Environment    string   `json:"Environment" env:"APP_ENV"`
	GinMode        string   `json:"GinMode" env:"GIN_MODE"`
	GinPath        string   `json:"GinPath" env:"GIN_PATH"`
	AllowedOrigins []string `json:"AllowedOrigins" env:"CORS_ORIGINS" envSeparator:","`
	// TrustedProxies are the reverse proxies whose X-Forwarded-* headers are believed.
	TrustedProxies []string `json:"TrustedProxies" env:"TRUSTED_PROXIES" envSeparator:","`
	JWTSecret      string   `json:"JWTSecret" env:"JWT_SECRET"`
	JWTTTLHours    int      `json:"JWTTTLHours" env:"JWT_TTL_HOURS"`
}

type DatabaseConfig struct {
	URI      string `json:"URI" env:"DATABASE_URI"`
	Host     string `json:"Host" env:"DB_HOST"`
	Port     string `json:"Port" env:"DB_PORT"`
	User     string `json:"User" env:"DB_USER"`
	Password string `json:"Password" env:"DB_PASSWORD"`
	Name     string `json:"Name" env:"DB_NAME"`
}

// RedisConfig is optional; an empty Host keeps caches and token revocation in memory.
type RedisConfig struct {
	Host     string `json:"Host" env:"REDIS_HOST"`
	Port     int    `json:"Port" env:"REDIS_PORT"`
	DB       int    `json:"DB" env:"REDIS_DB"`
	Password string `json:"Password" env:"REDIS_PASSWORD"`
}

type LogConfig struct {
	Level      string `json:"Level" env:"LOG_LEVEL"`
	Path       string `json:"Path" env:"LOG_PATH"`
	MaxSizeMB  int    `json:"MaxSizeMB" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `json:"MaxBackups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `json:"MaxAgeDays" env:"LOG_MAX_AGE_DAYS"`
	Compress   bool   `json:"Compress" env:"LOG_COMPRESS"`
}

// SMTPConfig drives the new-contact-message notification. Host or NotifyTo empty disables it.
type SMTPConfig struct {
	Host     string `json:"Host" env:"SMTP_HOST"`
	Port     int    `json:"Port" env:"SMTP_PORT"`
	Username string `json:"Username" env:"SMTP_USERNAME"`
	Password string `json:"Password" env:"SMTP_PASSWORD"`
	From     string `json:"From" env:"SMTP_FROM"`
	FromName string `json:"FromName" env:"SMTP_FROM_NAME"`
	TLS      bool   `json:"TLS" env:"SMTP_TLS"`
	NotifyTo string `json:"NotifyTo" env:"CONTACT_NOTIFY_EMAIL"`
}

// RateLimitConfig counts requests per client IP.
type RateLimitConfig struct {
	APIPer15Min   int `json:"APIPer15Min" env:"RATE_LIMIT_API"`
	LoginPer15Min int `json:"LoginPer15Min" env:"RATE_LIMIT_LOGIN"`
	FormsPerHour  int `json:"FormsPerHour" env:"RATE_LIMIT_FORMS"`
}

// StorageConfig is everything the media storage layer reads. It is built once here and
// handed to the storage constructors; nothing below this point looks at the environment.
type StorageConfig struct {
	Driver          string `json:"Driver" env:"STORAGE_DRIVER"`
	Bucket          string `json:"Bucket" env:"S3_BUCKET_NAME"`
	Region          string `json:"Region" env:"AWS_REGION"`
	AccessKeyID     string `json:"AccessKeyID" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"SecretAccessKey" env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `json:"SessionToken" env:"AWS_SESSION_TOKEN"`
	Prefix          string `json:"Prefix" env:"S3_PREFIX"`
	PublicBaseURL   string `json:"PublicBaseURL" env:"S3_PUBLIC_BASE_URL"`
	ObjectACL       string `json:"ObjectACL" env:"S3_OBJECT_ACL"`
	// Endpoint points the client at an S3-compatible service instead of AWS.
	Endpoint  string `json:"Endpoint" env:"S3_ENDPOINT"`
	UploadDir string `json:"UploadDir" env:"UPLOAD_DIR"`
}

// IsDevelopment reports whether the server runs with development conveniences.
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

var cfg AppConfig
var loaded bool

// Load reads .env (when present), config/config.json and the environment. Call it once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring unreadable .env file: %v", err)
	}

	c, err := Parse(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Validate checks what the API server needs beyond Load. The one-shot tools skip it.
func (c AppConfig) Validate() error {
	if c.Server.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in environment variables")
	}
	return nil
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Parse builds a configuration with precedence JSON file -> defaults -> environment.
// A missing file is not an error; malformed JSON is.
func Parse(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		return c, fmt.Errorf("read %s: %w", path, err)
	}

	applyDefaults(&c)

	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("read environment: %w", err)
	}

	c.Server.AllowedOrigins = cleanOrigins(c.Server.AllowedOrigins)
	if len(c.Server.AllowedOrigins) == 0 && c.IsDevelopment() {
		c.Server.AllowedOrigins = []string{"http://localhost:8080", "http://localhost:5173"}
	}
	return c, nil
}

func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(out)
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if c.Server.GinPath == "" {
		c.Server.GinPath = "logs/gin.log"
	}
	if c.Server.JWTTTLHours == 0 {
		c.Server.JWTTTLHours = 24
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "3306"
	}
	if c.Database.User == "" {
		c.Database.User = "app_user"
	}
	if c.Database.Name == "" {
		c.Database.Name = "restaurant_db"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 7
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Limits.APIPer15Min == 0 {
		c.Limits.APIPer15Min = 300
	}
	if c.Limits.LoginPer15Min == 0 {
		c.Limits.LoginPer15Min = 20
	}
	if c.Limits.FormsPerHour == 0 {
		c.Limits.FormsPerHour = 60
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
}

func cleanOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
