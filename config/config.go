// Package config loads runtime settings from .env, an optional YAML file
// and the process environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tourdesk/logger"
	"tourdesk/utils"
)

type Config struct {
	Port string `yaml:"port"`

	StoreDriver   string `yaml:"store_driver"` // mongo, redis or memory
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	BlobDriver  string `yaml:"blob_driver"` // fs or s3
	BlobDir     string `yaml:"blob_dir"`
	BlobBaseURL string `yaml:"blob_base_url"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`

	AdminUser         string `yaml:"admin_user"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt
	JWTSecret         string `yaml:"jwt_secret"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustedProxies lists CIDRs or IPs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies"`
	PublicBaseURL  string   `yaml:"public_base_url"`

	Logger      logger.Config     `yaml:"logger"`
	Collections map[string]string `yaml:"collections"`
}

// Defaults returns the settings used when nothing else is provided.
func Defaults() Config {
	return Config{
		Port:           ":8080",
		StoreDriver:    "mongo",
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "tourdesk",
		RedisAddr:      "localhost:6379",
		BlobDriver:     "fs",
		BlobDir:        "static/uploads",
		BlobBaseURL:    "/static/uploads",
		S3Region:       "us-east-1",
		AdminUser:      "admin",
		AllowedOrigins: []string{"*"},
		PublicBaseURL:  "http://localhost:8080",
		Logger:         logger.Config{Level: "info", Format: "json"},
	}
}

// Load reads .env if present, then the YAML file named by TOURDESK_CONFIG,
// then individual environment variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("TOURDESK_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)

	if cfg.Port != "" && cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDatabase, "MONGO_DATABASE")
	setString(&cfg.RedisAddr, "REDIS_URL")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	setString(&cfg.BlobDriver, "BLOB_DRIVER")
	setString(&cfg.BlobDir, "BLOB_DIR")
	setString(&cfg.BlobBaseURL, "BLOB_BASE_URL")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Region, "S3_REGION")
	setString(&cfg.S3Endpoint, "S3_ENDPOINT")
	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		cfg.S3PathStyle = strings.EqualFold(v, "true")
	}
	setString(&cfg.AdminUser, "ADMIN_USER")
	setString(&cfg.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = strings.Split(v, ",")
	}
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.Logger.Format, "LOG_FORMAT")
	setString(&cfg.Logger.File, "LOG_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case "mongo", "redis", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.BlobDriver {
	case "fs":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET required for s3 blob driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if _, err := utils.ParseProxies(c.TrustedProxies); err != nil {
		return err
	}
	return nil
}
