package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Addr             string `mapstructure:"addr" validate:"required"`
	LogLevel         string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	CORSAllowOrigins string `mapstructure:"cors_allow_origins"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret" validate:"required"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in" validate:"gt=0"`
}

// StorageConfig describes the S3-compatible bucket that backs image uploads.
// Uploads are disabled when Bucket is empty.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url" validate:"required_with=Bucket,omitempty,url"`
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes" validate:"gt=0"`
	MaxDimension    int    `mapstructure:"max_dimension" validate:"gt=0"`
}

// env maps config keys to the environment variables that override them.
var env = map[string]string{
	"server.addr":               "APP_ADDR",
	"server.log_level":          "LOG_LEVEL",
	"server.cors_allow_origins": "CORS_ALLOW_ORIGINS",
	"database.url":              "DATABASE_URL",
	"database.auto_migrate":     "DB_AUTO_MIGRATE",
	"database.max_open_conns":   "DB_MAX_OPEN_CONNS",
	"auth.jwt_secret":           "JWT_SECRET",
	"auth.jwt_expires_in":       "JWT_EXPIRES_IN",
	"storage.endpoint":          "S3_ENDPOINT",
	"storage.region":            "S3_REGION",
	"storage.bucket":            "S3_BUCKET",
	"storage.access_key_id":     "S3_ACCESS_KEY_ID",
	"storage.secret_access_key": "S3_SECRET_ACCESS_KEY",
	"storage.public_base_url":   "S3_PUBLIC_BASE_URL",
	"storage.max_upload_bytes":  "UPLOAD_MAX_BYTES",
	"storage.max_dimension":     "UPLOAD_MAX_DIMENSION",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3090")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_allow_origins", "http://localhost:3001")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("auth.jwt_expires_in", "24h")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.max_upload_bytes", 5<<20)
	v.SetDefault("storage.max_dimension", 1600)
}

// Load builds the configuration from defaults, an optional config file and
// the environment, in increasing order of precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("invalid config: %s fails %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
