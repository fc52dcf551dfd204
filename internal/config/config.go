package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServerPort      string        `mapstructure:"SERVER_PORT"      yaml:"SERVER_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" yaml:"SHUTDOWN_TIMEOUT"`

	DBDriver   string        `mapstructure:"DB_DRIVER"   yaml:"DB_DRIVER"`
	DSN        string        `mapstructure:"DB_DSN"      yaml:"DB_DSN"`
	DBHost     string        `mapstructure:"DB_HOST"     yaml:"DB_HOST"`
	DBPort     string        `mapstructure:"DB_PORT"     yaml:"DB_PORT"`
	DBUser     string        `mapstructure:"DB_USER"     yaml:"DB_USER"`
	DBPassword string        `mapstructure:"DB_PASSWORD" yaml:"DB_PASSWORD"`
	DBName     string        `mapstructure:"DB_NAME"     yaml:"DB_NAME"`
	DBSSLMode  string        `mapstructure:"DB_SSLMODE"  yaml:"DB_SSLMODE"`
	DBTimeout  time.Duration `mapstructure:"DB_TIMEOUT"  yaml:"DB_TIMEOUT"`

	S3BucketName      string        `mapstructure:"S3_BUCKET_NAME"       yaml:"S3_BUCKET_NAME"`
	S3Region          string        `mapstructure:"S3_REGION"            yaml:"S3_REGION"`
	S3Endpoint        string        `mapstructure:"S3_ENDPOINT"          yaml:"S3_ENDPOINT"`
	S3AccessKeyID     string        `mapstructure:"S3_ACCESS_KEY_ID"     yaml:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string        `mapstructure:"S3_SECRET_ACCESS_KEY" yaml:"S3_SECRET_ACCESS_KEY"`
	S3Timeout         time.Duration `mapstructure:"S3_TIMEOUT"           yaml:"S3_TIMEOUT"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"     yaml:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD" yaml:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"       yaml:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"      yaml:"CACHE_TTL"`

	// MaxFileSize is inclusive: a payload of exactly this many bytes is accepted.
	MaxFileSize        int64 `mapstructure:"MAX_FILE_SIZE"        yaml:"MAX_FILE_SIZE"`
	LocatorRawFallback bool  `mapstructure:"LOCATOR_RAW_FALLBACK" yaml:"LOCATOR_RAW_FALLBACK"`

	// WSAllowedOrigins restricts which browser origins may open the event
	// stream; empty allows all. Comma separated in the environment.
	WSAllowedOrigins []string `mapstructure:"WS_ALLOWED_ORIGINS" yaml:"WS_ALLOWED_ORIGINS"`

	Log LogConfig `mapstructure:",squash" yaml:",inline"`
}

type LogConfig struct {
	Level          string `mapstructure:"LOG_LEVEL"       yaml:"LOG_LEVEL"`
	JSON           bool   `mapstructure:"LOG_JSON"        yaml:"LOG_JSON"`
	NoColor        bool   `mapstructure:"LOG_NO_COLOR"    yaml:"LOG_NO_COLOR"`
	File           string `mapstructure:"LOG_FILE"        yaml:"LOG_FILE"`
	FileMaxSize    int    `mapstructure:"LOG_MAX_SIZE"    yaml:"LOG_MAX_SIZE"`
	FileMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS" yaml:"LOG_MAX_BACKUPS"`
	FileMaxAge     int    `mapstructure:"LOG_MAX_AGE"     yaml:"LOG_MAX_AGE"`
	FileCompress   bool   `mapstructure:"LOG_COMPRESS"    yaml:"LOG_COMPRESS"`
}

// Load reads .env files, an optional config file at path and the process
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	envFiles := []string{".env", ".env.local"}
	for _, envFile := range envFiles {
		// missing .env files are fine
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		for _, envFile := range envFiles {
			_ = godotenv.Load(filepath.Join(filepath.Dir(path), envFile))
		}

		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DSN == "" {
			if c.DBHost == "" {
				return fmt.Errorf("DB_HOST is required")
			}
			if c.DBPort == "" {
				return fmt.Errorf("DB_PORT is required")
			}
			if c.DBUser == "" {
				return fmt.Errorf("DB_USER is required")
			}
			if c.DBName == "" {
				return fmt.Errorf("DB_NAME is required")
			}
		}
	case DriverSQLite:
		if c.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.S3BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}

	if c.S3Region == "" {
		return fmt.Errorf("S3_REGION is required")
	}

	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	return nil
}

// DatabaseDSN returns DB_DSN when set, otherwise a postgres keyword/value DSN
// assembled from the individual DB_* settings.
func (c *Config) DatabaseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
