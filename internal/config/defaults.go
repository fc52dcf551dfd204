package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultMaxFileSize is 10 MiB.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

func Default() Config {
	return Config{
		ServerPort:      "8080",
		ShutdownTimeout: 10 * time.Second,

		DBDriver:  DriverPostgres,
		DBHost:    "localhost",
		DBPort:    "5432",
		DBName:    "webapp",
		DBSSLMode: "disable",
		DBTimeout: 5 * time.Second,

		S3Region:  "us-east-1",
		S3Timeout: 30 * time.Second,

		CacheTTL: 10 * time.Minute,

		MaxFileSize:        DefaultMaxFileSize,
		LocatorRawFallback: false,

		WSAllowedOrigins: []string{},

		Log: LogConfig{
			Level:          "info",
			FileMaxSize:    128,
			FileMaxBackups: 5,
			FileMaxAge:     16,
		},
	}
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("SERVER_PORT", d.ServerPort)
	v.SetDefault("SHUTDOWN_TIMEOUT", d.ShutdownTimeout)

	v.SetDefault("DB_DRIVER", d.DBDriver)
	v.SetDefault("DB_DSN", d.DSN)
	v.SetDefault("DB_HOST", d.DBHost)
	v.SetDefault("DB_PORT", d.DBPort)
	v.SetDefault("DB_USER", d.DBUser)
	v.SetDefault("DB_PASSWORD", d.DBPassword)
	v.SetDefault("DB_NAME", d.DBName)
	v.SetDefault("DB_SSLMODE", d.DBSSLMode)
	v.SetDefault("DB_TIMEOUT", d.DBTimeout)

	v.SetDefault("S3_BUCKET_NAME", d.S3BucketName)
	v.SetDefault("S3_REGION", d.S3Region)
	v.SetDefault("S3_ENDPOINT", d.S3Endpoint)
	v.SetDefault("S3_ACCESS_KEY_ID", d.S3AccessKeyID)
	v.SetDefault("S3_SECRET_ACCESS_KEY", d.S3SecretAccessKey)
	v.SetDefault("S3_TIMEOUT", d.S3Timeout)

	v.SetDefault("REDIS_ADDR", d.RedisAddr)
	v.SetDefault("REDIS_PASSWORD", d.RedisPassword)
	v.SetDefault("REDIS_DB", d.RedisDB)
	v.SetDefault("CACHE_TTL", d.CacheTTL)

	v.SetDefault("MAX_FILE_SIZE", d.MaxFileSize)
	v.SetDefault("LOCATOR_RAW_FALLBACK", d.LocatorRawFallback)
	v.SetDefault("WS_ALLOWED_ORIGINS", d.WSAllowedOrigins)

	v.SetDefault("LOG_LEVEL", d.Log.Level)
	v.SetDefault("LOG_JSON", d.Log.JSON)
	v.SetDefault("LOG_NO_COLOR", d.Log.NoColor)
	v.SetDefault("LOG_FILE", d.Log.File)
	v.SetDefault("LOG_MAX_SIZE", d.Log.FileMaxSize)
	v.SetDefault("LOG_MAX_BACKUPS", d.Log.FileMaxBackups)
	v.SetDefault("LOG_MAX_AGE", d.Log.FileMaxAge)
	v.SetDefault("LOG_COMPRESS", d.Log.FileCompress)
}
