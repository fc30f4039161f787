package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"stablebook/pkg/client"
	"stablebook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	TxTimeout       time.Duration
	TxMaxCommitTime time.Duration

	MaxBatchSize            int
	DefaultPricePerHour     float64
	DefaultCommissionRate   float64
	DefaultMinLeadTimeHours int
	DefaultTimeZone         string
	DefaultLocation         *time.Location

	NotifyEnabled    bool
	NotifyQueueSize  int
	NotifyWorkers    int
	NotifyTimeout    time.Duration
	NotifyWebhookURL string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotEnvErr := loadDotEnv()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		TxTimeout:       getEnvDuration(EnvTxTimeout, DefaultTxTimeout),
		TxMaxCommitTime: getEnvDuration(EnvTxMaxCommitTime, DefaultTxMaxCommitTime),

		MaxBatchSize:            getEnvNum(EnvMaxBatchSize, DefaultMaxBatchSize),
		DefaultPricePerHour:     getEnvFloat(EnvDefaultPricePerHour, DefaultPricePerHour),
		DefaultCommissionRate:   getEnvFloat(EnvDefaultCommissionRate, DefaultCommissionRate),
		DefaultMinLeadTimeHours: getEnvNum(EnvDefaultMinLeadTimeHours, DefaultMinLeadTimeHours),
		DefaultTimeZone:         getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),

		NotifyEnabled:    getEnvBool(EnvNotifyEnabled, DefaultNotifyEnabled),
		NotifyQueueSize:  getEnvNum(EnvNotifyQueueSize, DefaultNotifyQueueSize),
		NotifyWorkers:    getEnvNum(EnvNotifyWorkers, DefaultNotifyWorkers),
		NotifyTimeout:    getEnvDuration(EnvNotifyTimeout, DefaultNotifyTimeout),
		NotifyWebhookURL: getEnvStr(EnvNotifyWebhook, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotEnvErr != nil {
		cfg.Log.Warn("Failed to load .env file, using process environment", "error", dotEnvErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// loadDotEnv loads DOTENV_FILE (default .env) when present. Variables
// already set in the process environment win.
func loadDotEnv() error {
	file := getEnvStr(EnvDotEnvFile, ".env")
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(file)
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	positive := map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"TxTimeout":        cfg.TxTimeout,
		"TxMaxCommitTime":  cfg.TxMaxCommitTime,
		"NotifyTimeout":    cfg.NotifyTimeout,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}
	if cfg.TxMaxCommitTime > cfg.TxTimeout {
		errs = append(errs, fmt.Sprintf("TxMaxCommitTime (%s) must not exceed TxTimeout (%s)", cfg.TxMaxCommitTime, cfg.TxTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if len(cfg.JWTSecret) < 16 {
		errs = append(errs, "JWTSecret must be set and at least 16 characters long")
	}

	if cfg.MaxBatchSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxBatchSize must be positive, got: %d", cfg.MaxBatchSize))
	}
	if cfg.DefaultPricePerHour < 0 {
		errs = append(errs, fmt.Sprintf("DefaultPricePerHour cannot be negative, got: %v", cfg.DefaultPricePerHour))
	}
	if cfg.DefaultCommissionRate < 0 || cfg.DefaultCommissionRate > 1 {
		errs = append(errs, fmt.Sprintf("DefaultCommissionRate must be between 0 and 1, got: %v", cfg.DefaultCommissionRate))
	}
	if cfg.DefaultMinLeadTimeHours < 0 {
		errs = append(errs, fmt.Sprintf("DefaultMinLeadTimeHours cannot be negative, got: %d", cfg.DefaultMinLeadTimeHours))
	}
	loc, err := time.LoadLocation(cfg.DefaultTimeZone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("DefaultTimeZone must be an IANA time zone, got: %s", cfg.DefaultTimeZone))
	} else {
		cfg.DefaultLocation = loc
	}

	if cfg.NotifyEnabled {
		if cfg.NotifyQueueSize <= 0 {
			errs = append(errs, fmt.Sprintf("NotifyQueueSize must be positive, got: %d", cfg.NotifyQueueSize))
		}
		if cfg.NotifyWorkers <= 0 {
			errs = append(errs, fmt.Sprintf("NotifyWorkers must be positive, got: %d", cfg.NotifyWorkers))
		}
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"tx_timeout", cfg.TxTimeout,
		"tx_max_commit_time", cfg.TxMaxCommitTime,
		"max_batch_size", cfg.MaxBatchSize,
		"default_price_per_hour", cfg.DefaultPricePerHour,
		"default_commission_rate", cfg.DefaultCommissionRate,
		"default_min_lead_time_hours", cfg.DefaultMinLeadTimeHours,
		"default_time_zone", cfg.DefaultTimeZone,
		"notify_enabled", cfg.NotifyEnabled,
		"notify_workers", cfg.NotifyWorkers,
		"notify_webhook_set", cfg.NotifyWebhookURL != "",
	)
}

// Location returns the fallback zone for welfare sessions.
func (cfg *Config) Location() *time.Location {
	if cfg.DefaultLocation != nil {
		return cfg.DefaultLocation
	}
	return time.UTC
}

func (cfg *Config) GracefulShutdown() {
	if cfg.Client == nil {
		return
	}
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
