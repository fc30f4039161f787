package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "stablebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTxTimeout       = 10 * time.Second
	DefaultTxMaxCommitTime = 5 * time.Second

	DefaultPaginationLimit = 100

	DefaultMaxBatchSize     = 20
	DefaultPricePerHour     = 50.0
	DefaultCommissionRate   = 0.15
	DefaultMinLeadTimeHours = 8
	DefaultTimeZone         = "UTC"

	DefaultNotifyEnabled   = true
	DefaultNotifyQueueSize = 256
	DefaultNotifyWorkers   = 2
	DefaultNotifyTimeout   = 5 * time.Second
)
