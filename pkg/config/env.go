package config

const (
	EnvDotEnvFile = "DOTENV_FILE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTxTimeout       = "TX_TIMEOUT"
	EnvTxMaxCommitTime = "TX_MAX_COMMIT_TIME"

	EnvMaxBatchSize            = "MAX_BATCH_SIZE"
	EnvDefaultPricePerHour     = "DEFAULT_PRICE_PER_HOUR"
	EnvDefaultCommissionRate   = "DEFAULT_COMMISSION_RATE"
	EnvDefaultMinLeadTimeHours = "DEFAULT_MIN_LEAD_TIME_HOURS"
	EnvDefaultTimeZone         = "DEFAULT_TIME_ZONE"

	EnvNotifyEnabled   = "NOTIFY_ENABLED"
	EnvNotifyQueueSize = "NOTIFY_QUEUE_SIZE"
	EnvNotifyWorkers   = "NOTIFY_WORKERS"
	EnvNotifyTimeout   = "NOTIFY_TIMEOUT"
	EnvNotifyWebhook   = "NOTIFY_WEBHOOK_URL"
)
