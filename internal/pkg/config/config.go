package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FeedTransportLocal = "local"
	FeedTransportKafka = "kafka"
)

type (
	Tasks struct {
		NotificationRetryInterval time.Duration
		NotificationRetryBatch    int
		NotificationRetryInWorker bool // повторы выполняет cmd/worker-notification-retry, а не сервис
	}

	HTTPServer struct {
		Port             string
		RequestTimeout   time.Duration // middleware timeout
		RateLimiterQPS   int           // middleware  rate limiter capacity
		RateLimiterBurst int           // middlewarerate limiter burst/refill
		PprofEnabled     bool
		PprofPort        string
		StreamHeartbeat  time.Duration // комментарий-пинг в потоках Server-Sent Events
	}

	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
		MaxConns int // 0 - значение по умолчанию пула
		MinConns int
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Notification struct {
		Workers     int
		QueueSize   int
		ClaimTTL    time.Duration
		MaxAttempts int
		JobTimeout  time.Duration
	}

	Messaging struct {
		URL            string
		Token          string
		Timeout        time.Duration
		MaxElapsedTime time.Duration
	}

	Feed struct {
		Transport  string // local | kafka
		BufferSize int
	}

	Kafka struct {
		Brokers       string
		Topic         string
		ConsumerGroup string
		Sarama        Sarama
	}

	Sarama struct {
		Version                   string
		ConsumerOffsetsAutocommit bool
	}

	Worker struct {
		PortHealthcheck string
	}

	Log struct {
		File string
	}

	Config struct {
		Tasks        Tasks
		Server       HTTPServer
		Database     Database
		Redis        Redis
		Notification Notification
		Messaging    Messaging
		Feed         Feed
		Kafka        Kafka
		Worker       Worker
		Log          Log
	}
)

func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

func loadFromEnv() (*Config, error) {
	retryInterval, err := osGetEnvDuration("BACKGROUND_NOTIFICATION_RETRY_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	retryBatch, err := osGetInt("BACKGROUND_NOTIFICATION_RETRY_BATCH")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	retryInWorker, err := osGetBool("BACKGROUND_NOTIFICATION_RETRY_IN_WORKER")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	streamHeartbeat, err := osGetEnvDuration("SSE_HEARTBEAT_INTERVAL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	saramaOffsetsAutocommit, err := osGetBool("KAFKA_SARAMA_OFFSETS_AUTOCOMMIT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	requestTimeout, err := osGetEnvDuration("MIDDLEWARE_REQUEST_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rateLimiterQPS, err := osGetInt("MIDDLEWARE_RATE_LIMIT_QPS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rateLimiterBurst, err := osGetInt("MIDDLEWARE_RATE_LIMIT_BURST")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	pprofEnabled, err := osGetBool("PPROF_ENABLED")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbMaxConns, err := osGetInt("POSTGRES_MAX_CONNS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dbMinConns, err := osGetInt("POSTGRES_MIN_CONNS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	redisDB, err := osGetInt("REDIS_DB")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	notificationWorkers, err := osGetInt("NOTIFICATION_WORKERS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	notificationQueueSize, err := osGetInt("NOTIFICATION_QUEUE_SIZE")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	notificationClaimTTL, err := osGetEnvDuration("NOTIFICATION_CLAIM_TTL")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	notificationMaxAttempts, err := osGetInt("NOTIFICATION_MAX_ATTEMPTS")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	notificationJobTimeout, err := osGetEnvDuration("NOTIFICATION_JOB_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	messagingTimeout, err := osGetEnvDuration("MESSAGING_GATEWAY_TIMEOUT")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	messagingMaxElapsed, err := osGetEnvDuration("MESSAGING_GATEWAY_RETRY_MAX_ELAPSED")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	feedBufferSize, err := osGetInt("FEED_BUFFER_SIZE")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	feedTransport := os.Getenv("FEED_TRANSPORT")
	if feedTransport == "" {
		feedTransport = FeedTransportLocal
	}

	return &Config{
		Tasks: Tasks{
			NotificationRetryInterval: retryInterval,
			NotificationRetryBatch:    retryBatch,
			NotificationRetryInWorker: retryInWorker,
		},
		Server: HTTPServer{
			Port:             os.Getenv("PORT"),
			RequestTimeout:   requestTimeout,
			RateLimiterQPS:   rateLimiterQPS,
			RateLimiterBurst: rateLimiterBurst,
			PprofEnabled:     pprofEnabled,
			PprofPort:        os.Getenv("PPROF_PORT"),
			StreamHeartbeat:  streamHeartbeat,
		},
		Database: Database{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  os.Getenv("POSTGRES_SSLMODE"),
			MaxConns: dbMaxConns,
			MinConns: dbMinConns,
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Notification: Notification{
			Workers:     notificationWorkers,
			QueueSize:   notificationQueueSize,
			ClaimTTL:    notificationClaimTTL,
			MaxAttempts: notificationMaxAttempts,
			JobTimeout:  notificationJobTimeout,
		},
		Messaging: Messaging{
			URL:            os.Getenv("MESSAGING_GATEWAY_URL"),
			Token:          os.Getenv("MESSAGING_GATEWAY_TOKEN"),
			Timeout:        messagingTimeout,
			MaxElapsedTime: messagingMaxElapsed,
		},
		Feed: Feed{
			Transport:  feedTransport,
			BufferSize: feedBufferSize,
		},
		Kafka: Kafka{
			Brokers:       os.Getenv("KAFKA_BROKERS"),
			Topic:         os.Getenv("KAFKA_TOPIC"),
			ConsumerGroup: os.Getenv("KAFKA_CONSUMER_GROUP"),
			Sarama: Sarama{
				Version:                   os.Getenv("KAFKA_SARAMA_VERSION"),
				ConsumerOffsetsAutocommit: saramaOffsetsAutocommit,
			},
		},
		Worker: Worker{
			PortHealthcheck: os.Getenv("WORKER_HTTP_HEALTHCHECK_PORT"),
		},
		Log: Log{
			File: os.Getenv("LOG_FILE"),
		},
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required (set via PORT env variable)")
	}
	if cfg.Server.RequestTimeout == time.Duration(0) {
		return errors.New("MIDDLEWARE_REQUEST_TIMEOUT is required")
	}
	if cfg.Server.RateLimiterQPS == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_QPS is required")
	}
	if cfg.Server.RateLimiterBurst == 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_BURST is required")
	}
	if cfg.Server.PprofPort == "" && cfg.Server.PprofEnabled {
		return errors.New("PprofPort is required (set via PPROF_PORT env variable)")
	}

	if cfg.Database.Host == "" {
		return errors.New("POSTGRES_HOST is required")
	}
	if cfg.Database.Port == "" {
		return errors.New("POSTGRES_PORT is required")
	}
	if cfg.Database.User == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("POSTGRES_PASSWORD is required")
	}
	if cfg.Database.DBName == "" {
		return errors.New("POSTGRES_DB is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("POSTGRES_SSLMODE is required")
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MinConns < 0 {
		return errors.New("POSTGRES_MAX_CONNS and POSTGRES_MIN_CONNS must not be negative")
	}
	if cfg.Database.MaxConns > 0 && cfg.Database.MinConns > cfg.Database.MaxConns {
		return errors.New("POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}

	if cfg.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required")
	}

	if cfg.Messaging.URL == "" {
		return errors.New("MESSAGING_GATEWAY_URL is required")
	}
	if cfg.Messaging.Timeout == time.Duration(0) {
		return errors.New("MESSAGING_GATEWAY_TIMEOUT is required")
	}

	if cfg.Tasks.NotificationRetryInterval == time.Duration(0) {
		return errors.New("BACKGROUND_NOTIFICATION_RETRY_INTERVAL is required")
	}
	if cfg.Notification.Workers < 0 || cfg.Notification.QueueSize < 0 || cfg.Notification.MaxAttempts < 0 {
		return errors.New("NOTIFICATION_* values must not be negative")
	}

	switch cfg.Feed.Transport {
	case FeedTransportLocal:
	case FeedTransportKafka:
		if err := validateKafka(&cfg.Kafka); err != nil {
			return err
		}
	default:
		return fmt.Errorf("FEED_TRANSPORT must be %q or %q, got %q", FeedTransportLocal, FeedTransportKafka, cfg.Feed.Transport)
	}

	return nil
}

func validateKafka(cfg *Kafka) error {
	if cfg.Brokers == "" {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.Topic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	if cfg.ConsumerGroup == "" {
		return errors.New("KAFKA_CONSUMER_GROUP is required")
	}
	if cfg.Sarama.Version == "" {
		return errors.New("KAFKA_SARAMA_VERSION is required")
	}
	return nil
}

// BrokerList разбирает KAFKA_BROKERS через запятую.
func (k *Kafka) BrokerList() []string {
	brokers := make([]string, 0)
	for _, broker := range strings.Split(k.Brokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func osGetInt(s string) (int, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid int format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetEnvDuration(s string) (time.Duration, error) {
	val := os.Getenv(s)
	if val == "" {
		return time.Duration(0), nil
	}

	res, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid duration format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetBool(s string) (bool, error) {
	val := os.Getenv(s)
	if val == "" {
		return false, nil
	}

	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool format for %s=%q: %w", s, val, err)
	}
	return res, nil
}
