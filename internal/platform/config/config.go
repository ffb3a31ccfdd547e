package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	strs "onboarding/pkg/platform/strings"
)

// Notifier backends.
const (
	NotifierMemory = "memory"
	NotifierSNS    = "sns"
	NotifierSES    = "ses"
	NotifierKafka  = "kafka"
)

// Server captures process level configuration.
type Server struct {
	Addr                string
	LogLevel            string
	DatabaseURL         string
	Redis               RedisConfig
	Notifier            NotifierConfig
	Registration        RegistrationConfig
	ExpirySweepInterval time.Duration
	ShutdownTimeout     time.Duration
}

// RedisConfig configures the customer directory connection. An empty URL
// keeps customers in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RegistrationConfig is the registration policy. A nil BlockedWords keeps
// the service default.
type RegistrationConfig struct {
	DomainSuffix string
	BlockedWords []string
}

// NotifierConfig selects and configures the notification backend.
type NotifierConfig struct {
	Backend          string
	BreakerThreshold int
	BreakerCooldown  time.Duration
	AWSRegion        string
	SNSTopicARN      string
	SESFrom          string
	SESTo            []string
	KafkaBrokers     []string
	KafkaTopic       string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        getEnv("ONBOARDING_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Notifier: NotifierConfig{
			Backend:          strings.ToLower(getEnv("NOTIFIER", NotifierMemory)),
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			AWSRegion:        getEnv("AWS_REGION", "eu-north-1"),
			SNSTopicARN:      os.Getenv("NOTIFY_SNS_TOPIC_ARN"),
			SESFrom:          os.Getenv("NOTIFY_SES_FROM"),
			SESTo:            strs.SplitList(os.Getenv("NOTIFY_SES_TO")),
			KafkaBrokers:     strs.SplitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:       getEnv("KAFKA_NOTIFY_TOPIC", "onboarding.notifications"),
		},
		Registration: RegistrationConfig{
			DomainSuffix: getEnv("REGISTRATION_DOMAIN_SUFFIX", ".com"),
			BlockedWords: strs.SplitList(os.Getenv("REGISTRATION_BLOCKED_WORDS")),
		},
		ExpirySweepInterval: time.Hour,
		ShutdownTimeout:     10 * time.Second,
	}

	if raw := os.Getenv("EXPIRY_SWEEP_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse EXPIRY_SWEEP_INTERVAL: %w", err)
		}
		if d < 0 {
			return Server{}, fmt.Errorf("EXPIRY_SWEEP_INTERVAL must not be negative")
		}
		cfg.ExpirySweepInterval = d
	}
	if raw := os.Getenv("NOTIFY_BREAKER_THRESHOLD"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("NOTIFY_BREAKER_THRESHOLD must be a positive integer")
		}
		cfg.Notifier.BreakerThreshold = n
	}
	if raw := os.Getenv("NOTIFY_BREAKER_COOLDOWN"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse NOTIFY_BREAKER_COOLDOWN: %w", err)
		}
		if d <= 0 {
			return Server{}, fmt.Errorf("NOTIFY_BREAKER_COOLDOWN must be positive")
		}
		cfg.Notifier.BreakerCooldown = d
	}
	if raw := os.Getenv("REDIS_POOL_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse REDIS_POOL_SIZE: %w", err)
		}
		cfg.Redis.PoolSize = n
	}

	if err := cfg.Notifier.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (n NotifierConfig) validate() error {
	switch n.Backend {
	case NotifierMemory:
		return nil
	case NotifierSNS:
		if n.SNSTopicARN == "" {
			return fmt.Errorf("NOTIFY_SNS_TOPIC_ARN is required for the sns notifier")
		}
	case NotifierSES:
		if n.SESFrom == "" || len(n.SESTo) == 0 {
			return fmt.Errorf("NOTIFY_SES_FROM and NOTIFY_SES_TO are required for the ses notifier")
		}
	case NotifierKafka:
		if len(n.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", n.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
