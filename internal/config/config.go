package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/DeafMist/pakgpt-news/backend/internal/models"
)

// Supported document store drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverMemory        = "memory"
)

// Common contains document store parameters shared by every service.
type Common struct {
	StoreDriver  string
	DatabaseURL  string
	DatabaseName string
	// DatabaseURLSet and DatabaseNameSet report whether the values came from
	// the environment rather than defaults.
	DatabaseURLSet  bool
	DatabaseNameSet bool
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr       string
	RequestTimeout time.Duration
}

// Worker holds configuration for the Kafka raw-article worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	Languages      []models.Language
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
	MetricsAddr    string
}

// LoadDotEnv reads a .env file in the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func loadCommon() (Common, error) {
	_, urlSet := lookup("DATABASE_URL")
	_, nameSet := lookup("DATABASE_NAME")
	c := Common{
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverElasticsearch)),
		DatabaseURL:     getEnv("DATABASE_URL", "http://elasticsearch:9200"),
		DatabaseName:    getEnv("DATABASE_NAME", "pakgpt"),
		DatabaseURLSet:  urlSet,
		DatabaseNameSet: nameSet,
	}

	switch c.StoreDriver {
	case DriverElasticsearch, DriverMemory:
	default:
		return c, fmt.Errorf("STORE_DRIVER must be %s or %s", DriverElasticsearch, DriverMemory)
	}
	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	bind := getEnv("API_BIND_ADDR", "")
	if bind == "" {
		bind = "0.0.0.0:" + getEnv("PORT", "8000")
	}

	c := &API{
		Common:         common,
		BindAddr:       bind,
		RequestTimeout: getDuration("API_REQUEST_TIMEOUT", "5s"),
	}

	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("API_REQUEST_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Common:         common,
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "news_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "news-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		MetricsAddr:    getEnv("WORKER_METRICS_ADDR", "0.0.0.0:9102"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}

	for _, raw := range splitAndTrim(getEnv("WORKER_LANGUAGES", "en,ur")) {
		lang, err := models.ParseLanguage(raw)
		if err != nil {
			return nil, fmt.Errorf("WORKER_LANGUAGES: %w", err)
		}
		c.Languages = append(c.Languages, lang)
	}
	if len(c.Languages) == 0 {
		return nil, fmt.Errorf("WORKER_LANGUAGES must contain at least one language")
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func getEnv(key, fallback string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
