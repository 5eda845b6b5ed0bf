// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// the matcher engine and for every frequency-source provider (Redis,
// Postgres, Elasticsearch, Kafka).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Matcher  MatcherConfig  `yaml:"matcher"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Elastic  ElasticConfig  `yaml:"elastic"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// MatcherConfig controls predicate-set compilation: which backend to use and
// the code-point range a wildcard segment may span.
type MatcherConfig struct {
	// Backend is one of "auto", "hash", "regex", "automaton".
	Backend string `yaml:"backend"`
	// WildcardRangeLo and WildcardRangeHi bound the code points a wildcard
	// segment matches, as integer code-point values.
	WildcardRangeLo int `yaml:"wildcardRangeLo"`
	WildcardRangeHi int `yaml:"wildcardRangeHi"`
	// DFAMaxStates caps the per-matcher determinized-state cache of the
	// automaton backend.
	DFAMaxStates uint32 `yaml:"dfaMaxStates"`
}

// RedisConfig holds connection parameters for the Redis frequency provider.
type RedisConfig struct {
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	PoolSize      int           `yaml:"poolSize"`
	KeyPrefix     string        `yaml:"keyPrefix"`
	LookupTimeout time.Duration `yaml:"lookupTimeout"`
}

// PostgresConfig holds connection parameters for the Postgres frequency
// provider.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	LookupTimeout   time.Duration `yaml:"lookupTimeout"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticConfig holds connection parameters for the Elasticsearch frequency
// provider.
type ElasticConfig struct {
	Addresses     []string      `yaml:"addresses"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	Index         string        `yaml:"index"`
	Field         string        `yaml:"field"`
	LookupTimeout time.Duration `yaml:"lookupTimeout"`
}

// KafkaConfig holds Kafka broker and topic settings for the term-stats feed.
type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	ConsumerGroup  string   `yaml:"consumerGroup"`
	TermStatsTopic string   `yaml:"termStatsTopic"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with defaults suitable for local
// development.
func defaultConfig() *Config {
	return &Config{
		Matcher: MatcherConfig{
			Backend:         "auto",
			WildcardRangeLo: 0x0000,
			WildcardRangeHi: 0x024F,
			DFAMaxStates:    10_000,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			Password:      "",
			DB:            0,
			PoolSize:      10,
			KeyPrefix:     "df:",
			LookupTimeout: 250 * time.Millisecond,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "tokenmatch",
			User:            "tokenmatch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			LookupTimeout:   500 * time.Millisecond,
		},
		Elastic: ElasticConfig{
			Addresses:     []string{"http://localhost:9200"},
			Index:         "documents",
			Field:         "body",
			LookupTimeout: 500 * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Brokers:        []string{"localhost:9092"},
			ConsumerGroup:  "tokenmatch-group",
			TermStatsTopic: "term-stats",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads TM_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TM_MATCHER_BACKEND"); v != "" {
		cfg.Matcher.Backend = v
	}
	if v := os.Getenv("TM_MATCHER_DFA_MAX_STATES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Matcher.DFAMaxStates = uint32(n)
		}
	}
	if v := os.Getenv("TM_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TM_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TM_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TM_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TM_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TM_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TM_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TM_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("TM_ELASTIC_ADDRESSES"); v != "" {
		cfg.Elastic.Addresses = strings.Split(v, ",")
	}
	if v := os.Getenv("TM_ELASTIC_INDEX"); v != "" {
		cfg.Elastic.Index = v
	}
	if v := os.Getenv("TM_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TM_KAFKA_TERM_STATS_TOPIC"); v != "" {
		cfg.Kafka.TermStatsTopic = v
	}
	if v := os.Getenv("TM_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TM_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
