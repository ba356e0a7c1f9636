package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Sink names accepted by SINKS.
const (
	SinkLog      = "log"
	SinkRedis    = "redis"
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"
	SinkFile     = "file"
)

// Streams accepted by EVENT_LOG_TARGET.
const (
	EventLogStderr = "stderr"
	EventLogStdout = "stdout"
)

// Config holds all application configuration.
type Config struct {
	Addr      string `env:"OPEVENT_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	// TimeZone is the location event times are rendered in.
	TimeZone string `env:"TIME_ZONE" envDefault:"UTC"`

	// JWTSigningKey enables bearer authentication of actors when set.
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"opevent"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"opevent"`

	// FieldsPath points at an optional YAML file overriding field whitelists.
	FieldsPath string `env:"FIELDS_PATH"`

	Sinks []string `env:"SINKS" envSeparator:"," envDefault:"log"`
	// EventLogTarget is the stream the log sink writes to, kept apart from
	// application logs on stdout by default.
	EventLogTarget string `env:"EVENT_LOG_TARGET" envDefault:"stderr"`

	Redis    RedisConfig
	Kafka    KafkaConfig
	Postgres PostgresConfig
	File     FileConfig
	Breaker  BreakerConfig

	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	TxTimeout       time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// RedisConfig configures the Redis connection used by the stream sink and
// the catalog.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	Stream       string        `env:"REDIS_STREAM" envDefault:"operation_events"`
	StreamMaxLen int64         `env:"REDIS_STREAM_MAX_LEN" envDefault:"0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures the Kafka sink.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"operation-events"`
}

// PostgresConfig configures the database behind the unit of work, the
// receipts store and the postgres sink.
type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// FileConfig configures the rotating file sink.
type FileConfig struct {
	Dir      string `env:"FILE_SINK_DIR" envDefault:"./events"`
	MaxBytes int64  `env:"FILE_SINK_MAX_BYTES" envDefault:"67108864"`
}

// BreakerConfig tunes the circuit breakers guarding remote sinks.
type BreakerConfig struct {
	Failures  int           `env:"BREAKER_FAILURES" envDefault:"5"`
	Successes int           `env:"BREAKER_SUCCESSES" envDefault:"1"`
	Cooldown  time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// HasSink reports whether name is among the configured sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c *Config) validate() error {
	for _, s := range c.Sinks {
		switch s {
		case SinkLog, SinkFile:
		case SinkRedis:
			if c.Redis.URL == "" {
				return fmt.Errorf("sink %s requires REDIS_URL", s)
			}
		case SinkKafka:
			if len(c.Kafka.Brokers) == 0 {
				return fmt.Errorf("sink %s requires KAFKA_BROKERS", s)
			}
		case SinkPostgres:
			if c.Postgres.DSN == "" {
				return fmt.Errorf("sink %s requires POSTGRES_DSN", s)
			}
		default:
			return fmt.Errorf("unknown sink %q", s)
		}
	}
	switch c.EventLogTarget {
	case EventLogStderr, EventLogStdout:
	default:
		return fmt.Errorf("unknown event log target %q", c.EventLogTarget)
	}
	if c.Breaker.Failures < 1 || c.Breaker.Successes < 1 {
		return fmt.Errorf("breaker thresholds must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
