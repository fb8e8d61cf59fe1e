package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Notify NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=healthcare_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// NotifyConfig holds the delivery-layer policy knobs.
type NotifyConfig struct {
	// RetentionDays bounds how far back backfill looks on reconnect.
	RetentionDays int `env:"NOTIFY_RETENTION_DAYS, default=7"`
	// BackfillLimit caps how many notifications one join may replay.
	BackfillLimit int `env:"NOTIFY_BACKFILL_LIMIT, default=50"`
	// SendTimeout bounds a whole send, including audience resolution.
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT, default=5s"`
	// JoinTimeout bounds identity validation plus backfill on join.
	JoinTimeout time.Duration `env:"WS_JOIN_TIMEOUT, default=5s"`
}

// RetentionWindow returns the backfill window as a duration.
func (c NotifyConfig) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
