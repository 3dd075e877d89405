// Package config loads indexer configuration from environment variables
// and an optional config file, the way the teacher's internal/config does.
package config

import (
	"context"
	"strings"
	"sync"

	"github.com/brc20indexer/core/internal/ingestion"
	"github.com/brc20indexer/core/internal/postgres"
	"github.com/brc20indexer/core/pkg/logger"
	"github.com/brc20indexer/core/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

var (
	once sync.Once
	cfg  = &Config{
		Postgres: postgres.Config{
			Host:     "127.0.0.1",
			Port:     "5432",
			DBName:   "brc20",
			MaxConns: postgres.DefaultMaxConns,
		},
		QueueMaxDepth: ingestion.DefaultQueueDepth,
		BitcoinRPC: BitcoinRPC{
			User: "user",
			Pass: "pass",
		},
	}
)

// BitcoinRPC holds the connection details for the native block source
// collaborator. The core never dials this itself; it only carries the
// settings for whatever process delivers blocks to the ingestion
// Coordinator.
type BitcoinRPC struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

// Config is the full process configuration.
type Config struct {
	Postgres      postgres.Config `mapstructure:"postgres"`
	BitcoinRPC    BitcoinRPC      `mapstructure:"bitcoin_rpc"`
	WorkingDir    string          `mapstructure:"working_dir"`
	QueueMaxDepth int             `mapstructure:"queue_max_depth"`
}

// Load reads configuration from ./config.yaml (if present) and
// environment variables, unmarshalling into a Config. It is safe to call
// repeatedly; the file/env read happens exactly once per process.
func Load() Config {
	ctx := logger.WithContext(context.Background(), slogx.String("package", "config"))
	once.Do(func() {
		viper.AddConfigPath("./")
		viper.SetConfigName("config")

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				logger.WarnContext(ctx, "config file not found, using defaults", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}
		if err := viper.Unmarshal(&cfg); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded configuration")
	})
	return *cfg
}
