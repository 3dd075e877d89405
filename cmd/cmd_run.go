package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/brc20indexer/core/internal/config"
	"github.com/brc20indexer/core/internal/datagateway"
	"github.com/brc20indexer/core/internal/engine"
	"github.com/brc20indexer/core/internal/ingestion"
	"github.com/brc20indexer/core/internal/postgres"
	brc20postgres "github.com/brc20indexer/core/internal/repository/postgres"
	"github.com/brc20indexer/core/pkg/logger"
	"github.com/brc20indexer/core/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// NewRunCommand starts the coordinator that drains collaborator-delivered
// blocks into the operation engine and ledger store.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the indexer coordinator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandler(cmd.Context())
		},
	}
}

func runHandler(parent context.Context) error {
	conf := config.Load()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := do.New()
	do.ProvideValue(injector, conf)

	do.Provide(injector, func(i do.Injector) (*pgxpool.Pool, error) {
		conf := do.MustInvoke[config.Config](i)
		pool, err := postgres.NewPool(ctx, conf.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		return pool, nil
	})

	do.Provide(injector, func(i do.Injector) (datagateway.LedgerStore, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)
		return brc20postgres.New(pool), nil
	})

	do.Provide(injector, func(i do.Injector) (*engine.Engine, error) {
		return engine.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*ingestion.Coordinator, error) {
		conf := do.MustInvoke[config.Config](i)
		store := do.MustInvoke[datagateway.LedgerStore](i)
		eng := do.MustInvoke[*engine.Engine](i)
		return ingestion.New(store, eng, conf.QueueMaxDepth), nil
	})

	coordinator := do.MustInvoke[*ingestion.Coordinator](injector)

	done := make(chan struct{})
	go func() {
		defer close(done)
		coordinator.Run(ctx)
	}()

	logger.InfoContext(ctx, "indexer coordinator started")

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "shutdown signal received, stopping coordinator")
	case <-done:
		if err := coordinator.Err(); err != nil {
			logger.ErrorContext(ctx, "coordinator stopped unexpectedly", slogx.Error(err))
		}
	}

	coordinator.Stop()

	if pool, err := do.Invoke[*pgxpool.Pool](injector); err == nil {
		pool.Close()
	}

	if err := injector.Shutdown(); err != nil {
		logger.ErrorContext(ctx, "failed to shut down cleanly", slogx.Error(err))
	}

	return coordinator.Err()
}
