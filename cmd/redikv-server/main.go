// Command redikv-server starts a single redikv instance: it parses its
// flags, wires the stores and shared collaborators, and runs the
// accept loop until SIGINT/SIGTERM. Grounded on lukluk-rendang's main()
// (parse config, construct, Start, exit non-zero on failure).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/lukluk/redikv/internal/blocking"
	"github.com/lukluk/redikv/internal/config"
	"github.com/lukluk/redikv/internal/metrics"
	"github.com/lukluk/redikv/internal/pubsub"
	"github.com/lukluk/redikv/internal/replication"
	"github.com/lukluk/redikv/internal/server"
	"github.com/lukluk/redikv/internal/session"
	"github.com/lukluk/redikv/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cfg, err := config.Parse(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	zapLevel, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zapLevel
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	logrusLogger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrusLogger.SetLevel(lvl)
	}

	// The blocking coordinator must observe every store mutation, but it
	// also needs the store to service an immediate BLPOP/XREAD BLOCK
	// check; wire the coordinator against a throwaway store first so it
	// has a non-nil *store.Store to hold, then build the real store with
	// the coordinator as its notifier and point the coordinator at it.
	coord := blocking.New(store.New(nil), logrusLogger)
	st := store.New(coord)
	coord.SetStore(st)

	deps := session.Deps{
		Store:   st,
		Coord:   coord,
		PubSub:  pubsub.New(),
		Repl:    replication.NewManager(cfg.ReplicaOf, logrusLogger),
		Metrics: metrics.New(),
		Logger:  logger,
	}

	if deps.Repl.IsReplica() {
		logger.Info("starting in replica mode",
			zap.String("master_host", cfg.ReplicaOf.Host),
			zap.Int("master_port", cfg.ReplicaOf.Port))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.New(addr, cfg.MetricsAddr, deps, logger)

	if err := srv.Run(); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return 1
	}
	return 0
}
