// Package main is the trade-with-me daemon: a session-negotiation server
// for two-party Solana token swaps.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/klingon-exchange/trade-with-me/internal/chainctx"
	"github.com/klingon-exchange/trade-with-me/internal/config"
	"github.com/klingon-exchange/trade-with-me/internal/httpapi"
	"github.com/klingon-exchange/trade-with-me/internal/metadatastore"
	"github.com/klingon-exchange/trade-with-me/internal/pgstore"
	"github.com/klingon-exchange/trade-with-me/internal/tokencache"
	"github.com/klingon-exchange/trade-with-me/internal/tokenservice"
	"github.com/klingon-exchange/trade-with-me/internal/tradeengine"
	"github.com/klingon-exchange/trade-with-me/internal/traderepo"
	"github.com/klingon-exchange/trade-with-me/internal/txbuilder"
	"github.com/klingon-exchange/trade-with-me/internal/wsadapter"
	"github.com/klingon-exchange/trade-with-me/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "config.yaml", "Config file path")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(&logging.Config{Level: "info", TimeFormat: time.TimeOnly})
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("tradewithme %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log = logging.New(&logging.Config{Level: cfg.LogLevel, TimeFormat: time.TimeOnly})
	logging.SetDefault(log)
	log.Info("config loaded", "path", *configFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trades, err := pgstore.Open(cfg.Postgres.DSN())
	if err != nil {
		log.Fatal("failed to open trades store", "error", err)
	}
	defer trades.Close()
	log.Info("trades store connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	metadata, err := metadatastore.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open metadata store", "error", err)
	}
	defer metadata.Close()
	log.Info("metadata store opened", "path", cfg.SQLitePath)

	rpcClient := rpc.New(cfg.RPCURL)
	chain := chainctx.NewMainnet(rpcClient)
	cache := tokencache.New()

	tradeSvc := traderepo.New(trades)
	tokenSvc := tokenservice.New(rpcClient, metadata, cache)
	builder := txbuilder.New(chain)
	engine := tradeengine.New(cache, builder, log)
	adapter := wsadapter.New(engine, log)

	server := httpapi.New(tradeSvc, tokenSvc, metadata, adapter, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("http server error", "error", err)
		}
	case <-sigCh:
		log.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("error during shutdown", "error", err)
		}
	}

	cancel()
	log.Info("goodbye!")
}
