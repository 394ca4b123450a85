package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RndUsr76/Notish/internal/buildinfo"
	"github.com/RndUsr76/Notish/internal/client/cli"
	"github.com/RndUsr76/Notish/internal/client/config"
	"github.com/RndUsr76/Notish/internal/client/storage"
	"github.com/RndUsr76/Notish/internal/logging"
)

func main() {

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	if cfg.IssueTokenFor != "" {
		if err := cli.PrintToken(os.Stdout, cfg); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Error(context.Background(), "close storage", "err", err)
		}
	}()

	cli.NewApp(cfg, repos, logger, os.Stdin, os.Stdout).Run(ctx)
}
