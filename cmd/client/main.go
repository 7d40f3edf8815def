package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/artwall/internal/client/cli"
	"github.com/dmitrijs2005/artwall/internal/client/config"
	"github.com/dmitrijs2005/artwall/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app.Run(ctx)
}
