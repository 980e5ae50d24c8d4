// Command oauthdemo runs the OAuth login flow of every configured platform.
//
// Provider credentials come from the optional -config YAML file and from
// SOCIALAUTH_* variables; server settings come from DEMO_*, LOG_* and
// SENTRY_* variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/socialauth/internal/demo"
	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/registry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML provider config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, "oauthdemo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := demo.LoadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log, demo.RequestIDExtractor)
	if err != nil {
		return err
	}
	defer logger.Flush(2 * time.Second)

	regCfg, err := registry.Load(configPath)
	if err != nil {
		return err
	}
	reg, err := registry.New(ctx, regCfg, registry.WithLogger(log))
	if err != nil {
		return err
	}

	h, err := demo.NewHandler(reg, cfg, log)
	if err != nil {
		_ = reg.Close()
		return err
	}
	return demo.Run(ctx, cfg, h, log, nil, func(context.Context) error { return reg.Close() })
}
