// ====================================
// File: cmd/curvectl/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/launchpad"
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"go.uber.org/zap"
)

const usage = `curvectl: bonding curve calculator and launchpad simulator

Usage:
  curvectl [-config file] [-json] <command> [flags]

Commands:
  price     spot price and market cap at a supply
  buy       quote a buy of base currency at a supply
  sell      quote a sale of tokens at a supply
  state     graduation progress for a raised amount and supply
  simulate  run a trade scenario against an in-memory launchpad
  export    run a scenario and export its trades as CSV or JSON
`

type app struct {
	cfg    *config.Config
	log    *logger.Logger
	asJSON bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if launchpad.IsClientError(err) || errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("curvectl", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	configPath := fs.String("config", "", "path to JSON config (defaults and LAUNCHPAD_* env when empty)")
	asJSON := fs.Bool("json", false, "print JSON instead of styled output")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Консоль занята выводом команды
	if cfg.Log.Console == "" || cfg.Log.Console == "stdout" {
		cfg.Log.Console = "stderr"
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	a := &app{cfg: cfg, log: log, asJSON: *asJSON}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	log.Debug("Running command", zap.String("command", cmd), zap.Strings("args", rest))

	switch cmd {
	case "price":
		return a.price(rest)
	case "buy":
		return a.buy(rest)
	case "sell":
		return a.sell(rest)
	case "state":
		return a.state(rest)
	case "simulate":
		return a.simulate(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
