// Package main implements a command line tool for managing products stored in PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/productstore/internal/config"
	perrors "github.com/abgdnv/productstore/internal/product/errors"
	"github.com/abgdnv/productstore/internal/product/store"
	"github.com/abgdnv/productstore/internal/platform/bootstrap"
	"github.com/abgdnv/productstore/internal/platform/config/configloader"
	"github.com/abgdnv/productstore/internal/platform/logger"
	"github.com/abgdnv/productstore/internal/platform/telemetry"
	"github.com/google/uuid"
)

const serviceName = "product"

const (
	exitFailure  = 1
	exitInvalid  = 2
	exitNotFound = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Printf("productstore: %v", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// run loads the configuration, connects to the database and executes one subcommand.
func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("productstore", flag.ContinueOnError)
	configFile := fs.String("config", configloader.DefaultConfigFile, "path to the YAML configuration file")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		usage(fs)
		return errUsage
	}
	name, cmdArgs := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		usage(fs)
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, cfgErr := configloader.LoadFrom[*config.Config](serviceName, *configFile)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}

	appLogger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(appLogger)
	appLogger.Debug("Configuration loaded", "config", cfg.String())

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				appLogger.Warn("Failed to flush traces", "error", err)
			}
		}()
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()

	ctx = logger.WithOperationID(ctx, uuid.NewString())
	appLogger.DebugContext(ctx, "Running command", "command", name)

	return cmd(ctx, store.NewPgStore(dbPool, appLogger), out, cmdArgs)
}

// exitCode maps store error kinds to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, perrors.ErrInvalidItem), errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitInvalid
	case errors.Is(err, perrors.ErrProductNotFound):
		return exitNotFound
	default:
		return exitFailure
	}
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "usage: productstore [-config file] <command> [arguments]\n\ncommands:\n")
	fmt.Fprintf(w, "  create '<json item>'         create a product, e.g. '{\"name\":\"widget\",\"stock\":5}'\n")
	fmt.Fprintf(w, "  get <id>                     print one product\n")
	fmt.Fprintf(w, "  list                         stream every product as JSON lines\n")
	fmt.Fprintf(w, "  update <id> '<json item>'    replace name and stock of a product\n")
	fmt.Fprintf(w, "  delete <id>                  delete a product\n")
	fmt.Fprintf(w, "  seed [-n N] [-c C] [-prefix P] [-stock S]\n")
	fmt.Fprintf(w, "                               create N products with at most C concurrent calls\n\nflags:\n")
	fs.PrintDefaults()
}
