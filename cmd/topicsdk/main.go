package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"topicsdk/internal/core/app"
	"topicsdk/internal/core/config"
	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/shared/observability"
	"topicsdk/internal/ui/browse"
	"topicsdk/internal/ui/console"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var (
	configPath = flag.String("config", "./topicsdk.toml", "Path to config file (.toml, or the legacy key-value format)")
	browseUI   = flag.Bool("browse", false, "Browse the UWP API reference model in a terminal UI instead of running tasks")
	importAPIs = flag.String("import-apis", "", "Import a tab-separated API export into the module database before running")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

const legacyConfigPath = "./configuration.txt"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("topicsdk v%s\n", VERSION)
		os.Exit(0)
	}

	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	output := os.Stdout
	if *browseUI {
		// Keep log records out of the terminal UI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
			output = f
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		}
	}
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	})).With("run_id", runID)
	slog.SetDefault(logger)

	con := console.New(os.Stdout)
	code, err := run(runID)
	if err != nil {
		slog.Error("run failed", "error", err)
		con.Println(console.Error, apperrors.Message(err))
	}
	os.Exit(code)
}

func run(runID string) (int, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./topicsdk.toml" && apperrors.IsCode(err, apperrors.CodeNotFound) {
			cfg, err = config.Load(legacyConfigPath)
		}
		if err != nil {
			return 1, err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		return 1, apperrors.Wrap(err, apperrors.CodeInternal, "initialize tracing")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	a, err := app.New(cfg, app.Options{RunID: runID, Version: VERSION})
	if err != nil {
		return 1, err
	}
	defer a.Close()

	if *importAPIs != "" {
		if _, err := a.ImportAPIs(*importAPIs); err != nil {
			return 1, err
		}
	}

	if *browseUI {
		m, delta, err := a.BrowseModel()
		if err != nil {
			return 1, err
		}
		if err := browse.Run(m, delta); err != nil {
			return 1, apperrors.Wrap(err, apperrors.CodeInternal, "run browser")
		}
		return 0, nil
	}

	return a.Run(ctx)
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "topicsdk", "topicsdk.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "topicsdk", "topicsdk.log")
	}

	return "topicsdk.log"
}
