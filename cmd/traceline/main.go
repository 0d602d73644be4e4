package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/app"
	"github.com/ternarybob/traceline/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Traceline version %s\n", common.GetVersion())
		os.Exit(0)
	}

	defer common.RecoverWithCrashFile()

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("traceline.toml"); err == nil {
			configFiles = append(configFiles, "traceline.toml")
		} else if _, err := os.Stat("deployments/local/traceline.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/traceline.toml")
		}
	}

	// Startup sequence: load config, validate, logger, banner, app.
	// All required options must be present before anything starts.
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if err := config.Validate(); err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Configuration is incomplete")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.InstallCrashHandler(filepath.Dir(config.Logging.File))
	common.PrintBanner(common.LoadVersionFromFile())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Startup failed")
		os.Exit(1)
	}
	defer application.Close()

	// Graceful shutdown: the cycle in flight finishes, then the loop
	// exits.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Poll loop terminated")
		os.Exit(1)
	}
}
