package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/server"
	"github.com/ternarybob/finsight/internal/services/scheduler"
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
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: finsight [flags] <command> [args]

Commands:
  serve              Start the HTTP API server (default)
  analyze <company>  Run one analysis and print the Markdown report
  version            Print version information

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV || flag.Arg(0) == "version" {
		fmt.Printf("Finsight version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("finsight.toml"); err == nil {
			configFiles = append(configFiles, "finsight.toml")
		} else if _, err := os.Stat("deployments/local/finsight.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/finsight.toml")
		}
	}

	// Startup sequence: config (defaults -> files -> env), CLI overrides,
	// logger, banner.
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger := common.InitLogger(config)

	switch flag.Arg(0) {
	case "analyze":
		runAnalyze(config, logger, strings.Join(flag.Args()[1:], " "))
	case "serve", "":
		runServe(config, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}
}

// runAnalyze performs one analysis run and prints the report to stdout.
// Ambiguous input lists the candidates and exits non-zero so the caller can
// rerun with a chosen ticker.
func runAnalyze(config *common.Config, logger arbor.ILogger, company string) {
	if strings.TrimSpace(company) == "" {
		fmt.Fprintln(os.Stderr, "analyze requires a company name or ticker")
		os.Exit(2)
	}

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	run, _, err := application.Analyze(context.Background(), company)
	if err != nil {
		logger.Error().Err(err).Str("company", company).Msg("Analysis failed")
		os.Exit(1)
	}

	if run.Resolution != nil && run.Resolution.Status == models.ResolutionAmbiguous {
		fmt.Printf("Multiple companies match %q:\n", company)
		for _, m := range run.Resolution.Matches {
			fmt.Printf("  %-8s %s (%s)\n", m.Symbol, m.Name, m.Region)
		}
		fmt.Println("\nRerun with the ticker symbol of the intended company.")
		os.Exit(3)
	}

	fmt.Println(run.Report)
}

// runServe starts the HTTP server and, when configured, the watchlist
// scheduler.
func runServe(config *common.Config, logger arbor.ILogger) {
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	var sched *scheduler.Service
	if config.Watchlist.Enabled {
		sched = scheduler.NewService(application, config.Watchlist, logger)
		if err := sched.Start(); err != nil {
			logger.Warn().Err(err).Msg("Watchlist scheduler not started")
			sched = nil
		}
	}

	srv := server.New(application)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
