// Command steamroller classifies a Polymarket event as a steamroller trade.
//
//	steamroller [-config path] [-json] <url | id | slug | search text>
//	steamroller [-config path] -serve
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rewired-gh/polysteamroller/internal/analyzer"
	"github.com/rewired-gh/polysteamroller/internal/config"
	"github.com/rewired-gh/polysteamroller/internal/logger"
	"github.com/rewired-gh/polysteamroller/internal/metrics"
	"github.com/rewired-gh/polysteamroller/internal/models"
	"github.com/rewired-gh/polysteamroller/internal/polymarket"
	"github.com/rewired-gh/polysteamroller/internal/resolver"
	"github.com/rewired-gh/polysteamroller/internal/server"
	"github.com/rewired-gh/polysteamroller/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	serve      = flag.Bool("serve", false, "Run the HTTP server instead of a one-shot analysis")
	jsonOut    = flag.Bool("json", false, "Print the report as JSON")
)

func main() {
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("Configuration loaded from %s", *configPath)

	m := metrics.New()

	polyClient := polymarket.NewClient(
		cfg.Polymarket.GammaAPIURL,
		cfg.Polymarket.Timeout,
		polymarket.ClientConfig{
			MaxAttempts:     cfg.Polymarket.MaxAttempts,
			RetryDelayBase:  cfg.Polymarket.RetryDelayBase,
			SearchLimit:     cfg.Polymarket.SearchLimit,
			UserAgent:       cfg.Polymarket.UserAgent,
			MaxIdleConns:    cfg.Polymarket.MaxIdleConns,
			IdleConnTimeout: cfg.Polymarket.IdleConnTimeout,
		},
	)

	a := analyzer.New(
		resolver.New(polyClient, resolver.WithObserver(m)),
		analyzer.Config{
			MaxMarkets:        cfg.Analysis.MaxMarkets,
			PreferOpenMarkets: cfg.Analysis.PreferOpenMarkets,
		},
		analyzer.WithRecorder(m),
	)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		minRisk, _ := models.ParseRiskLabel(cfg.Telegram.MinRisk)
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, minRisk, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		opts := []server.Option{server.WithMetricsHandler(m.Handler())}
		if telegramClient != nil {
			opts = append(opts, server.WithNotifier(telegramClient))
		}
		srv := server.New(cfg.Server, a, opts...)
		if err := srv.Run(ctx); err != nil {
			logger.Fatal("Server failed: %v", err)
		}
		logger.Info("Service stopped")
		return
	}

	raw := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if raw == "" {
		fmt.Fprintln(os.Stderr, "usage: steamroller [-config path] [-json] <event url | id | slug | search text>")
		os.Exit(2)
	}

	os.Exit(runOnce(ctx, a, telegramClient, raw))
}

// runOnce analyzes raw, prints the report and returns the process exit code.
func runOnce(ctx context.Context, a *analyzer.Analyzer, tg *telegram.Client, raw string) int {
	report, err := a.AnalyzeEvent(ctx, raw)
	if err != nil {
		var resErr *resolver.ResolutionError
		if errors.As(err, &resErr) {
			fmt.Fprintf(os.Stderr, "Could not resolve %q: %v\n", raw, resErr)
		} else {
			fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		}
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			return 1
		}
	} else {
		render(os.Stdout, report)
	}

	if tg != nil {
		if _, err := tg.SendVerdict(ctx, report); err != nil {
			logger.Warn("Failed to send Telegram notification: %v", err)
		}
	}
	return 0
}
