package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/categories"
	pkgconfig "github.com/Chinedu-E/mlb-odds/internal/pkg/config"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/export"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/health"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/logging"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
	"github.com/Chinedu-E/mlb-odds/internal/scraper"
	"github.com/Chinedu-E/mlb-odds/internal/scraper/draftkings"
)

const (
	defaultConfigPath = "configs/production.yaml"
	serviceName       = "odds-service"
)

type config struct {
	configPath      string
	runFor          time.Duration
	intervalMinutes int
	sequential      bool
	saveCSV         bool
	once            bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("Odds service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables or flags")
	}

	cfg := parseFlags()

	slog.Info("Loading config", "path", cfg.configPath)
	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(appConfig, cfg)
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, cleanup := logging.Setup(&appConfig.Logging, serviceName)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("Failed to close log file", "error", err)
		}
	}()

	slog.Info("Starting odds service",
		"mode", appConfig.Scraper.Mode,
		"interval", appConfig.Scraper.Interval,
		"categories", appConfig.Scraper.Categories,
		"save_csv", appConfig.Export.SaveCSV)

	cats, err := parseCategories(appConfig.Scraper.Categories)
	if err != nil {
		return err
	}
	jobs, err := scraper.PlanJobs(cats)
	if err != nil {
		return err
	}
	slog.Info("Planned collection jobs", "jobs", len(jobs))

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	browser := draftkings.NewBrowser(draftkings.BrowserOptions{
		UserAgent:    appConfig.Scraper.UserAgent,
		FetchTimeout: appConfig.Scraper.FetchTimeout.Std(),
		Headless:     appConfig.Browser.Headless,
		NoSandbox:    appConfig.Browser.NoSandbox,
	})
	if err := browser.Start(ctx); err != nil {
		return fmt.Errorf("failed to start rendering engine: %w", err)
	}
	defer browser.Stop()

	collector, err := scraper.NewCollector(scraper.Options{
		Fetcher: browser,
		Parser:  draftkings.NewOddsParser(),
		BuildURL: func(j models.FetchJob) string {
			return draftkings.BuildURL(appConfig.Scraper.BaseURL, j.Category, j.Subcategory)
		},
		Jobs:        jobs,
		Sequential:  appConfig.Scraper.Mode == pkgconfig.ModeSequential,
		MaxWorkers:  appConfig.Scraper.MaxSessions,
		PassTimeout: appConfig.Scraper.PassTimeout.Std(),
	})
	if err != nil {
		return err
	}

	sinks := []interfaces.Sink{export.NewConsoleSink()}
	if appConfig.Export.SaveCSV {
		sinks = append(sinks, export.NewCSVSink(appConfig.Export.OutputDir))
	}

	sched, err := scraper.NewScheduler(scraper.SchedulerOptions{
		Runner:   collector,
		Interval: appConfig.Scraper.Interval.Std(),
		Sinks:    sinks,
	})
	if err != nil {
		return err
	}

	if appConfig.Health.Port > 0 {
		addr := health.AddrFor(appConfig.Health.Port)
		if err := health.Run(ctx, addr, serviceName, sched, appConfig.Health.ReadHeaderTimeout.Std()); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
	}

	if cfg.once {
		result := sched.RunOnce(ctx)
		slog.Info("Single pass complete", "records", len(result.Records), "failed", result.Failed)
		return nil
	}

	sched.Run(ctx)
	slog.Info("Odds service stopped gracefully")
	return nil
}

func parseFlags() config {
	var cfg config
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}
	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration. 0 = run until SIGINT/SIGTERM")
	flag.IntVar(&cfg.intervalMinutes, "interval", 0, "Minutes between collection passes. 0 = use config value")
	flag.BoolVar(&cfg.sequential, "sequential", false, "Collect markets one at a time instead of in parallel")
	flag.BoolVar(&cfg.saveCSV, "save-csv", false, "Write each pass to a timestamped CSV file")
	flag.BoolVar(&cfg.once, "once", false, "Run a single collection pass and exit")
	flag.Parse()
	return cfg
}

// applyOverrides lets flags tighten the file config: they can force
// sequential mode or persistence on, never off.
func applyOverrides(appConfig *pkgconfig.Config, cfg config) {
	if cfg.intervalMinutes > 0 {
		appConfig.Scraper.Interval = pkgconfig.Duration(time.Duration(cfg.intervalMinutes) * time.Minute)
	}
	if cfg.sequential {
		appConfig.Scraper.Mode = pkgconfig.ModeSequential
	}
	if cfg.saveCSV {
		appConfig.Export.SaveCSV = true
	}
}

func parseCategories(slugs []string) ([]categories.Category, error) {
	cats := make([]categories.Category, 0, len(slugs))
	for _, slug := range slugs {
		cat, err := categories.Parse(slug)
		if err != nil {
			return nil, fmt.Errorf("config category %q: %w", slug, err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			close(sigChan)
		}
	}()
}
