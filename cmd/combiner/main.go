package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/adcombiner/internal/config"
	"github.com/JonMunkholm/adcombiner/internal/core"
	"github.com/JonMunkholm/adcombiner/internal/logging"
	"github.com/JonMunkholm/adcombiner/internal/report"
	"github.com/JonMunkholm/adcombiner/internal/schema"
	"github.com/JonMunkholm/adcombiner/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists (Overload overwrites existing env vars)
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "env_file", envLoaded, "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	names, err := core.ListInputFiles(cfg.Input.Dir, cfg.Input.IncludeHidden)
	if err != nil {
		slog.Error("failed to list input files", "dir", cfg.Input.Dir, "error", err)
		return 1
	}

	pipeline := core.NewPipeline(
		schema.AdCampaigns,
		core.DirSource{Dir: cfg.Input.Dir},
		cfg.Output.Path,
		cfg.Input.MaxFileSize,
	)

	res, err := pipeline.Run(ctx, names)
	ctx = logging.WithRunID(ctx, res.RunID.String())
	report.LogDiagnostics(ctx, res.Diagnostics)

	if cfg.Output.ReportPath != "" {
		if rerr := report.WriteYAML(cfg.Output.ReportPath, report.New(res)); rerr != nil {
			logging.FromContext(ctx).Error("failed to write report", "path", cfg.Output.ReportPath, "error", rerr)
		}
	}

	if err != nil {
		logging.FromContext(ctx).Error("run failed", "error", err)
		return 1
	}

	if !res.Written {
		logging.FromContext(ctx).Info("nothing processed - please make sure that properly formatted CSVs are in the input directory",
			"dir", cfg.Input.Dir)
		return 0
	}

	if cfg.Database.Enabled() {
		if err := loadDatabase(ctx, cfg.Database, res); err != nil {
			logging.FromContext(ctx).Error("database load failed", "error", err)
			return 1
		}
	}

	return 0
}

func loadDatabase(ctx context.Context, cfg config.DatabaseConfig, res *core.RunResult) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	pool, err := store.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := store.NewLoader(pool, cfg.Table, schema.AdCampaigns)
	_, err = loader.Load(ctx, res.RunID, res.Table)
	return err
}
