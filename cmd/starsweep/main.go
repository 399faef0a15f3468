package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	csvadapter "github.com/ericfisherdev/starsweep/internal/adapter/driven/csv"
	githubadapter "github.com/ericfisherdev/starsweep/internal/adapter/driven/github"
	"github.com/ericfisherdev/starsweep/internal/application"
	"github.com/ericfisherdev/starsweep/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing token, before any
	// network activity).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"query", cfg.Query,
		"max_repos", cfg.MaxRepos,
		"start_date", cfg.StartDate.Format("2006-01-02"),
		"out_path", cfg.OutPath,
		"request_timeout", cfg.RequestTimeout,
		"run_deadline", cfg.RunDeadline,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM), plus the optional
	// overall run deadline.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunDeadline)
		defer cancel()
	}

	// 3. Wire adapters and the collection service.
	ghClient := githubadapter.NewClient(cfg.GitHubToken, cfg.SearchInterval, cfg.RequestTimeout)
	collectSvc := application.NewCollectService(ghClient, cfg.Query, cfg.MaxRepos, cfg.StartDate)

	// 4. Collect. Rows gathered before an interruption are still written.
	rows, stats, collectErr := collectSvc.Collect(ctx)
	if collectErr != nil {
		slog.Warn("collection ended early", "error", collectErr, "rows", len(rows))
	}

	// 5. Hand the finished table to the CSV sink.
	out, err := os.Create(cfg.OutPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			slog.Error("error closing output file", "error", closeErr)
		}
	}()

	sink := csvadapter.NewSink(out)
	if err := sink.WriteAll(context.Background(), rows); err != nil {
		return err
	}

	slog.Info("output written",
		"path", cfg.OutPath,
		"rows", len(rows),
		"windows_truncated", stats.WindowsTruncated,
		"windows_aborted", stats.WindowsAborted,
	)
	return nil
}
