// Command lcverify serves the documentary credit discrepancy engine over HTTP
// and runs one-off analyses from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tradedocs/lcverify/internal/api"
	"github.com/tradedocs/lcverify/internal/config"
	"github.com/tradedocs/lcverify/internal/ingestion"
	"github.com/tradedocs/lcverify/internal/logger"
	"github.com/tradedocs/lcverify/internal/metrics"
	"github.com/tradedocs/lcverify/internal/reconciliation"
	"github.com/tradedocs/lcverify/internal/repository"
	"github.com/tradedocs/lcverify/internal/rules"
)

const (
	Version = "0.1.0"
	appName = "lcverify"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Documentary credit discrepancy engine",
		Long: `lcverify extracts fields from a credit message and its presented
documents, checks them against UCP 600 and reports discrepancies.

Without a subcommand it starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), loadConfig(envFile))
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this .env file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), loadConfig(envFile))
			},
		},
		analyzeCmd(&envFile),
		rulesCmd(&envFile),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func loadConfig(envFile string) *config.Config {
	if envFile == "" {
		return config.Load()
	}
	return config.Load(envFile)
}

func extractionOptions(cfg *config.Config) ingestion.Options {
	return ingestion.Options{
		Timeout:     cfg.ExtractionTimeout,
		Concurrency: cfg.ExtractionConcurrency,
		CacheTTL:    cfg.ExtractionCacheTTL,
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.LogLevel)

	rs, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	log.WithField("path", cfg.DBPath).Info("initializing database")
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Create repositories.
	docRepo := repository.NewDocumentRepo(db)
	discRepo := repository.NewDiscrepancyRepo(db)
	reportRepo := repository.NewReportRepo(db)

	// Create services.
	extractor := ingestion.NewService(rs, nil, extractionOptions(cfg), log, m)
	svc := reconciliation.NewService(docRepo, discRepo, reportRepo, extractor, reconciliation.NewEngine(rs), log, m)

	count, err := docRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		log.Info("database is empty, seeding sample document set")
		if err := seedSampleSet(ctx, svc, cfg.SampleDir, log); err != nil {
			log.WithError(err).Warn("failed to seed sample set")
		}
	} else {
		log.WithField("documents", count).Info("database already populated, skipping seed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(svc, discRepo, reg, cfg.MaxUploadBytes, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"addr":          srv.Addr,
		"rules_version": rs.Version(),
	}).Infof("listening on http://localhost:%s/api/v1", cfg.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
