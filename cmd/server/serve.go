package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chronodoc/internal/config"
	"chronodoc/internal/handler"
	"chronodoc/internal/repository/sqlite"
	"chronodoc/internal/service"
)

var (
	flagConfig string
	flagListen string
	flagDB     string
	flagDev    bool
)

var rootCmd = &cobra.Command{
	Use:   "chronodoc",
	Short: "Bitemporal document master",
	Long: `chronodoc stores versioned, correctable tree-structured documents and
answers point-in-time queries on both the version and correction axes.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document master server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "config file path (default: auto-discover)")
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	serveCmd.Flags().BoolVar(&flagDev, "dev", false, "development logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if path != "" {
		logger.Info("config loaded", zap.String("path", path))
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	bus := service.NewEventBus()
	modifySvc := service.NewModifyService(store, bus, service.SystemClock(), cfg.IDs.Scheme, cfg.IDs.NodeScheme, logger)
	querySvc := service.NewQueryService(store, cfg.IDs.Scheme, cfg.IDs.NodeScheme, logger)

	mux := http.NewServeMux()
	docHandler := handler.NewDocumentHandler(modifySvc, querySvc, logger)
	docHandler.Register(mux)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadConfig() (*config.Config, string, error) {
	if flagConfig != "" {
		cfg, path, err := config.LoadFromPath(flagConfig)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cfg, path, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func buildLogger() (*zap.Logger, error) {
	if flagDev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
