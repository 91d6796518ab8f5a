// Package main is the entry point for the valuation dashboard.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/valuation-dashboard/internal/api"
	"github.com/user/valuation-dashboard/internal/dashboard"
	"github.com/user/valuation-dashboard/internal/llm"
	"github.com/user/valuation-dashboard/internal/logger"
	"github.com/user/valuation-dashboard/pkg/config"
)

var (
	configPath string
	price      float64
	format     string
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "valuator",
		Short:         "Financial statement extraction and DCF valuation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [workbook.xlsx|export.csv]",
		Short: "Value a screener.in export and print the report",
		Args:  cobra.ExactArgs(1),
		RunE:  analyze,
	}
	analyzeCmd.Flags().Float64Var(&price, "price", 0, "Current price (default: Current Price from the Meta block)")
	analyzeCmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, html, json")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	rootCmd.AddCommand(serveCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger and engine shared by
// every command.
func setup() (*config.Config, *zap.Logger, *dashboard.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	provider, err := llm.NewProvider(&cfg.LLM)
	if err != nil {
		log.Warn("LLM provider unavailable, summaries disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		provider = nil
	} else if provider != nil {
		log.Info("LLM provider initialized", zap.String("provider", provider.Name()))
	}

	return cfg, log, dashboard.NewEngine(cfg, provider, log), nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, log, engine, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	server := api.NewServer(engine, cfg, log)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func analyze(cmd *cobra.Command, args []string) error {
	_, log, engine, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	inputPath := args[0]
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", inputPath, err)
	}
	defer f.Close()

	uploaded, err := engine.Upload(filepath.Base(inputPath), f)
	if err != nil {
		return err
	}

	var pricePtr *float64
	if cmd.Flags().Changed("price") {
		pricePtr = &price
	}

	var out []byte
	switch format {
	case "json":
		in, err := engine.Evaluate(uploaded.Session.ID, pricePtr)
		if err != nil {
			return err
		}
		out, err = json.MarshalIndent(in, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	case "markdown", "md", "html":
		rendered, err := engine.Report(uploaded.Session.ID, pricePtr, format)
		if err != nil {
			return err
		}
		out = []byte(rendered)
	default:
		return fmt.Errorf("invalid format: %s (must be markdown, html, or json)", format)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(out))
	return nil
}
