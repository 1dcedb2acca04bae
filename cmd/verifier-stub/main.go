package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pendergraft/contraverify/internal/config"
	"github.com/pendergraft/contraverify/internal/observability/metrics"
	"github.com/pendergraft/contraverify/internal/server"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "verifier-stub",
		Short: "Local stand-in for the Walnut and Voyager verification APIs",
		Long: `verifier-stub serves POST /v1/{sn_main,sn_sepolia}/verify with the same
request and response contract as the hosted verification services. Point
contraverify at it with WALNUT_API_URL or VOYAGER_API_URL.`,
		Version: version,
	}

	// Default behavior (no subcommand) is to serve
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSubmissionsCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newSubmissionsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "List submissions received by a running stub",
		Long: `List the verification requests a running stub has accepted.

EXAMPLES:
  verifier-stub submissions
  verifier-stub submissions --addr http://127.0.0.1:9000
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmissions(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "stub base URL (default from HOST and PORT)")

	return cmd
}

func runSubmissions(cmd *cobra.Command, addr string) error {
	if addr == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		addr = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	resp, err := http.Get(addr + "/v1/submissions")
	if err != nil {
		return fmt.Errorf("fetching submissions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching submissions: HTTP %d", resp.StatusCode)
	}

	var body struct {
		Submissions []server.Submission `json:"submissions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding submissions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(body.Submissions) == 0 {
		fmt.Fprintln(out, "No submissions received")
		return nil
	}
	for _, s := range body.Submissions {
		var identity string
		switch {
		case s.ContractAddress != nil:
			identity = "contract_address=" + *s.ContractAddress
		case s.ClassHash != nil:
			identity = "class_hash=" + *s.ClassHash
		}
		fmt.Fprintf(out, "%s  %-10s  %-20s  %s  files=%d\n",
			s.ReceivedAt.Format(time.RFC3339), s.Network, s.ClassName, identity, len(s.Files))
	}
	return nil
}

// Server command

func runServe() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The stub reports each request at info level unless told otherwise
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logging.Level = "info"
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("starting verifier-stub", "version", version)

	metrics.Init(cfg.Metrics.Enabled)

	// Create server
	srv := server.New(cfg, logger)

	// Create HTTP server with configurable timeouts
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "reject_mode", cfg.Server.RejectMessage != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped", "submissions", len(srv.Submissions()))
	return nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
