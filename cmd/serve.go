package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ewsfreebusy/internal/config"
	"github.com/teemow/ewsfreebusy/internal/ews"
	"github.com/teemow/ewsfreebusy/internal/instrumentation"
	"github.com/teemow/ewsfreebusy/internal/resources"
	"github.com/teemow/ewsfreebusy/internal/server"
	"github.com/teemow/ewsfreebusy/internal/tools/availability_tools"
)

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var metricsConfig MetricsConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server over stdio to provide
free/busy lookups to AI assistants.

The EWS endpoint and access token are read from EWSFREEBUSY_ENDPOINT and
EWSFREEBUSY_TOKEN or from the env file. Without an endpoint the offline tools
(request building and timezone resolution) remain available.

With --metrics-enabled a separate HTTP server exposes Prometheus metrics and
health checks on --metrics-addr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "true" {
				metricsConfig.Enabled = true
			}
			return runServe(cmd.Context(), metricsConfig, cmd.Flags().Changed("metrics-addr"))
		},
	}

	cmd.Flags().BoolVar(&metricsConfig.Enabled, "metrics-enabled", false, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsConfig.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use EWSFREEBUSY_METRICS_ADDR env var.")

	return cmd
}

func runServe(ctx context.Context, metricsConfig MetricsConfig, addrFromFlag bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !addrFromFlag {
		metricsConfig.Addr = cfg.MetricsAddr
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	var svc *ews.Service
	if cfg.Endpoint != "" {
		svc, err = newEWSService(cfg, "mcp", provider.Metrics(), instrConfig.AuditLogging)
		if err != nil {
			return err
		}
	} else {
		slog.Warn("no EWS endpoint configured, only offline tools are usable")
	}

	serverContext := server.NewServerContext(shutdownCtx, cfg, svc, provider.Metrics())
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			slog.Warn("error during server context shutdown", "error", err)
		}
	}()

	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(metricsConfig, provider, server.NewHealthChecker(serverContext))
		if err != nil {
			return err
		}
		defer func() {
			stopCtx, stop := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer stop()
			if err := metricsServer.Shutdown(stopCtx); err != nil {
				slog.Warn("error during metrics server shutdown", "error", err)
			}
		}()
	}

	// Note: mcp.Implementation has Title field but WithTitle() ServerOption not available in v0.43.0
	mcpSrv := mcpserver.NewMCPServer("ewsfreebusy", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := availability_tools.RegisterAvailabilityTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register availability tools: %w", err)
	}
	if err := resources.RegisterResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	return runStdioServer(shutdownCtx, mcpSrv)
}

func startMetricsServer(metricsConfig MetricsConfig, provider *instrumentation.Provider, health *server.HealthChecker) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
		HealthChecker:           health,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}

	// the ready signal also fires when binding fails
	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(50 * time.Millisecond):
	}

	slog.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	case <-ctx.Done():
	}
	return nil
}
