package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/ewsfreebusy/internal/calendar"
	"github.com/teemow/ewsfreebusy/internal/config"
	"github.com/teemow/ewsfreebusy/internal/ews"
	"github.com/teemow/ewsfreebusy/internal/instrumentation"
	"github.com/teemow/ewsfreebusy/internal/logging"
)

func newQueryCmd() *cobra.Command {
	var (
		window   windowFlags
		format   string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up free/busy availability on the configured EWS endpoint",
		Long: `Send a GetUserAvailability request to the configured EWS endpoint and
print the decoded availability.

The endpoint and access token are read from EWSFREEBUSY_ENDPOINT and
EWSFREEBUSY_TOKEN or from the env file. With --slots the free time slots of
the given length are listed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			svc, err := newEWSService(cfg, "query", nil, instrumentation.DefaultConfig().AuditLogging)
			if err != nil {
				return err
			}
			return runQuery(ctx, cmd, svc, cfg, window, format, duration)
		},
	}

	window.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json or ics")
	cmd.Flags().IntVar(&duration, "slots", 0, "List free slots of this many minutes instead of the availability")
	return cmd
}

func runQuery(ctx context.Context, cmd *cobra.Command, svc *ews.Service, cfg config.Runtime, window windowFlags, format string, duration int) error {
	now := time.Now()
	params, err := window.params(cfg, now)
	if err != nil {
		return err
	}

	result, err := svc.GetUserAvailability(ctx, params)
	if err != nil {
		if ews.IsUnauthorized(err) {
			return fmt.Errorf("%w (check EWSFREEBUSY_TOKEN)", err)
		}
		return err
	}

	if duration > 0 {
		loc, err := time.LoadLocation(result.Params.TimeZone)
		if err != nil {
			return fmt.Errorf("failed to load timezone %q: %w", result.Params.TimeZone, err)
		}

		interval := time.Duration(result.Params.MergeIntervalMinutes) * time.Minute
		ranges := calendar.StatusRanges(result.Params.Start, interval, result.Statuses)
		busy := calendar.BusyRanges(ranges, cfg.IncludeTentative)
		busy = append(busy, calendar.EventRanges(result.Items, loc, cfg.IncludeTentative)...)

		slots, err := calendar.FindAvailableSlots(busy, time.Duration(duration)*time.Minute, 0, result.Params.Start, result.Params.End)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), calendar.FormatSlots(slots))
		return err
	}

	return writeResult(cmd.OutOrStdout(), format, result.Params, result.Statuses, result.Items, now)
}

// newEWSService builds the service for the configured endpoint.
func newEWSService(cfg config.Runtime, source string, metrics *instrumentation.Metrics, audit instrumentation.AuditLoggingConfig) (*ews.Service, error) {
	if err := cfg.RequireEndpoint(); err != nil {
		return nil, err
	}

	opts := []ews.HTTPOption{
		ews.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		ews.WithLogger(logging.NewSlogAdapter(slog.Default())),
		ews.WithUserAgent("ewsfreebusy/" + version),
	}
	if cfg.Token != "" {
		opts = append(opts, ews.WithBearerToken(cfg.Token))
	}

	transport, err := ews.NewHTTPTransport(cfg.Endpoint, opts...)
	if err != nil {
		return nil, err
	}

	return ews.NewService(transport,
		ews.WithMetrics(metrics),
		ews.WithServiceLogger(slog.Default()),
		ews.WithAuditLogger(instrumentation.NewAuditLogger(nil, audit)),
		ews.WithSource(source),
	), nil
}
