package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/calendar"
	"github.com/teemow/ewsfreebusy/internal/config"
)

func newTimezoneCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "timezone [name]",
		Short: "Show how a timezone is described to the service",
		Long: `Resolve the UTC offset and daylight saving state of an IANA timezone and
print the transition rules sent with availability requests. Without a name
the configured timezone is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone := ""
			if len(args) == 1 {
				zone = args[0]
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				zone = cfg.TimeZone
			}

			ref := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
				ref = parsed
			}

			rule, err := availability.ResolveTimezone(zone, ref)
			if err != nil {
				return err
			}

			text, err := calendar.FormatTimezone(zone, rule, ref)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Reference time in RFC3339 format (default: now)")
	return cmd
}
