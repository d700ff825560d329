package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/config"
)

func newDecodeCmd() *cobra.Command {
	var (
		window windowFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a GetUserAvailability response document",
		Long: `Decode a saved GetUserAvailability response and print the merged
free/busy status and calendar events. The response is read from file, or from
stdin when no file is given.

The window flags must describe the request that produced the response: the
status slots are laid out from --start in steps of --interval.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			now := time.Now()
			params, err := window.params(cfg, now)
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			result, err := availability.NewDecoder(availability.DefaultRegistry()).Decode(data)
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), format, params, result.Statuses, result.Items, now)
		},
	}

	window.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json or ics")
	return cmd
}
