package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/config"
)

func newRequestCmd() *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Print the GetUserAvailability request document",
		Long: `Build the SOAP request for a free/busy lookup and print it without
sending it. The timezone is resolved at the current instant.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			now := time.Now()
			params, err := window.params(cfg, now)
			if err != nil {
				return err
			}

			doc, _, err := availability.NewRequest(params, now)
			if err != nil {
				return err
			}

			body, err := doc.MarshalIndent()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}

	window.register(cmd)
	return cmd
}
