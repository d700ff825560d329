package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/ewsfreebusy/internal/logging"
)

var debugMode bool

// rootCmd represents the base command for the ewsfreebusy application
var rootCmd = &cobra.Command{
	Use:   "ewsfreebusy",
	Short: "Query Exchange Web Services free/busy availability",
	Long: `ewsfreebusy builds GetUserAvailability requests for Exchange Web Services
and decodes the merged free/busy status and calendar events they return.

It can run as:
  - A CLI that builds, sends and decodes availability lookups
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, debugMode)))
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ewsfreebusy version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newRequestCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newTimezoneCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
