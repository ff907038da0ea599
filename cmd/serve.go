package cmd

import (
	"context"
	"fmt"

	"rug/internal/app"
	"rug/internal/config"
	"rug/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	serveDebug      bool
	serveNumWorkers int
	serveConfigPath string
	serveLogFormat  string
)

// serveCmd runs the relay until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the notification relay and bootstrap the router fleet.",
	Long: `Starts the scheduler and its worker pool, lists every router from the
network service in the background and queues a poll for each, then relays
notifications from the Kafka topic to the scheduler until interrupted.

SIGINT or SIGTERM stops the scheduler and exits cleanly. If the network
service rejects the configured credentials during startup the failure is
logged once and the relay keeps running without the initial polls.

Configuration is read from config.yaml in --config-path. Flags override
values from the file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	format := logging.FormatText
	switch serveLogFormat {
	case "text":
	case "json":
		format = logging.FormatJSON
	default:
		return fmt.Errorf("unsupported log format %q (use text or json)", serveLogFormat)
	}

	cfg := app.NewConfig(serveDebug, serveNumWorkers, serveConfigPath)
	cfg.LogFormat = format

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().IntVarP(&serveNumWorkers, "num-workers", "n", 0, "Number of scheduler workers (overrides numWorkers in config.yaml)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory containing config.yaml")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "text", "Log output format: text or json")
}
