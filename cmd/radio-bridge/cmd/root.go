package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/radio-bridge/internal/config"
	"github.com/oshokin/radio-bridge/internal/logger"
	"github.com/oshokin/radio-bridge/internal/service/bridge"
	"github.com/oshokin/radio-bridge/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serial overrides the configured handset serial.
	serial string
	// logLevel is the minimum level of emitted log entries.
	logLevel string

	// rootCmd represents the base command for running the bridge daemon.
	rootCmd = &cobra.Command{
		Use:   "radio-bridge [listen-address]",
		Short: "Expose the telephony state of an Android handset over gRPC.",
		Long: `Starts the method channel gRPC server in front of an Android handset attached over adb.

Clients read radio and performance information, manage optimization toggles,
run stability monitoring sessions and open the hidden testing menu.
Only the port from server_addr config is used for listening (e.g., :50051).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:50051).
Optimization toggles are persisted to a JSON file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return bridge.Run(ctx, &bridge.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				Serial:        serial,
			})
		},
	}
)

// Execute runs the radio-bridge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serial, "serial", "s", "", "serial number of the handset, overrides the configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}
