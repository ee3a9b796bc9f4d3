package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/radio-bridge/internal/config"
	"github.com/oshokin/radio-bridge/internal/logger"
	"github.com/oshokin/radio-bridge/internal/service/common"
	"github.com/oshokin/radio-bridge/internal/version"
)

// rootOptions holds the persistent flags shared by every call.
type rootOptions struct {
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the configured bridge address.
	serverAddress string
}

// Execute runs the radio-bridgectl CLI and exits with non-zero status on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	err := newRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the base command; every call is a subcommand.
func newRootCommand() *cobra.Command {
	opts := new(rootOptions)

	rootCmd := &cobra.Command{
		Use:   "radio-bridgectl",
		Short: "Call a running radio-bridge daemon.",
		Long: `Sends method channel calls to a radio-bridge daemon and prints the results as JSON.

The bridge address is taken from --server or from server_addr in the configuration file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&opts.serverAddress, "server", "s", "", "bridge address, overrides the configuration")

	addCommands(rootCmd, opts)
	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

// withClient dials the bridge, runs fn and closes the connection.
func (o *rootOptions) withClient(ctx context.Context, fn func(ctx context.Context, client *common.Client) error) error {
	ctx = logger.WithName(ctx, "radio-bridgectl")

	address := o.serverAddress
	timeout := config.DefaultTimeout

	settings, err := config.Load(o.cfgPath)

	switch {
	case err == nil:
		timeout = settings.Timeout

		if address == "" {
			address = settings.ServerAddress
		}
	case address == "":
		return fmt.Errorf("load settings: %w", err)
	default:
		logger.DebugKV(ctx, "Using defaults, settings not loaded", "error", err)
	}

	options := []common.Option{common.WithCallTimeout(timeout)}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	} else {
		options = append(options, common.WithActor(actor))
	}

	client, err := common.Dial(ctx, address, options...)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close connection", "error", closeErr)
		}
	}()

	return fn(ctx, client)
}

// printJSON writes v as indented JSON in the wire representation.
func printJSON(w io.Writer, v any) error {
	value, err := structpb.NewValue(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
