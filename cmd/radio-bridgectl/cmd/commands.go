package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	api "github.com/oshokin/radio-bridge/internal/api/grpc/channel"
	"github.com/oshokin/radio-bridge/internal/logger"
	"github.com/oshokin/radio-bridge/internal/service/common"
)

// addCommands registers every call as a subcommand of root.
func addCommands(root *cobra.Command, opts *rootOptions) {
	optimize := &cobra.Command{
		Use:   "optimize",
		Short: "Manage network optimization toggles.",
	}

	optimize.AddCommand(
		mapCommand(opts, "list", "Print every optimization toggle.", (*common.Client).Optimizations),
		ackCommand(opts, "all", "Turn every optimization toggle on.", (*common.Client).OptimizeAll),
		ackCommand(opts, "reset", "Turn every optimization toggle off.", (*common.Client).ResetOptimizations),
		&cobra.Command{
			Use:   "set <setting> <true|false>",
			Short: "Turn one optimization toggle on or off.",
			Args:  cobra.ExactArgs(2), //nolint:mnd // Setting and value.
			RunE: func(cmd *cobra.Command, args []string) error {
				enabled, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("parse value %q: %w", args[1], err)
				}

				return opts.withClient(cmd.Context(), func(ctx context.Context, client *common.Client) error {
					if err := client.ApplyOptimization(ctx, args[0], enabled); err != nil {
						return err
					}

					return printJSON(cmd.OutOrStdout(), true)
				})
			},
		},
	)

	stability := &cobra.Command{
		Use:   "stability",
		Short: "Run stability monitoring sessions.",
	}

	stability.AddCommand(
		mapCommand(opts, "metrics", "Print the stability summary of the current session.", (*common.Client).StabilityMetrics),
		ackCommand(opts, "enable", "Start a new stability session.", (*common.Client).EnableStabilityMode),
		ackCommand(opts, "disable", "End the stability session.", (*common.Client).DisableStabilityMode),
		&cobra.Command{
			Use:   "record <handover|signalDrop|reconnection|signalQuality> [value]",
			Short: "Report a stability event observed outside the bridge.",
			Args:  cobra.RangeArgs(1, 2), //nolint:mnd // Event and optional value.
			RunE: func(cmd *cobra.Command, args []string) error {
				var value float64

				if len(args) > 1 {
					parsed, err := strconv.ParseFloat(args[1], 64)
					if err != nil {
						return fmt.Errorf("parse value %q: %w", args[1], err)
					}

					value = parsed
				}

				return opts.withClient(cmd.Context(), func(ctx context.Context, client *common.Client) error {
					if err := client.RecordEvent(ctx, args[0], value); err != nil {
						return err
					}

					return printJSON(cmd.OutOrStdout(), true)
				})
			},
		},
	)

	root.AddCommand(
		mapCommand(opts, "info", "Print the radio information of the handset.", (*common.Client).RadioInfo),
		mapCommand(opts, "performance", "Print the performance data of the handset.", (*common.Client).PerformanceData),
		testingMenuCommand(opts),
		optimize,
		stability,
	)
}

// mapCommand builds a subcommand printing the map returned by call.
func mapCommand(
	opts *rootOptions,
	use, short string,
	call func(*common.Client, context.Context) (map[string]any, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd.Context(), func(ctx context.Context, client *common.Client) error {
				fields, err := call(client, ctx)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), fields)
			})
		},
	}
}

// ackCommand builds a subcommand for a call answering with true.
func ackCommand(
	opts *rootOptions,
	use, short string,
	call func(*common.Client, context.Context) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd.Context(), func(ctx context.Context, client *common.Client) error {
				if err := call(client, ctx); err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), true)
			})
		},
	}
}

// testingMenuCommand opens the testing menu and logs every failed route when none could be opened.
func testingMenuCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "testing-menu",
		Short: "Open the hidden testing menu on the handset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd.Context(), func(ctx context.Context, client *common.Client) error {
				err := client.OpenTestingMenu(ctx)
				if err != nil {
					for _, failure := range api.FailuresFromStatus(err) {
						logger.WarnKV(ctx, "Testing menu route failed",
							"candidate", failure.Candidate,
							"reason", failure.Reason.Error())
					}

					return err
				}

				return printJSON(cmd.OutOrStdout(), true)
			})
		},
	}
}
