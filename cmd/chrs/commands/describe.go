package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDescribeCommand creates the describe command group.
func NewDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show details of a CUBE resource",
	}

	cmd.AddCommand(newDescribeFeedCommand())
	cmd.AddCommand(newDescribePluginCommand())
	cmd.AddCommand(newDescribePluginInstanceCommand())

	return cmd
}

func newDescribeFeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "feed <id>",
		Short: "Show a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", ErrFeedIDRequired, args[0])
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			feed, err := client.GetFeed(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("fetching feed %d: %w", id, err)
			}

			return renderObject(feed.Resource, outputFormat())
		},
	}
}

func newDescribePluginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plugin <id>",
		Short: "Show a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid plugin ID %q: %w", args[0], err)
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			plugin, err := client.GetPlugin(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("fetching plugin %d: %w", id, err)
			}

			return renderObject(plugin.Resource, outputFormat())
		},
	}
}

func newDescribePluginInstanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "plugininstance <id>",
		Aliases: []string{"pi"},
		Short:   "Show a plugin instance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid plugin instance ID %q: %w", args[0], err)
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			inst, err := client.GetPluginInstance(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("fetching plugin instance %d: %w", id, err)
			}

			return renderObject(inst.Resource, outputFormat())
		},
	}
}
