package commands

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command group.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List CUBE resources",
	}

	cmd.AddCommand(newListFeedsCommand())

	return cmd
}

func newListFeedsCommand() *cobra.Command {
	var public bool

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List feeds",
		Long:  "List your feeds, or public feeds with --public",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			builder := client.Feeds()
			if public {
				builder = client.PublicFeeds()
			}

			return printFeeds(cmd.Context(), builder.Search())
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "list public feeds")

	return cmd
}
