package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fnndsc/cube-client/pkg/cube"
)

// NewSearchCommand creates the search command group.
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search CUBE collections",
		Long:  "Search plugins, feeds, pipelines, and files with server-side filters",
	}

	cmd.AddCommand(newSearchPluginsCommand())
	cmd.AddCommand(newSearchFeedsCommand())
	cmd.AddCommand(newSearchPipelinesCommand())
	cmd.AddCommand(newSearchFilesCommand())

	return cmd
}

func newSearchPluginsCommand() *cobra.Command {
	var (
		name     string
		version  string
		term     string
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Search plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			builder := client.Plugins()
			if name != "" {
				builder = builder.Name(name)
			}

			if version != "" {
				builder = builder.Version(version)
			}

			if term != "" {
				builder = builder.NameTitleCategory(term)
			}

			if maxItems > 0 {
				builder = cube.PluginSearchBuilder{SearchBuilder: builder.MaxItems(maxItems)}
			}

			plugins, err := builder.Search().Stream(cmd.Context()).All()
			if err != nil {
				return fmt.Errorf("searching plugins: %w", err)
			}

			if len(plugins) == 0 {
				fmt.Println("No plugins found")

				return nil
			}

			rows := make([][]string, 0, len(plugins))
			for _, p := range plugins {
				rows = append(rows, []string{
					strconv.Itoa(p.ID), p.Name, p.Version, p.Title, p.Category,
				})
			}

			return renderRows([]string{"ID", "Name", "Version", "Title", "Category"}, rows, plugins)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name substring")
	cmd.Flags().StringVar(&version, "version", "", "filter by version")
	cmd.Flags().StringVar(&term, "term", "", "filter by name, title, or category")
	cmd.Flags().IntVar(&maxItems, "max", 0, "maximum number of results")

	return cmd
}

func newSearchFeedsCommand() *cobra.Command {
	var (
		name     string
		public   bool
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Search feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			builder := client.Feeds()
			if public {
				builder = client.PublicFeeds()
			}

			if name != "" {
				builder = builder.Name(name)
			}

			search := builder.Search()
			if maxItems > 0 {
				search = cube.FeedSearchBuilder{SearchBuilder: builder.MaxItems(maxItems)}.Search()
			}

			return printFeeds(cmd.Context(), search)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name substring")
	cmd.Flags().BoolVar(&public, "public", false, "search public feeds")
	cmd.Flags().IntVar(&maxItems, "max", 0, "maximum number of results")

	return cmd
}

func printFeeds(ctx context.Context, search *cube.Search[cube.Feed]) error {
	feeds, err := search.Stream(ctx).All()
	if err != nil {
		return fmt.Errorf("searching feeds: %w", err)
	}

	if len(feeds) == 0 {
		fmt.Println("No feeds found")

		return nil
	}

	rows := make([][]string, 0, len(feeds))
	for _, f := range feeds {
		public := "no"
		if f.Public {
			public = "yes"
		}

		rows = append(rows, []string{
			strconv.Itoa(f.ID), f.Name, f.CreatorUsername, public, f.CreationDate,
		})
	}

	return renderRows([]string{"ID", "Name", "Creator", "Public", "Created"}, rows, feeds)
}

func newSearchPipelinesCommand() *cobra.Command {
	var (
		name        string
		description string
		maxItems    int
	)

	cmd := &cobra.Command{
		Use:   "pipelines",
		Short: "Search pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			builder := client.Pipelines()
			if name != "" {
				builder = builder.Name(name)
			}

			if description != "" {
				builder = builder.Description(description)
			}

			if maxItems > 0 {
				builder = cube.PipelineSearchBuilder{SearchBuilder: builder.MaxItems(maxItems)}
			}

			pipelines, err := builder.Search().Stream(cmd.Context()).All()
			if err != nil {
				return fmt.Errorf("searching pipelines: %w", err)
			}

			if len(pipelines) == 0 {
				fmt.Println("No pipelines found")

				return nil
			}

			rows := make([][]string, 0, len(pipelines))
			for _, p := range pipelines {
				rows = append(rows, []string{
					strconv.Itoa(p.ID), p.Name, p.Category, p.OwnerUsername,
				})
			}

			return renderRows([]string{"ID", "Name", "Category", "Owner"}, rows, pipelines)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().StringVar(&description, "description", "", "filter by description")
	cmd.Flags().IntVar(&maxItems, "max", 0, "maximum number of results")

	return cmd
}

func newSearchFilesCommand() *cobra.Command {
	var (
		fname    string
		feedID   int
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "Search files",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			builder := client.Files()
			if fname != "" {
				builder = builder.Fname(fname)
			}

			if feedID > 0 {
				builder = builder.FeedID(feedID)
			}

			if maxItems > 0 {
				builder = cube.FileSearchBuilder{SearchBuilder: builder.MaxItems(maxItems)}
			}

			files, err := builder.Search().Stream(cmd.Context()).All()
			if err != nil {
				return fmt.Errorf("searching files: %w", err)
			}

			if len(files) == 0 {
				fmt.Println("No files found")

				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{
					strconv.Itoa(f.ID), f.Fname, strconv.FormatInt(f.Fsize, 10),
				})
			}

			return renderRows([]string{"ID", "Path", "Size"}, rows, files)
		},
	}

	cmd.Flags().StringVar(&fname, "fname", "", "filter by path prefix")
	cmd.Flags().IntVar(&feedID, "feed", 0, "filter by feed ID")
	cmd.Flags().IntVar(&maxItems, "max", 0, "maximum number of results")

	return cmd
}
