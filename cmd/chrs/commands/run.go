package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fnndsc/cube-client/pkg/cube"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var (
		pluginSpec string
		previousID int
		title      string
		params     []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a plugin",
		Long: `Create a plugin instance, i.e. run a plugin remotely.

The plugin is named as name or name@version. Parameters are passed with
repeated -p key=value flags; values that parse as integers or booleans are
sent typed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pluginSpec == "" {
				return ErrPluginRequired
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			plugin, err := resolvePlugin(cmd.Context(), client, pluginSpec)
			if err != nil {
				return err
			}

			body := make(map[string]any)
			for _, p := range params {
				key, value, found := strings.Cut(p, "=")
				if !found {
					return fmt.Errorf("invalid parameter %q: expected key=value", p)
				}

				body[key] = coerceParam(value)
			}

			if previousID > 0 {
				body["previous_id"] = previousID
			}

			if title != "" {
				body["title"] = title
			}

			inst, err := client.CreatePluginInstance(cmd.Context(), plugin.Resource.ID, body)
			if err != nil {
				return err
			}

			fmt.Printf("Created plugin instance %d (%s)\n", inst.Resource.ID, inst.Resource.Status)

			return nil
		},
	}

	cmd.Flags().StringVar(&pluginSpec, "plugin", "", "plugin name or name@version")
	cmd.Flags().IntVar(&previousID, "previous", 0, "previous plugin instance ID")
	cmd.Flags().StringVar(&title, "title", "", "title for the new plugin instance")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "plugin parameter key=value (repeatable)")

	return cmd
}

// resolvePlugin finds a plugin by "name" or "name@version". Without a
// version, the most recent matching plugin wins.
func resolvePlugin(ctx context.Context, client cube.Client, spec string) (*cube.Linked[cube.Plugin], error) {
	name, version, _ := strings.Cut(spec, "@")

	builder := client.Plugins().NameExact(name)
	if version != "" {
		builder = builder.Version(version)
	}

	plugin, err := builder.Search().First(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving plugin %q: %w", spec, err)
	}

	if plugin == nil {
		return nil, fmt.Errorf("resolving plugin %q: %w", spec, cube.ErrEmptyCollection)
	}

	return plugin, nil
}

// coerceParam types flag values: integers and booleans are sent as JSON
// numbers and booleans, everything else as strings.
func coerceParam(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return value
}
