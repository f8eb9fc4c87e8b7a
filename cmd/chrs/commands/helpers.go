package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fnndsc/cube-client/pkg/cube"
	"github.com/fnndsc/cube-client/pkg/cubeclient"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"

	defaultJSONIndent = 2
)

// Common static errors used throughout the commands package.
var (
	ErrAddressRequired  = errors.New("CUBE address is required (use --address or chrs config set address)")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrFeedIDRequired   = errors.New("feed ID is required")
	ErrPluginRequired   = errors.New("plugin is required (use --plugin name or --plugin name@version)")
	ErrNothingToUpload  = errors.New("no files to upload")
	ErrLoginRequired    = errors.New("not logged in (run chrs login)")
)

// newClient builds a connected client from the CLI configuration. Commands
// that only read public data work without a token.
func newClient(ctx context.Context) (cube.Client, error) {
	config := loadConfig()
	if config.Address == "" {
		return nil, ErrAddressRequired
	}

	return cubeclient.New(ctx, &cube.Config{
		Address:  config.Address,
		Username: config.Username,
		Token:    config.Token,
		Debug:    viper.GetBool("verbose"),
	})
}

func outputFormat() string {
	format := viper.GetString("output")
	if format == "" {
		format = OutputFormatTable
	}

	return format
}

// renderObject prints a single object in the requested format. Table output
// falls back to YAML, which reads well for one item.
func renderObject(obj any, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(obj)
	default:
		data, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}

		fmt.Print(string(data))

		return nil
	}
}

// renderRows prints tabular results in the requested format.
func renderRows(header []string, rows [][]string, raw any) error {
	switch outputFormat() {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(raw)
	case OutputFormatYAML:
		data, err := yaml.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}

		fmt.Print(string(data))

		return nil
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header(header)

		for _, row := range rows {
			_ = table.Append(row)
		}

		_ = table.Render()

		return nil
	}
}
