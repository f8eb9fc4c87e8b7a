package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fnndsc/cube-client/internal/constants"
	"github.com/fnndsc/cube-client/pkg/cube"
)

// NewDownloadCommand creates the download command.
func NewDownloadCommand() *cobra.Command {
	var (
		concurrency int
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "download <cube-path> [dest-dir]",
		Short: "Download files from CUBE",
		Long: `Download every file under a CUBE path to a local directory.

The CUBE path is matched as a prefix, so downloading a directory fetches
its whole subtree. Local paths mirror the CUBE paths relative to the
given prefix.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cubePath := strings.Trim(args[0], "/")

			destDir := "."
			if len(args) > 1 {
				destDir = args[1]
			}

			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			files, err := client.Files().Fname(cubePath).Search().Stream(cmd.Context()).All()
			if err != nil {
				return fmt.Errorf("listing files under %q: %w", cubePath, err)
			}

			if len(files) == 0 {
				fmt.Printf("No files found under %q\n", cubePath)

				return nil
			}

			return runTransfers(cmd.Context(), transferPlan{
				concurrency: concurrency,
				quiet:       quiet,
				total:       len(files),
				tasks:       downloadTasks(client, files, cubePath, destDir),
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultTransferConcurrency, "concurrent transfers")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress output")

	return cmd
}

// localPathFor maps a CUBE path onto the destination directory, stripping
// the common prefix so the subtree is mirrored rather than the full path.
func localPathFor(fname, cubePath, destDir string) string {
	rel := strings.TrimPrefix(fname, cubePath)
	rel = strings.TrimPrefix(rel, "/")

	if rel == "" {
		rel = filepath.Base(fname)
	}

	return filepath.Join(destDir, filepath.FromSlash(rel))
}

func downloadTasks(client cube.Client, files []cube.FileResource, cubePath, destDir string) func(chan<- cube.TransferEvent) cube.TaskSource {
	return func(events chan<- cube.TransferEvent) cube.TaskSource {
		i := 0

		return cube.TaskSourceFunc(func(_ context.Context) (cube.Task, bool, error) {
			if i >= len(files) {
				return nil, false, nil
			}

			file := files[i]
			id := i
			i++

			return func(ctx context.Context) error {
				target := localPathFor(file.Fname, cubePath, destDir)

				err := os.MkdirAll(filepath.Dir(target), constants.DownloadDirPerm)
				if err != nil {
					return fmt.Errorf("creating %q: %w", filepath.Dir(target), err)
				}

				out, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("creating %q: %w", target, err)
				}

				err = client.DownloadFile(ctx, &file, out, id, events)
				if closeErr := out.Close(); err == nil {
					err = closeErr
				}

				return err
			}, true, nil
		})
	}
}
