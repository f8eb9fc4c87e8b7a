package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/fnndsc/cube-client/internal/constants"
	"github.com/fnndsc/cube-client/pkg/cube"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	var (
		destDir     string
		concurrency int
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file|dir>...",
		Short: "Upload files to CUBE",
		Long: `Upload local files or directories to your CUBE storage.

Files land under <username>/uploads/<dir>/. Transfers run concurrently;
failures are reported at the end without aborting the other transfers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context())
			if err != nil {
				return err
			}

			if client.Username() == "" {
				return ErrLoginRequired
			}

			files, err := collectLocalFiles(args)
			if err != nil {
				return err
			}

			if len(files) == 0 {
				return ErrNothingToUpload
			}

			prefix := client.Username() + "/uploads"
			if destDir != "" {
				prefix += "/" + strings.Trim(destDir, "/")
			}

			return runTransfers(cmd.Context(), transferPlan{
				concurrency: concurrency,
				quiet:       quiet,
				total:       len(files),
				tasks:       uploadTasks(client, files, prefix),
			})
		},
	}

	cmd.Flags().StringVar(&destDir, "dir", "", "destination directory under uploads/")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultTransferConcurrency, "concurrent transfers")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress output")

	return cmd
}

type localFile struct {
	path string
	rel  string
	size int64
}

// collectLocalFiles expands the arguments, walking directories.
func collectLocalFiles(args []string) ([]localFile, error) {
	var files []localFile

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, localFile{path: arg, rel: filepath.Base(arg), size: info.Size()})

			continue
		}

		base := filepath.Base(filepath.Clean(arg))

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}

			files = append(files, localFile{
				path: path,
				rel:  filepath.ToSlash(filepath.Join(base, rel)),
				size: info.Size(),
			})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %q: %w", arg, err)
		}
	}

	return files, nil
}

// transferPlan is what runTransfers needs: a task builder which closes over
// the shared event channel, plus sizing for the declared-count check.
type transferPlan struct {
	concurrency int
	quiet       bool
	total       int
	tasks       func(events chan<- cube.TransferEvent) cube.TaskSource
}

// runTransfers wires the executor, the progress aggregator, and the
// renderer together, and reports per-file failures after the run.
func runTransfers(ctx context.Context, plan transferPlan) error {
	events := make(chan cube.TransferEvent, constants.TransferEventBuffer)
	renderer := newBarRenderer(plan.quiet)

	progress := &cube.TransferProgress{
		SizeThreshold: constants.ProgressSizeThreshold,
		FilesTotal:    plan.total,
		Renderer:      renderer,
	}

	var aggregatorDone sync.WaitGroup

	aggregatorDone.Add(1)

	go func() {
		defer aggregatorDone.Done()
		progress.Run(events)
	}()

	var failures []error

	executor := &cube.Executor{
		Concurrency: plan.concurrency,
		Declared:    plan.total,
		OnResult: func(res cube.TaskResult) error {
			if res.Err != nil {
				failures = append(failures, res.Err)
			}

			return nil
		},
	}

	runErr := executor.Run(ctx, plan.tasks(events))

	close(events)
	aggregatorDone.Wait()
	renderer.finish()

	if runErr != nil {
		return runErr
	}

	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "error: %v\n", failure)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d transfers failed: %w", len(failures), plan.total, failures[0])
	}

	fmt.Fprintf(os.Stderr, "Transferred %d files\n", plan.total)

	return nil
}

func uploadTasks(client cube.Client, files []localFile, prefix string) func(chan<- cube.TransferEvent) cube.TaskSource {
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
				f, err := os.Open(file.path)
				if err != nil {
					return fmt.Errorf("opening %q: %w", file.path, err)
				}
				defer func() { _ = f.Close() }()

				uploadPath := prefix + "/" + file.rel

				_, err = client.UploadFile(ctx, uploadPath, f, file.size, id, events)

				return err
			}, true, nil
		})
	}
}
