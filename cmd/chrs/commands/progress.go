package commands

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v2"

	"github.com/fnndsc/cube-client/pkg/cube"
)

// barRenderer draws one aggregate progress bar advancing per finished file,
// printing the names of large transfers as they start.
type barRenderer struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	quiet   bool
	lastTot int
}

func newBarRenderer(quiet bool) *barRenderer {
	return &barRenderer{quiet: quiet}
}

// TransferStarted implements cube.ProgressRenderer.
func (r *barRenderer) TransferStarted(_ int, name string, _ int64, sized bool) {
	if r.quiet || !sized {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(os.Stderr, "%s\n", name)
}

// Progress implements cube.ProgressRenderer.
func (r *barRenderer) Progress(_, _ int64, filesDone, filesTotal int) {
	if r.quiet {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil && filesTotal > 0 {
		r.bar = progressbar.New(filesTotal)
		r.lastTot = filesDone

		_ = r.bar.Add(filesDone)

		return
	}

	if r.bar != nil && filesDone > r.lastTot {
		_ = r.bar.Add(filesDone - r.lastTot)
		r.lastTot = filesDone
	}
}

// TransferFinished implements cube.ProgressRenderer.
func (r *barRenderer) TransferFinished(int, string) {}

func (r *barRenderer) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		_ = r.bar.Finish()

		fmt.Fprintln(os.Stderr)
	}
}

var _ cube.ProgressRenderer = (*barRenderer)(nil)
