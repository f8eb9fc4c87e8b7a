package cube

import "sync"

// TransferEventType discriminates transfer progress events.
type TransferEventType int

// Transfer event types.
const (
	// TransferStart announces a new transfer with its name and total size.
	TransferStart TransferEventType = iota

	// TransferChunk reports Delta additional bytes moved.
	TransferChunk

	// TransferDone marks a transfer finished.
	TransferDone
)

// TransferEvent is one progress notification from a running transfer.
// Events for a given transfer are identified by ID and arrive in order:
// one Start, zero or more Chunks, one Done. Events from concurrent
// transfers interleave freely.
type TransferEvent struct {
	Type  TransferEventType
	ID    int
	Name  string
	Size  int64
	Delta int64
}

// ProgressRenderer receives aggregate transfer state. Implementations draw
// progress bars, write logs, or ignore everything. Calls are serialized.
type ProgressRenderer interface {
	// TransferStarted is called when a transfer's Start event arrives.
	// Small transfers, below the aggregator's size threshold, are
	// reported with sized=false so renderers can skip per-byte bars.
	TransferStarted(id int, name string, size int64, sized bool)

	// Progress is called after every event with the current totals.
	Progress(bytesDone, bytesTotal int64, filesDone, filesTotal int)

	// TransferFinished is called when a transfer's Done event arrives.
	TransferFinished(id int, name string)
}

// NopRenderer ignores all progress.
type NopRenderer struct{}

// TransferStarted implements ProgressRenderer.
func (NopRenderer) TransferStarted(int, string, int64, bool) {}

// Progress implements ProgressRenderer.
func (NopRenderer) Progress(int64, int64, int, int) {}

// TransferFinished implements ProgressRenderer.
func (NopRenderer) TransferFinished(int, string) {}

type transferState struct {
	name  string
	size  int64
	done  int64
	sized bool
}

// TransferProgress aggregates events from concurrent transfers into
// overall totals. Transfers whose size is below SizeThreshold still count
// toward file totals but are flagged unsized to the renderer.
type TransferProgress struct {
	// SizeThreshold separates transfers worth a byte-level bar from
	// small ones. Zero means every transfer is sized.
	SizeThreshold int64

	// FilesTotal, when known up front, is reported to the renderer.
	// Otherwise the count grows as Start events arrive.
	FilesTotal int

	// Renderer receives aggregate state. Nil means NopRenderer.
	Renderer ProgressRenderer

	mu         sync.Mutex
	transfers  map[int]*transferState
	bytesDone  int64
	bytesTotal int64
	filesDone  int
	filesSeen  int
}

func (p *TransferProgress) renderer() ProgressRenderer {
	if p.Renderer == nil {
		return NopRenderer{}
	}

	return p.Renderer
}

func (p *TransferProgress) filesTotal() int {
	if p.FilesTotal > p.filesSeen {
		return p.FilesTotal
	}

	return p.filesSeen
}

// Handle applies one event to the aggregate state and notifies the
// renderer. Safe for concurrent use, though events for a single transfer
// must arrive in order.
func (p *TransferProgress) Handle(ev TransferEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.transfers == nil {
		p.transfers = make(map[int]*transferState)
	}

	r := p.renderer()

	switch ev.Type {
	case TransferStart:
		st := &transferState{
			name:  ev.Name,
			size:  ev.Size,
			sized: p.SizeThreshold == 0 || ev.Size >= p.SizeThreshold,
		}
		p.transfers[ev.ID] = st
		p.filesSeen++
		p.bytesTotal += ev.Size

		r.TransferStarted(ev.ID, ev.Name, ev.Size, st.sized)
	case TransferChunk:
		if st, ok := p.transfers[ev.ID]; ok {
			st.done += ev.Delta
			p.bytesDone += ev.Delta
		}
	case TransferDone:
		if st, ok := p.transfers[ev.ID]; ok {
			// Account for any bytes the transfer never reported.
			if st.done < st.size {
				p.bytesDone += st.size - st.done
				st.done = st.size
			}

			p.filesDone++

			r.TransferFinished(ev.ID, st.name)
		}
	}

	r.Progress(p.bytesDone, p.bytesTotal, p.filesDone, p.filesTotal())
}

// Run drains an event channel until it is closed. Typically launched in
// its own goroutine alongside an Executor feeding the channel.
func (p *TransferProgress) Run(events <-chan TransferEvent) {
	for ev := range events {
		p.Handle(ev)
	}
}

// BytesDone reports total bytes moved so far.
func (p *TransferProgress) BytesDone() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.bytesDone
}

// BytesTotal reports the combined size of all announced transfers.
func (p *TransferProgress) BytesTotal() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.bytesTotal
}

// FilesDone reports the number of finished transfers.
func (p *TransferProgress) FilesDone() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.filesDone
}
