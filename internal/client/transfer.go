package client

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/fnndsc/cube-client/pkg/cube"
)

// chunkingReader reports read progress as TransferChunk events.
type chunkingReader struct {
	r      io.Reader
	id     int
	events chan<- cube.TransferEvent
}

func (cr *chunkingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 && cr.events != nil {
		cr.events <- cube.TransferEvent{Type: cube.TransferChunk, ID: cr.id, Delta: int64(n)}
	}

	return n, err
}

func emit(events chan<- cube.TransferEvent, ev cube.TransferEvent) {
	if events != nil {
		events <- ev
	}
}

// UploadFile stores r at the CUBE path uploadPath via the userfiles
// endpoint. Events tagged with id are emitted on the channel when non-nil;
// the Done event is only sent on success, so an aborted transfer never
// counts as finished.
func (c *Client) UploadFile(ctx context.Context, uploadPath string, r io.Reader, size int64, id int, events chan<- cube.TransferEvent) (*cube.FileResource, error) {
	if !c.access.CanWrite() {
		return nil, cube.ErrReadOnlyAccess
	}

	if c.links.Userfiles == "" {
		return nil, fmt.Errorf("%w: userfiles", cube.ErrMissingLink)
	}

	emit(events, cube.TransferEvent{
		Type: cube.TransferStart,
		ID:   id,
		Name: uploadPath,
		Size: size,
	})

	var file cube.FileResource

	reader := &chunkingReader{r: r, id: id, events: events}

	err := c.transport.PostUpload(ctx, c.links.Userfiles, uploadPath, path.Base(uploadPath), reader, &file)
	if err != nil {
		return nil, fmt.Errorf("uploading %q: %w", uploadPath, err)
	}

	emit(events, cube.TransferEvent{Type: cube.TransferDone, ID: id})

	return &file, nil
}

// DownloadFile streams the file's bytes into w. The declared Fsize is used
// for the Start event; the stream's Content-Length takes over when the
// declared size is unknown.
func (c *Client) DownloadFile(ctx context.Context, file *cube.FileResource, w io.Writer, id int, events chan<- cube.TransferEvent) error {
	body, contentLength, err := c.transport.GetStream(ctx, file.FileResourceURL)
	if err != nil {
		return fmt.Errorf("downloading %q: %w", file.Fname, err)
	}
	defer func() { _ = body.Close() }()

	size := file.Fsize
	if size == 0 && contentLength > 0 {
		size = contentLength
	}

	emit(events, cube.TransferEvent{
		Type: cube.TransferStart,
		ID:   id,
		Name: file.Fname,
		Size: size,
	})

	reader := &chunkingReader{r: body, id: id, events: events}

	_, err = io.Copy(w, reader)
	if err != nil {
		return fmt.Errorf("writing %q: %w", file.Fname, err)
	}

	emit(events, cube.TransferEvent{Type: cube.TransferDone, ID: id})

	return nil
}
