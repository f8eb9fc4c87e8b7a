package http

import (
	"fmt"
	"io"
	"mime/multipart"
)

// multipartWriter builds the two-field form CUBE's userfiles endpoint
// accepts: "upload_path" names the destination, "fname" carries the bytes.
type multipartWriter struct {
	mw *multipart.Writer
}

func newMultipartWriter(w io.Writer) *multipartWriter {
	return &multipartWriter{mw: multipart.NewWriter(w)}
}

func (w *multipartWriter) contentType() string {
	return w.mw.FormDataContentType()
}

func (w *multipartWriter) writeUpload(uploadPath, name string, r io.Reader) error {
	err := w.mw.WriteField("upload_path", uploadPath)
	if err != nil {
		return fmt.Errorf("writing upload_path field: %w", err)
	}

	part, err := w.mw.CreateFormFile("fname", name)
	if err != nil {
		return fmt.Errorf("creating fname part: %w", err)
	}

	_, err = io.Copy(part, r)
	if err != nil {
		return fmt.Errorf("copying upload body: %w", err)
	}

	return w.mw.Close()
}
