package viewerpdf

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// PlacedPage is a page of an assembled document.
type PlacedPage struct {
	Index  int // page index in the capture, 1-based
	Width  int // in PDF units, equal to the raster's pixel width
	Height int
}

// Result holds an assembled PDF and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Result struct {
	data []byte

	// Pages lists the placed pages in document order.
	Pages []PlacedPage

	// Skipped lists the indices that had no usable page file.
	Skipped []int
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to path through a temporary file in the same
// directory, so an existing file is replaced only by a complete document.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	if err := writeFileAtomic(path, r.data); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// PageCount returns the number of pages in the document.
func (r *Result) PageCount() int {
	return len(r.Pages)
}
