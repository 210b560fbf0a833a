package viewerpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed browser.
	ErrClosed = errors.New("viewerpdf: browser is closed")

	// ErrNoNextPage is returned by a PageSource when the viewer offers no
	// way to advance to the next page.
	ErrNoNextPage = errors.New("viewerpdf: next-page control not found")

	// ErrNoCandidates means the current page exposed no renderable element.
	ErrNoCandidates = errors.New("viewerpdf: no candidate elements on page")

	// ErrEmptyBuffer means a candidate's bytes were fetched but empty.
	ErrEmptyBuffer = errors.New("viewerpdf: empty image buffer")

	// ErrNoPages is returned by the assembler when not a single page file
	// could be placed.
	ErrNoPages = errors.New("viewerpdf: no pages to assemble")

	// ErrNoFrame is returned when the viewer iframe cannot be located.
	ErrNoFrame = errors.New("viewerpdf: viewer frame not found")
)

// CaptureError reports that a page produced no usable raster: either no
// candidate survived or fetching/persisting its bytes failed.
type CaptureError struct {
	Page int
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("viewerpdf: capture page %d: %v", e.Page, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// FormatError reports raster bytes that are neither a decodable bitmap nor
// a valid or repairable PNG.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("viewerpdf: %s raster: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NavigationError reports a failure to advance the viewer. It ends the
// capture session of the current document.
type NavigationError struct {
	Page int // last page captured before the failure
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("viewerpdf: advance past page %d: %v", e.Page, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// AssemblyError reports a page file that could not be placed in the
// output document.
type AssemblyError struct {
	Page int
	Path string
	Err  error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("viewerpdf: assemble page %d (%s): %v", e.Page, e.Path, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
