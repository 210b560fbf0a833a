package viewerpdf

import "context"

// CandidateKind tells how a candidate element carries its raster.
type CandidateKind int

const (
	// KindImage is an element with a resource locator, typically an
	// <img> backed by a blob: URL.
	KindImage CandidateKind = iota
	// KindCanvas is a drawable surface whose pixels are read directly.
	KindCanvas
)

func (k CandidateKind) String() string {
	switch k {
	case KindCanvas:
		return "canvas"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Candidate is one renderable element visible on the current viewer page.
type Candidate struct {
	Kind CandidateKind

	// Markup is the element's outer HTML. It identifies canvases.
	Markup string

	// Src is the element's resource locator. It identifies images.
	Src string

	// Handle is owned by the PageSource that produced the candidate.
	Handle any
}

// Identifier returns the deduplication key for c: the full markup of a
// canvas, the resource locator of an image.
func (c Candidate) Identifier() string {
	if c.Kind == KindCanvas {
		return c.Markup
	}
	return c.Src
}

// PageSource is the viewer a capture session reads from. Every method may
// block and may fail; implementations must honour ctx cancellation.
type PageSource interface {
	// Candidates lists the renderable elements of the current page.
	Candidates(ctx context.Context) ([]Candidate, error)

	// Fetch returns the raw raster bytes behind c.
	Fetch(ctx context.Context, c Candidate) ([]byte, error)

	// NextPage advances the viewer by one page. It returns ErrNoNextPage
	// when the viewer exposes no next-page control.
	NextPage(ctx context.Context) error

	// Settle blocks until the viewer has finished rendering after a page
	// change.
	Settle(ctx context.Context) error
}

// Viewer is a PageSource bound to one opened document.
type Viewer interface {
	PageSource

	// TotalPages reads the page count announced by the viewer.
	TotalPages(ctx context.Context) (int, error)

	Close() error
}

// Opener opens documents in a browser and hands back a ready Viewer.
type Opener interface {
	Open(ctx context.Context, rawURL string) (Viewer, error)
}
