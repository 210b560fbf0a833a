package viewerpdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// State is the position of a capture session in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAdvancing
	StateDone    // every expected page was attempted
	StateAborted // the viewer could not be advanced
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAdvancing:
		return "advancing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// CapturedPage is a page file written by a session.
type CapturedPage struct {
	Index      int
	Identifier string
	Path       string
	Width      int
	Height     int
	Source     Format
}

// MissingPage is an attempted page that produced no file.
type MissingPage struct {
	Index int
	Err   error
}

// CaptureReport summarises a capture session.
type CaptureReport struct {
	Session string
	Total   int
	State   State
	Pages   []CapturedPage
	Missing []MissingPage

	// Err is the *NavigationError that aborted the session, if any.
	Err error
}

// Session captures the pages of one document from a PageSource into page
// files. A Session is single-use and not safe for concurrent use: pages are
// read strictly in order because advancing the viewer is stateful.
type Session struct {
	cfg    DocumentConfig
	src    PageSource
	seen   *Tracker
	norm   *Normalizer
	log    *slog.Logger
	id     string
	state  State
	report CaptureReport
}

// NewSession prepares a capture session for the document described by cfg.
func NewSession(src PageSource, cfg DocumentConfig, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := sessionConfig{logger: slog.Default(), normalizer: NewNormalizer()}
	for _, o := range opts {
		o(&sc)
	}
	if sc.id == "" {
		sc.id = uuid.NewString()
	}
	return &Session{
		cfg:  cfg,
		src:  src,
		seen: NewTracker(),
		norm: sc.normalizer,
		log:  sc.logger.With("session", sc.id),
		id:   sc.id,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Run captures pages 1..TotalPages. Per-page failures are recorded in the
// report and do not stop the session; a failure to advance the viewer ends
// it in StateAborted with the pages saved so far. The returned error is
// non-nil only when ctx is done.
func (s *Session) Run(ctx context.Context) (*CaptureReport, error) {
	total := s.cfg.TotalPages
	s.report = CaptureReport{Session: s.id, Total: total}

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return s.finish(), err
		}
		s.state = StateCapturing
		s.log.Info("capturing page", "page", i, "total", total)

		page, err := s.capturePage(ctx, i)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.finish(), ctxErr
			}
			s.log.Warn("page missing", "page", i, "error", err)
			s.report.Missing = append(s.report.Missing, MissingPage{Index: i, Err: err})
		} else {
			s.log.Info("saved page", "page", i, "path", page.Path,
				"width", page.Width, "height", page.Height, "source", page.Source)
			s.report.Pages = append(s.report.Pages, *page)
		}

		if i == total {
			break
		}

		s.state = StateAdvancing
		if err := s.src.NextPage(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.finish(), ctxErr
			}
			navErr := &NavigationError{Page: i, Err: err}
			s.log.Error("stopping capture", "page", i, "error", navErr)
			s.state = StateAborted
			s.report.Err = navErr
			return s.finish(), nil
		}
		if err := s.src.Settle(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.finish(), ctxErr
			}
			s.log.Warn("viewer did not settle", "page", i+1, "error", err)
		}
	}

	s.state = StateDone
	return s.finish(), nil
}

func (s *Session) finish() *CaptureReport {
	r := s.report
	r.State = s.state
	return &r
}

// capturePage tries the candidates of the current page in order until one
// is normalized and written. The first success wins.
func (s *Session) capturePage(ctx context.Context, index int) (*CapturedPage, error) {
	cands, err := s.src.Candidates(ctx)
	if err != nil {
		return nil, &CaptureError{Page: index, Err: err}
	}
	s.log.Debug("found candidates", "page", index, "count", len(cands))

	var lastErr error = &CaptureError{Page: index, Err: ErrNoCandidates}
	for _, c := range cands {
		id := c.Identifier()
		// Page 1 is never deduplicated.
		if index > 1 && s.seen.Contains(id) {
			s.log.Debug("skipping reused element", "page", index, "kind", c.Kind)
			continue
		}
		s.seen.Add(id)

		data, err := s.src.Fetch(ctx, c)
		if err != nil {
			lastErr = &CaptureError{Page: index, Err: err}
			s.log.Warn("fetch failed", "page", index, "kind", c.Kind, "error", err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}
		if len(data) == 0 {
			lastErr = &CaptureError{Page: index, Err: ErrEmptyBuffer}
			s.log.Warn("empty buffer", "page", index, "kind", c.Kind)
			continue
		}

		raster, err := s.norm.Normalize(data)
		if err != nil {
			lastErr = err
			s.log.Warn("unusable raster", "page", index, "kind", c.Kind, "error", err)
			continue
		}

		path := PagePath(s.cfg.TempDir, index)
		if err := writeFileAtomic(path, raster.PNG); err != nil {
			lastErr = &CaptureError{Page: index, Err: err}
			s.log.Warn("write failed", "page", index, "path", path, "error", err)
			continue
		}
		return &CapturedPage{
			Index:      index,
			Identifier: id,
			Path:       path,
			Width:      raster.Width,
			Height:     raster.Height,
			Source:     raster.Source,
		}, nil
	}
	return nil, lastErr
}

// Capture runs a new Session over src.
func Capture(ctx context.Context, src PageSource, cfg DocumentConfig, opts ...SessionOption) (*CaptureReport, error) {
	s, err := NewSession(src, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// writeFileAtomic writes data next to path and renames it into place so a
// reader never observes a partial file.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
