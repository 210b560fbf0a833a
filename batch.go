package viewerpdf

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// DocumentReport is the outcome of one document of a batch.
type DocumentReport struct {
	URL      string
	Slug     string
	Config   DocumentConfig
	Capture  *CaptureReport
	Document *Result
	Err      error
}

// Runner captures a list of documents one after another.
type Runner struct {
	opener Opener
	cfg    *BatchConfig
	log    *slog.Logger
}

// NewRunner returns a Runner opening documents with opener.
func NewRunner(opener Opener, cfg *BatchConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{opener: opener, cfg: cfg, log: logger}
}

// Run processes every configured document. A document that cannot be
// opened, captured or assembled is reported and skipped; the batch goes
// on. The returned error is non-nil only when ctx is done.
func (r *Runner) Run(ctx context.Context) ([]DocumentReport, error) {
	reports := make([]DocumentReport, 0, len(r.cfg.Documents))
	for i, u := range r.cfg.Documents {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		r.log.Info("starting document", "n", i+1, "of", len(r.cfg.Documents), "url", u)
		rep := r.runOne(ctx, u)
		if rep.Err != nil {
			r.log.Error("document failed", "url", u, "error", rep.Err)
		}
		reports = append(reports, rep)
	}
	if err := ctx.Err(); err != nil {
		return reports, err
	}
	return reports, nil
}

func (r *Runner) runOne(ctx context.Context, rawURL string) DocumentReport {
	slug := Slug(rawURL)
	rep := DocumentReport{URL: rawURL, Slug: slug}

	v, err := r.opener.Open(ctx, rawURL)
	if err != nil {
		rep.Err = err
		return rep
	}
	defer v.Close()

	total, err := v.TotalPages(ctx)
	if err != nil {
		total = r.cfg.FallbackPages
		r.log.Warn("page count unavailable, using fallback", "url", rawURL, "fallback", total, "error", err)
	} else {
		r.log.Info("detected page count", "url", rawURL, "total", total)
	}

	rep.Config = DocumentConfig{
		TotalPages: total,
		TempDir:    filepath.Join(r.cfg.TempDir, slug),
		OutputPath: fmt.Sprintf("%s_%s.pdf", r.cfg.OutputPrefix, slug),
	}
	if err := os.MkdirAll(rep.Config.TempDir, 0o755); err != nil {
		rep.Err = fmt.Errorf("viewerpdf: creating %s: %w", rep.Config.TempDir, err)
		return rep
	}

	rep.Capture, err = Capture(ctx, v, rep.Config, WithLogger(r.log.With("url", rawURL)))
	if err != nil {
		rep.Err = err
		return rep
	}

	rep.Document, err = NewAssembler(r.log.With("url", rawURL)).AssembleFile(ctx, rep.Config)
	if err != nil {
		rep.Err = err
		return rep
	}
	// An aborted capture still produced a valid, shorter document.
	rep.Err = rep.Capture.Err
	return rep
}

var slugUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Slug derives a file-name-safe name from the last path segment of a
// document URL, replacing every non-alphanumeric character with '_'.
func Slug(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" || base == "" {
		return "document"
	}
	return slugUnsafe.ReplaceAllString(base, "_")
}

// BrowserOpener is an Opener owning a browser process.
type BrowserOpener interface {
	Opener
	Close() error
}

// NewBrowserOpener loads the session cookies and starts the browser driver
// selected by cfg.
func NewBrowserOpener(cfg *BatchConfig, logger *slog.Logger) (BrowserOpener, error) {
	cookies, err := LoadCookies(cfg.CookiesFile)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithCookies(cookies),
		WithHeadless(cfg.Browser.Headless),
		WithViewport(cfg.Browser.Viewport),
		WithSelectors(cfg.Selectors),
		WithTimeout(cfg.NavigationTimeout),
		WithSettle(cfg.Settle),
		WithInitialSettle(cfg.InitialSettle),
		WithBrowserLogger(logger),
	}
	if cfg.Browser.ChromePath != "" {
		opts = append(opts, WithChromePath(cfg.Browser.ChromePath))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, WithNoSandbox())
	}
	if cfg.Browser.AutoDownload {
		opts = append(opts, WithAutoDownload())
	}

	switch cfg.Browser.Driver {
	case "rod":
		b, err := NewRodBrowser(opts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "", "chromedp":
		b, err := NewBrowser(opts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("viewerpdf: unknown browser driver %q", cfg.Browser.Driver)
}
