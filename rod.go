package viewerpdf

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodBrowser opens viewer documents through Rod with stealth patches
// applied to every tab. Use it for viewers that refuse to render for an
// automated browser.
type RodBrowser struct {
	cfg     browserConfig
	lnch    *launcher.Launcher
	browser *rod.Browser

	mu     sync.Mutex
	closed bool
}

// NewRodBrowser launches Chrome and connects Rod to it.
func NewRodBrowser(opts ...Option) (*RodBrowser, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	execPath, err := cfg.executablePath()
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Headless(cfg.headless).
		NoSandbox(cfg.noSandbox).
		Set("disable-features", "site-per-process").
		Set("disable-infobars").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.viewport.Width, cfg.viewport.Height))
	if execPath != "" {
		l = l.Bin(execPath)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: launching browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("viewerpdf: connecting to browser: %w", err)
	}
	return &RodBrowser{cfg: cfg, lnch: l, browser: b}, nil
}

// Close shuts the browser down. Close is idempotent.
func (b *RodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	err := b.browser.Close()
	b.lnch.Kill()
	b.lnch.Cleanup()
	return err
}

// Open creates a stealth tab, installs cookies, navigates to rawURL and
// waits for the viewer frame.
func (b *RodBrowser) Open(ctx context.Context, rawURL string) (Viewer, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("viewerpdf: invalid URL %q: %w", rawURL, err)
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: create tab: %w", err)
	}
	if len(b.cfg.cookies) > 0 {
		if err := page.SetCookies(rodCookieParams(b.cfg.cookies)); err != nil {
			page.Close()
			return nil, fmt.Errorf("viewerpdf: setting cookies: %w", err)
		}
	}

	navCtx := ctx
	if b.cfg.timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, b.cfg.timeout)
		defer cancel()
	}
	p := page.Context(navCtx)
	if err := p.Navigate(rawURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("viewerpdf: opening %s: %w", rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		b.cfg.logger.Warn("wait load timeout", "url", rawURL, "error", err)
	}
	el, err := p.Element(b.cfg.selectors.Frame)
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	frame, err := el.Frame()
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}

	b.cfg.logger.Debug("viewer frame ready", "url", rawURL)
	if err := sleepCtx(ctx, b.cfg.initialSettle); err != nil {
		page.Close()
		return nil, err
	}
	return &rodViewer{page: page, frame: frame, cfg: b.cfg}, nil
}

func rodCookieParams(cookies []Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		switch strings.ToLower(c.SameSite) {
		case "lax":
			p.SameSite = proto.NetworkCookieSameSiteLax
		case "strict":
			p.SameSite = proto.NetworkCookieSameSiteStrict
		case "none":
			p.SameSite = proto.NetworkCookieSameSiteNone
		}
		if !c.Session() {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, p)
	}
	return params
}

// rodViewer is a PageSource over a Rod tab; queries run in the viewer
// frame.
type rodViewer struct {
	page  *rod.Page
	frame *rod.Page
	cfg   browserConfig
}

func (v *rodViewer) Candidates(ctx context.Context) ([]Candidate, error) {
	els, err := v.frame.Context(ctx).Elements(v.cfg.selectors.Candidates)
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: listing candidates: %w", err)
	}
	cands := make([]Candidate, 0, len(els))
	for _, el := range els {
		tag, err := el.Eval(`() => this.tagName`)
		if err != nil {
			return nil, fmt.Errorf("viewerpdf: reading tag: %w", err)
		}
		c := Candidate{Kind: KindImage, Handle: el}
		if strings.EqualFold(tag.Value.Str(), "canvas") {
			c.Kind = KindCanvas
			if c.Markup, err = el.HTML(); err != nil {
				return nil, fmt.Errorf("viewerpdf: reading canvas markup: %w", err)
			}
		} else {
			src, err := el.Property("src")
			if err != nil {
				return nil, fmt.Errorf("viewerpdf: reading image source: %w", err)
			}
			c.Src = src.Str()
		}
		cands = append(cands, c)
	}
	return cands, nil
}

func (v *rodViewer) Fetch(ctx context.Context, c Candidate) ([]byte, error) {
	el, ok := c.Handle.(*rod.Element)
	if !ok {
		return nil, fmt.Errorf("viewerpdf: candidate from another source")
	}
	res, err := el.Context(ctx).Eval(fetchScript)
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: fetching %s: %w", c.Kind, err)
	}
	return decodeFetched(res.Value.Str())
}

func (v *rodViewer) NextPage(ctx context.Context) error {
	els, err := v.frame.Context(ctx).Elements(v.cfg.selectors.NextPage)
	if err != nil {
		return fmt.Errorf("viewerpdf: locating next-page control: %w", err)
	}
	if els.Empty() {
		return ErrNoNextPage
	}
	if err := els.First().Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("viewerpdf: clicking next page: %w", err)
	}
	return nil
}

func (v *rodViewer) Settle(ctx context.Context) error {
	return sleepCtx(ctx, v.cfg.settle)
}

func (v *rodViewer) TotalPages(ctx context.Context) (int, error) {
	els, err := v.frame.Context(ctx).Elements(v.cfg.selectors.TotalPages)
	if err != nil {
		return 0, fmt.Errorf("viewerpdf: locating page counter: %w", err)
	}
	if els.Empty() {
		return 0, fmt.Errorf("viewerpdf: page counter %q not found", v.cfg.selectors.TotalPages)
	}
	text, err := els.First().Text()
	if err != nil {
		return 0, fmt.Errorf("viewerpdf: reading page counter: %w", err)
	}
	return parsePageCount(text)
}

func (v *rodViewer) Close() error {
	return v.page.Close()
}
