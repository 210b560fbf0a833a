package viewerpdf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Browser opens viewer documents in a Chrome instance driven over the
// DevTools protocol.
//
// A Browser manages one browser process that is reused for every document
// it opens. Call [Browser.Close] when it is no longer needed.
type Browser struct {
	cfg           browserConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewBrowser starts Chrome with the given options. The caller must call
// [Browser.Close] when finished.
func NewBrowser(opts ...Option) (*Browser, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	execPath, err := cfg.executablePath()
	if err != nil {
		return nil, err
	}

	headless := any(false)
	if cfg.headless {
		headless = "new"
	}
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-first-run", true),
		// Keeps the viewer iframe in the page process so its DOM is reachable.
		chromedp.Flag("disable-features", "site-per-process,Translate"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.viewport.Width, cfg.viewport.Height),
	)
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("viewerpdf: starting browser: %w", err)
	}

	return &Browser{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Browser, including the
// browser process. Close is idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.browserCancel()
	b.allocCancel()
	return nil
}

func (b *Browser) checkClosed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Open installs the configured cookies, navigates a new tab to rawURL,
// waits for the viewer frame and lets it render for the initial settle
// interval.
func (b *Browser) Open(ctx context.Context, rawURL string) (Viewer, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("viewerpdf: invalid URL %q: %w", rawURL, err)
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	v := &chromeViewer{tabCtx: tabCtx, tabCancel: tabCancel, cfg: b.cfg}

	navCtx, done := v.bind(ctx)
	defer done()
	if b.cfg.timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(navCtx, b.cfg.timeout)
		defer cancel()
	}

	var frames []*cdp.Node
	actions := []chromedp.Action{}
	if len(b.cfg.cookies) > 0 {
		actions = append(actions, network.SetCookies(cookieParams(b.cfg.cookies)))
	}
	actions = append(actions,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady(b.cfg.selectors.Frame, chromedp.ByQuery),
		chromedp.Nodes(b.cfg.selectors.Frame, &frames, chromedp.ByQuery),
	)
	if err := chromedp.Run(navCtx, actions...); err != nil {
		tabCancel()
		return nil, fmt.Errorf("viewerpdf: opening %s: %w", rawURL, err)
	}
	if len(frames) == 0 {
		tabCancel()
		return nil, ErrNoFrame
	}
	v.frame = frames[0]

	b.cfg.logger.Debug("viewer frame ready", "url", rawURL)
	if err := sleepCtx(ctx, b.cfg.initialSettle); err != nil {
		tabCancel()
		return nil, err
	}
	return v, nil
}

func cookieParams(cookies []Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		switch strings.ToLower(c.SameSite) {
		case "lax":
			p.SameSite = network.CookieSameSiteLax
		case "strict":
			p.SameSite = network.CookieSameSiteStrict
		case "none":
			p.SameSite = network.CookieSameSiteNone
		}
		if !c.Session() {
			t := cdp.TimeSinceEpoch(c.ExpiresAt())
			p.Expires = &t
		}
		params = append(params, p)
	}
	return params
}

// chromeViewer is a PageSource over one Chrome tab. All element queries run
// inside the viewer iframe.
type chromeViewer struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	frame     *cdp.Node
	cfg       browserConfig
}

// bind derives a context that carries the tab and is cancelled with ctx.
func (v *chromeViewer) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(v.tabCtx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (v *chromeViewer) queryAll(ctx context.Context, sel string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes,
		chromedp.ByQueryAll, chromedp.FromNode(v.frame), chromedp.AtLeast(0)))
	return nodes, err
}

func (v *chromeViewer) Candidates(ctx context.Context) ([]Candidate, error) {
	runCtx, done := v.bind(ctx)
	defer done()

	nodes, err := v.queryAll(runCtx, v.cfg.selectors.Candidates)
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: listing candidates: %w", err)
	}
	cands := make([]Candidate, 0, len(nodes))
	for _, n := range nodes {
		c := Candidate{Kind: KindImage, Src: n.AttributeValue("src"), Handle: n}
		if strings.EqualFold(n.NodeName, "canvas") {
			c.Kind = KindCanvas
			err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
				var err error
				c.Markup, err = dom.GetOuterHTML().WithNodeID(n.NodeID).Do(ctx)
				return err
			}))
			if err != nil {
				return nil, fmt.Errorf("viewerpdf: reading canvas markup: %w", err)
			}
		}
		cands = append(cands, c)
	}
	return cands, nil
}

func (v *chromeViewer) Fetch(ctx context.Context, c Candidate) ([]byte, error) {
	n, ok := c.Handle.(*cdp.Node)
	if !ok {
		return nil, fmt.Errorf("viewerpdf: candidate from another source")
	}
	runCtx, done := v.bind(ctx)
	defer done()

	var encoded string
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(fetchScript).
			WithObjectID(obj.ObjectID).
			WithAwaitPromise(true).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("script error: %s", exceptionText(exc))
		}
		return json.Unmarshal([]byte(res.Value), &encoded)
	}))
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: fetching %s: %w", c.Kind, err)
	}
	return decodeFetched(encoded)
}

func exceptionText(exc *runtime.ExceptionDetails) string {
	if exc.Exception != nil && exc.Exception.Description != "" {
		return exc.Exception.Description
	}
	return exc.Text
}

func (v *chromeViewer) NextPage(ctx context.Context) error {
	runCtx, done := v.bind(ctx)
	defer done()

	nodes, err := v.queryAll(runCtx, v.cfg.selectors.NextPage)
	if err != nil {
		return fmt.Errorf("viewerpdf: locating next-page control: %w", err)
	}
	if len(nodes) == 0 {
		return ErrNoNextPage
	}
	if err := chromedp.Run(runCtx, chromedp.MouseClickNode(nodes[0])); err != nil {
		return fmt.Errorf("viewerpdf: clicking next page: %w", err)
	}
	return nil
}

func (v *chromeViewer) Settle(ctx context.Context) error {
	return sleepCtx(ctx, v.cfg.settle)
}

func (v *chromeViewer) TotalPages(ctx context.Context) (int, error) {
	runCtx, done := v.bind(ctx)
	defer done()

	nodes, err := v.queryAll(runCtx, v.cfg.selectors.TotalPages)
	if err != nil {
		return 0, fmt.Errorf("viewerpdf: locating page counter: %w", err)
	}
	if len(nodes) == 0 {
		return 0, fmt.Errorf("viewerpdf: page counter %q not found", v.cfg.selectors.TotalPages)
	}
	var text string
	if err := chromedp.Run(runCtx, chromedp.Text([]cdp.NodeID{nodes[0].NodeID}, &text, chromedp.ByNodeID)); err != nil {
		return 0, fmt.Errorf("viewerpdf: reading page counter: %w", err)
	}
	return parsePageCount(text)
}

func (v *chromeViewer) Close() error {
	v.tabCancel()
	return nil
}

// parsePageCount reads a positive page count from counter text.
func parsePageCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("viewerpdf: page counter %q: %w", text, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("viewerpdf: page counter %q is not positive", text)
	}
	return n, nil
}
