package viewerpdf

import (
	"log/slog"
	"time"
)

// browserConfig holds internal configuration for a browser driver.
type browserConfig struct {
	chromePath    string
	timeout       time.Duration
	noSandbox     bool
	headless      bool
	autoDownload  bool
	viewport      Viewport
	selectors     Selectors
	cookies       []Cookie
	settle        time.Duration
	initialSettle time.Duration
	logger        *slog.Logger
}

func defaultConfig() browserConfig {
	return browserConfig{
		timeout:       60 * time.Second,
		headless:      true,
		viewport:      DefaultViewport(),
		selectors:     DefaultSelectors(),
		settle:        2 * time.Second,
		initialSettle: 10 * time.Second,
		logger:        slog.Default(),
	}
}

// Option configures a browser driver ([NewBrowser], [NewRodBrowser]).
type Option func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the driver searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithTimeout bounds navigation to a document and the wait for its viewer
// frame. Defaults to 60 seconds. A zero or negative value disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithHeadless toggles headless mode. Some viewers refuse to render in
// headless Chrome; pass false to show a window.
func WithHeadless(on bool) Option {
	return func(c *browserConfig) {
		c.headless = on
	}
}

// WithAutoDownload downloads a compatible Chromium when no executable
// path is configured.
func WithAutoDownload() Option {
	return func(c *browserConfig) {
		c.autoDownload = true
	}
}

// WithViewport sets the browser window size.
func WithViewport(v Viewport) Option {
	return func(c *browserConfig) {
		c.viewport = v.resolved()
	}
}

// WithSelectors overrides the DOM selectors used to drive the viewer.
func WithSelectors(s Selectors) Option {
	return func(c *browserConfig) {
		c.selectors = s
	}
}

// WithCookies installs session cookies before every navigation.
func WithCookies(cookies []Cookie) Option {
	return func(c *browserConfig) {
		c.cookies = cookies
	}
}

// WithSettle sets how long a viewer is given to re-render after a page
// change. Defaults to 2 seconds.
func WithSettle(d time.Duration) Option {
	return func(c *browserConfig) {
		c.settle = d
	}
}

// WithInitialSettle sets the wait after the viewer frame appears and
// before the first page is read. Defaults to 10 seconds.
func WithInitialSettle(d time.Duration) Option {
	return func(c *browserConfig) {
		c.initialSettle = d
	}
}

// WithBrowserLogger sets the logger of a browser driver.
func WithBrowserLogger(l *slog.Logger) Option {
	return func(c *browserConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// sessionConfig holds the configuration of a capture session.
type sessionConfig struct {
	logger     *slog.Logger
	normalizer *Normalizer
	id         string
}

// SessionOption configures a capture [Session].
type SessionOption func(*sessionConfig)

// WithLogger sets the session logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNormalizer replaces the default Normalizer.
func WithNormalizer(n *Normalizer) SessionOption {
	return func(c *sessionConfig) {
		if n != nil {
			c.normalizer = n
		}
	}
}

// WithChromaKey makes bitmap pixels of colour key come out as fill.
func WithChromaKey(key, fill [3]uint8) SessionOption {
	return func(c *sessionConfig) {
		n := NewNormalizer()
		n.Key.R, n.Key.G, n.Key.B = key[0], key[1], key[2]
		n.Fill.R, n.Fill.G, n.Fill.B = fill[0], fill[1], fill[2]
		c.normalizer = n
	}
}

// WithSessionID tags every log line of the session. A random UUID is used
// otherwise.
func WithSessionID(id string) SessionOption {
	return func(c *sessionConfig) {
		c.id = id
	}
}
