package viewerpdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DocumentConfig describes one document: how many pages to expect, where
// page files go and where the assembled PDF is written.
type DocumentConfig struct {
	TotalPages int    `yaml:"total_pages" validate:"gte=1"`
	TempDir    string `yaml:"temp_dir" validate:"required"`
	OutputPath string `yaml:"output_path"`
}

// pageFilePattern names page files by their 1-based index.
const pageFilePattern = "page_%d.png"

// PagePath returns the path of the page file for index inside dir.
func PagePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf(pageFilePattern, index))
}

// Selectors locate the viewer's parts in the page DOM.
type Selectors struct {
	// Frame is the iframe hosting the viewer.
	Frame string `yaml:"frame"`
	// Candidates matches the elements carrying page rasters.
	Candidates string `yaml:"candidates"`
	// NextPage matches the next-page control.
	NextPage string `yaml:"next_page"`
	// TotalPages matches the element whose text is the page count.
	TotalPages string `yaml:"total_pages"`
}

// DefaultSelectors returns the selectors of the viewer this tool targets.
func DefaultSelectors() Selectors {
	return Selectors{
		Frame:      "iframe",
		Candidates: `img[src^="blob:"], canvas`,
		NextPage:   `[aria-label="Go to next page"]`,
		TotalPages: ".PageNumberUI__totalPagesModern___1zDK_",
	}
}

// BatchConfig is the configuration file of a capture run over several
// documents.
type BatchConfig struct {
	Documents    []string `yaml:"documents" validate:"required,min=1,dive,url"`
	OutputPrefix string   `yaml:"output_prefix" validate:"required"`
	TempDir      string   `yaml:"temp_dir" validate:"required"`
	CookiesFile  string   `yaml:"cookies_file" validate:"required"`

	// FallbackPages is used when the viewer's page counter is unreadable.
	FallbackPages int `yaml:"fallback_pages" validate:"gte=1"`

	Settle            time.Duration `yaml:"settle" validate:"gte=0"`
	InitialSettle     time.Duration `yaml:"initial_settle" validate:"gte=0"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" validate:"gte=0"`

	Browser   BrowserSettings `yaml:"browser"`
	Selectors Selectors       `yaml:"selectors"`
}

// BrowserSettings selects and tunes the browser driver.
type BrowserSettings struct {
	Driver       string   `yaml:"driver" validate:"oneof=chromedp rod"`
	ChromePath   string   `yaml:"chrome_path"`
	Headless     bool     `yaml:"headless"`
	NoSandbox    bool     `yaml:"no_sandbox"`
	AutoDownload bool     `yaml:"auto_download"`
	Viewport     Viewport `yaml:"viewport"`
}

// Environment variables overriding the configuration file.
const (
	EnvChromePath  = "VIEWERPDF_CHROME_PATH"
	EnvCookiesFile = "VIEWERPDF_COOKIES_FILE"
	EnvHeadless    = "VIEWERPDF_HEADLESS"
)

// LoadBatchConfig reads a YAML batch configuration, applies defaults and
// environment overrides, and validates the result.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: reading config: %w", err)
	}
	var cfg BatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("viewerpdf: parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *BatchConfig) applyDefaults() {
	if c.OutputPrefix == "" {
		c.OutputPrefix = "scraped_pdf"
	}
	if c.TempDir == "" {
		c.TempDir = "temp_images"
	}
	if c.CookiesFile == "" {
		c.CookiesFile = "cookies.json"
	}
	if c.FallbackPages <= 0 {
		c.FallbackPages = 165
	}
	if c.Settle == 0 {
		c.Settle = 2 * time.Second
	}
	if c.InitialSettle == 0 {
		c.InitialSettle = 10 * time.Second
	}
	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = 60 * time.Second
	}
	if c.Browser.Driver == "" {
		c.Browser.Driver = "chromedp"
	}
	c.Browser.Viewport = c.Browser.Viewport.resolved()

	d := DefaultSelectors()
	if c.Selectors.Frame == "" {
		c.Selectors.Frame = d.Frame
	}
	if c.Selectors.Candidates == "" {
		c.Selectors.Candidates = d.Candidates
	}
	if c.Selectors.NextPage == "" {
		c.Selectors.NextPage = d.NextPage
	}
	if c.Selectors.TotalPages == "" {
		c.Selectors.TotalPages = d.TotalPages
	}
}

func (c *BatchConfig) applyEnv() {
	if v := os.Getenv(EnvChromePath); v != "" {
		c.Browser.ChromePath = v
	}
	if v := os.Getenv(EnvCookiesFile); v != "" {
		c.CookiesFile = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
}

// Validate checks field constraints.
func (c *BatchConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("viewerpdf: invalid config: %w", err)
	}
	return nil
}

// Validate checks field constraints.
func (c DocumentConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("viewerpdf: invalid document config: %w", err)
	}
	return nil
}
