package viewerpdf

// Viewport is the browser window size in CSS pixels.
type Viewport struct {
	Width  int `yaml:"width" validate:"gte=0"`
	Height int `yaml:"height" validate:"gte=0"`
}

// Common window sizes.
var (
	HD     = Viewport{Width: 1280, Height: 720}
	FullHD = Viewport{Width: 1920, Height: 1080}
)

// DefaultViewport returns the window size used when none is configured.
func DefaultViewport() Viewport {
	return HD
}

// resolved returns v with zero dimensions replaced by the default.
func (v Viewport) resolved() Viewport {
	d := DefaultViewport()
	if v.Width <= 0 {
		v.Width = d.Width
	}
	if v.Height <= 0 {
		v.Height = d.Height
	}
	return v
}
