package viewerpdf

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Cookie is a browser cookie as exported by DevTools-based tools: a JSON
// array of these objects is what a signed-in browser session saves.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // seconds since epoch, <= 0 for a session cookie
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Session reports whether c expires with the browser session.
func (c Cookie) Session() bool {
	return c.Expires <= 0
}

// ExpiresAt returns the expiry time of a persistent cookie.
func (c Cookie) ExpiresAt() time.Time {
	sec := int64(c.Expires)
	nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// LoadCookies reads a JSON cookie array from path. A missing file, invalid
// JSON or an empty array is an error: capturing without a signed-in
// session only yields the viewer's login wall.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("viewerpdf: loading cookies: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("viewerpdf: parsing cookies %s: %w", path, err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("viewerpdf: no cookies in %s", path)
	}
	return cookies, nil
}
