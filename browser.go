package viewerpdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("viewerpdf: downloading browser: %w", err)
	}
	return path, nil
}

// executablePath returns the configured Chrome path, downloading one when
// auto download is enabled and none is set. Empty means "search PATH".
func (c *browserConfig) executablePath() (string, error) {
	if c.chromePath != "" || !c.autoDownload {
		return c.chromePath, nil
	}
	return resolveBrowser()
}

// fetchScript runs with `this` bound to a candidate element and resolves
// to the element's raster bytes, base64 encoded. Canvases are exported as
// PNG; images are re-fetched from their (blob:) source.
const fetchScript = `async function () {
	let blob;
	if (this.tagName === 'CANVAS') {
		blob = await new Promise((resolve, reject) =>
			this.toBlob((b) => (b ? resolve(b) : reject(new Error('canvas export failed'))), 'image/png'));
	} else {
		const res = await fetch(this.src);
		if (!res.ok) throw new Error('fetch failed: ' + res.status);
		blob = await res.blob();
	}
	const bytes = new Uint8Array(await blob.arrayBuffer());
	let bin = '';
	for (let i = 0; i < bytes.length; i += 0x8000) {
		bin += String.fromCharCode.apply(null, bytes.subarray(i, i + 0x8000));
	}
	return btoa(bin);
}`

func decodeFetched(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding element bytes: %w", err)
	}
	return data, nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
