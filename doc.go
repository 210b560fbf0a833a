// Package viewerpdf captures documents shown page by page in a scripted web
// viewer and rebuilds them as a single PDF.
//
// The viewer hands out page rasters in whatever form it likes: blob-backed
// images, canvases, BMP or PNG bytes, sometimes with damaged checksums.
// viewerpdf reads one page at a time, normalizes whatever it finds to PNG
// and writes page_<n>.png files, then lays every page file out as one PDF
// page of exactly the raster's pixel size.
//
// # Capturing
//
// A [PageSource] is anything that can list the candidate elements of the
// current page, fetch their bytes, advance and wait for rendering:
//
//	b, err := viewerpdf.NewBrowser(viewerpdf.WithCookies(cookies))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	v, err := b.Open(ctx, "https://example.com/books/viewer/some-book")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	cfg := viewerpdf.DocumentConfig{TotalPages: 40, TempDir: "pages", OutputPath: "book.pdf"}
//	report, err := viewerpdf.Capture(ctx, v, cfg)
//
// Pages that yield nothing usable are recorded in [CaptureReport.Missing]
// and skipped. If the viewer cannot be advanced the session stops early
// with a [NavigationError] in [CaptureReport.Err]; pages already written
// are kept.
//
// Elements that stay on screen while the viewer turns pages are captured
// only once: from page 2 on, a candidate whose identifier (markup for a
// canvas, source URL for an image) was already seen is skipped.
//
// # Assembling
//
//	res, err := viewerpdf.NewAssembler(nil).AssembleFile(ctx, cfg)
//
// Missing page files are logged and left out. A [Result] gives access to
// the PDF bytes and the list of placed pages:
//
//	res.Bytes()                        // []byte
//	res.Pages                          // []PlacedPage, in order
//	res.WriteToFile("out.pdf", 0o644)  // write to disk
//
// # Batches
//
// [Runner] walks a list of document URLs from a [BatchConfig], opening each
// one through a Chrome driver ([Browser], chromedp) or a stealth Rod driver
// ([RodBrowser]).
package viewerpdf
