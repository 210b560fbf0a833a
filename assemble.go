package viewerpdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Assembler builds a PDF from the page files of a capture, one page per
// raster, each page exactly as large as its raster (1 unit per pixel).
type Assembler struct {
	log  *slog.Logger
	conf *model.Configuration
}

// NewAssembler returns an Assembler logging to logger, or to
// slog.Default() when logger is nil.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{log: logger, conf: model.NewDefaultConfiguration()}
}

// Assemble probes page_1..page_total in dir and places every readable
// page, in index order. Missing or undecodable files are logged and left
// out; no blank page stands in for them. It returns ErrNoPages when nothing
// could be placed.
func (a *Assembler) Assemble(ctx context.Context, dir string, total int) (*Result, error) {
	res := &Result{}
	var pages []io.Reader
	defer func() {
		for _, r := range pages {
			r.(*os.File).Close()
		}
	}()

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := PagePath(dir, i)
		f, w, h, err := openPage(path)
		if err != nil {
			a.log.Warn("skipping page", "page", i, "error", &AssemblyError{Page: i, Path: path, Err: err})
			res.Skipped = append(res.Skipped, i)
			continue
		}
		pages = append(pages, f)
		res.Pages = append(res.Pages, PlacedPage{Index: i, Width: w, Height: h})
		a.log.Debug("placing page", "page", i, "width", w, "height", h)
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, pages, imp, a.conf); err != nil {
		return nil, fmt.Errorf("viewerpdf: writing pdf: %w", err)
	}
	res.data = buf.Bytes()
	a.log.Info("assembled document", "pages", len(res.Pages), "skipped", len(res.Skipped), "bytes", buf.Len())
	return res, nil
}

// AssembleFile assembles the pages of cfg.TempDir and writes the document
// to cfg.OutputPath.
func (a *Assembler) AssembleFile(ctx context.Context, cfg DocumentConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("viewerpdf: output path is empty")
	}
	res, err := a.Assemble(ctx, cfg.TempDir, cfg.TotalPages)
	if err != nil {
		return nil, err
	}
	if err := res.WriteToFile(cfg.OutputPath, 0o644); err != nil {
		return nil, fmt.Errorf("viewerpdf: writing %s: %w", cfg.OutputPath, err)
	}
	a.log.Info("saved document", "path", cfg.OutputPath)
	return res, nil
}

// openPage decodes the page file to make sure it is usable and returns it
// rewound, with its pixel size.
func openPage(path string) (*os.File, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	img, err := png.Decode(f)
	if err != nil {
		f.Close()
		return nil, 0, 0, fmt.Errorf("decode: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, 0, 0, err
	}
	b := img.Bounds()
	if b.Empty() {
		f.Close()
		return nil, 0, 0, fmt.Errorf("empty image")
	}
	return f, b.Dx(), b.Dy(), nil
}
