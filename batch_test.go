package viewerpdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeViewer is a fakeSource with a page counter.
type fakeViewer struct {
	*fakeSource
	total    int
	totalErr error
	closed   bool
}

func (v *fakeViewer) TotalPages(ctx context.Context) (int, error) {
	return v.total, v.totalErr
}

func (v *fakeViewer) Close() error {
	v.closed = true
	return nil
}

type fakeOpener struct {
	viewers map[string]*fakeViewer
	opened  []string
}

func (o *fakeOpener) Open(ctx context.Context, rawURL string) (Viewer, error) {
	o.opened = append(o.opened, rawURL)
	v, ok := o.viewers[rawURL]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", rawURL, ErrNoFrame)
	}
	return v, nil
}

func viewerWithPages(t *testing.T, n int) *fakeViewer {
	t.Helper()
	src := &fakeSource{}
	for i := 1; i <= n; i++ {
		src.pages = append(src.pages, []*fakeElement{canvasEl(fmt.Sprint(i), pagePNG(t, i))})
	}
	return &fakeViewer{fakeSource: src, total: n}
}

func testBatchConfig(t *testing.T, docs ...string) *BatchConfig {
	t.Helper()
	dir := t.TempDir()
	return &BatchConfig{
		Documents:     docs,
		OutputPrefix:  filepath.Join(dir, "book"),
		TempDir:       filepath.Join(dir, "pages"),
		FallbackPages: 3,
	}
}

func TestRunner_CapturesEachDocument(t *testing.T) {
	const (
		first  = "https://example.com/books/viewer/first-book"
		broken = "https://example.com/books/viewer/gone"
		second = "https://example.com/books/viewer/second.book"
	)
	v1, v2 := viewerWithPages(t, 2), viewerWithPages(t, 3)
	opener := &fakeOpener{viewers: map[string]*fakeViewer{first: v1, second: v2}}
	cfg := testBatchConfig(t, first, broken, second)

	reports, err := NewRunner(opener, cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, []string{first, broken, second}, opener.opened)

	assert.NoError(t, reports[0].Err)
	assert.Equal(t, "first_book", reports[0].Slug)
	assert.Equal(t, cfg.OutputPrefix+"_first_book.pdf", reports[0].Config.OutputPath)
	assert.Equal(t, filepath.Join(cfg.TempDir, "first_book"), reports[0].Config.TempDir)
	require.NotNil(t, reports[0].Document)
	assert.Equal(t, 2, reports[0].Document.PageCount())
	assert.FileExists(t, reports[0].Config.OutputPath)
	assert.True(t, v1.closed)

	assert.ErrorIs(t, reports[1].Err, ErrNoFrame)
	assert.Nil(t, reports[1].Document)

	assert.NoError(t, reports[2].Err)
	assert.Equal(t, "second_book", reports[2].Slug)
	assert.Equal(t, 3, reports[2].Document.PageCount())
	assert.True(t, v2.closed)
}

func TestRunner_FallbackPageCount(t *testing.T) {
	const doc = "https://example.com/viewer/doc"
	v := viewerWithPages(t, 3)
	v.totalErr = errors.New("counter not rendered")
	opener := &fakeOpener{viewers: map[string]*fakeViewer{doc: v}}
	cfg := testBatchConfig(t, doc)

	reports, err := NewRunner(opener, cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, cfg.FallbackPages, reports[0].Config.TotalPages)
	assert.Equal(t, 3, reports[0].Document.PageCount())
}

func TestRunner_AbortedCaptureStillAssembles(t *testing.T) {
	const doc = "https://example.com/viewer/short"
	v := viewerWithPages(t, 5)
	v.lastPage = 2
	opener := &fakeOpener{viewers: map[string]*fakeViewer{doc: v}}

	reports, err := NewRunner(opener, testBatchConfig(t, doc), testLogger()).Run(context.Background())
	require.NoError(t, err)

	r := reports[0]
	var navErr *NavigationError
	require.ErrorAs(t, r.Err, &navErr)
	require.NotNil(t, r.Document)
	assert.Equal(t, 2, r.Document.PageCount())
	assert.Equal(t, []int{3, 4, 5}, r.Document.Skipped)
	_, statErr := os.Stat(r.Config.OutputPath)
	assert.NoError(t, statErr)
}

func TestRunner_NothingCaptured(t *testing.T) {
	const doc = "https://example.com/viewer/blank"
	v := &fakeViewer{fakeSource: &fakeSource{pages: [][]*fakeElement{{}, {}}}, total: 2}
	opener := &fakeOpener{viewers: map[string]*fakeViewer{doc: v}}

	reports, err := NewRunner(opener, testBatchConfig(t, doc), testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, reports[0].Err, ErrNoPages)
	assert.NoFileExists(t, reports[0].Config.OutputPath)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opener := &fakeOpener{}
	reports, err := NewRunner(opener, testBatchConfig(t, "https://example.com/a", "https://example.com/b"), testLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
	assert.Empty(t, opener.opened)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/books/viewer/my-book", "my_book"},
		{"https://example.com/books/viewer/my-book/", "my_book"},
		{"https://example.com/read/9780262033848?page=1", "9780262033848"},
		{"https://example.com/read/Vol.2%20Final", "Vol_2_Final"},
		{"https://example.com/", "document"},
		{"https://example.com", "document"},
		{"plain name", "plain_name"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestNewBrowserOpener_MissingCookies(t *testing.T) {
	cfg := testBatchConfig(t, "https://example.com/a")
	cfg.CookiesFile = filepath.Join(t.TempDir(), "cookies.json")
	_, err := NewBrowserOpener(cfg, testLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewBrowserOpener_UnknownDriver(t *testing.T) {
	cfg := testBatchConfig(t, "https://example.com/a")
	cfg.CookiesFile = writeCookies(t, cookieJSON)
	cfg.Browser.Driver = "webkit"
	_, err := NewBrowserOpener(cfg, testLogger())
	assert.ErrorContains(t, err, "unknown browser driver")
}
