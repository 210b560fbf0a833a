package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	viewerpdf "github.com/porticus-lab/go-viewer-pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 200, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAssembleAndInfo(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "page_1.png"), 300, 400)
	writePNG(t, filepath.Join(dir, "page_3.png"), 320, 240)
	pdf := filepath.Join(dir, "book.pdf")

	out, err := execute(t, "assemble", "--dir", dir, "--pages", "3", "--out", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "2 pages")
	assert.Contains(t, out, "missing [2]")
	require.FileExists(t, pdf)

	out, err = execute(t, "info", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "Pages:   2")
	assert.Contains(t, out, "Page 1: 300 x 400 pt")
	assert.Contains(t, out, "Page 2: 320 x 240 pt")
}

func TestAssemble_NoPageFiles(t *testing.T) {
	_, err := execute(t, "assemble", "--dir", t.TempDir(), "--pages", "2", "--out", filepath.Join(t.TempDir(), "x.pdf"))
	assert.ErrorIs(t, err, viewerpdf.ErrNoPages)
}

func TestCapture_BadConfig(t *testing.T) {
	_, err := execute(t, "capture", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
