package viewerpdf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/bmp"
)

// Format is the encoding of raw raster bytes as recognised by [Classify].
type Format int

const (
	FormatUnknown Format = iota
	FormatBMP
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatPNG:
		return "png"
	}
	return "unknown"
}

var (
	bmpSignature = []byte("BM")
	pngSignature = []byte("\x89PNG\r\n\x1a\n")

	errUnrecognized = errors.New("unrecognized signature")
)

// Classify inspects the leading signature of data.
func Classify(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return FormatPNG
	case bytes.HasPrefix(data, bmpSignature):
		return FormatBMP
	}
	return FormatUnknown
}

// Default chroma key: the viewer paints unrendered regions pure yellow.
var (
	DefaultKeyColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
	DefaultFillColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Raster is a normalized page image ready to be written to disk.
type Raster struct {
	Width  int
	Height int
	Source Format // encoding the bytes arrived in
	PNG    []byte // canonical encoding
}

// Normalizer turns captured bytes into a canonical PNG raster.
type Normalizer struct {
	// Key is replaced by Fill in bitmap input. Only RGB is compared.
	Key  color.NRGBA
	Fill color.NRGBA
}

// NewNormalizer returns a Normalizer with the default yellow to white key.
func NewNormalizer() *Normalizer {
	return &Normalizer{Key: DefaultKeyColor, Fill: DefaultFillColor}
}

// Normalize classifies data and converts it. Bitmaps are re-encoded as
// opaque PNG with the chroma key applied; valid PNGs pass through
// untouched; damaged PNGs are rebuilt. Any other input yields a
// *FormatError.
func (n *Normalizer) Normalize(data []byte) (*Raster, error) {
	switch f := Classify(data); f {
	case FormatBMP:
		img, err := n.normalizeBitmap(data)
		if err != nil {
			return nil, &FormatError{Format: f, Err: err}
		}
		enc, err := encodePNG(img)
		if err != nil {
			return nil, &FormatError{Format: f, Err: err}
		}
		b := img.Bounds()
		return &Raster{Width: b.Dx(), Height: b.Dy(), Source: f, PNG: enc}, nil
	case FormatPNG:
		return normalizePNG(data)
	default:
		return nil, &FormatError{Format: f, Err: errUnrecognized}
	}
}

// normalizeBitmap decodes a BMP and copies it into a fully opaque NRGBA
// buffer, swapping the key colour for the fill colour. The decoder already
// reorders the stored BGR triples into RGB.
func (n *Normalizer) normalizeBitmap(data []byte) (*image.NRGBA, error) {
	src, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	fill := n.Fill
	fill.A = 0xff
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.R == n.Key.R && c.G == n.Key.G && c.B == n.Key.B {
				c = fill
			}
			c.A = 0xff
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst, nil
}

func normalizePNG(data []byte) (*Raster, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err == nil {
		b := img.Bounds()
		return &Raster{Width: b.Dx(), Height: b.Dy(), Source: FormatPNG, PNG: data}, nil
	}

	rebuilt, rerr := rebuildPNG(data)
	if rerr == nil {
		img, rerr = png.Decode(bytes.NewReader(rebuilt))
	}
	if rerr != nil {
		return nil, &FormatError{Format: FormatPNG, Err: fmt.Errorf("%v; repair: %w", err, rerr)}
	}
	enc, rerr := encodePNG(img)
	if rerr != nil {
		return nil, &FormatError{Format: FormatPNG, Err: rerr}
	}
	b := img.Bounds()
	return &Raster{Width: b.Dx(), Height: b.Dy(), Source: FormatPNG, PNG: enc}, nil
}

// rebuildPNG rewrites the chunk stream with recomputed checksums and
// drops anything trailing IEND.
func rebuildPNG(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errUnrecognized
	}
	out := bytes.NewBuffer(make([]byte, 0, len(data)))
	out.Write(pngSignature)

	rest := data[len(pngSignature):]
	for len(rest) > 0 {
		if len(rest) < 12 {
			return nil, errors.New("truncated chunk header")
		}
		n := uint64(binary.BigEndian.Uint32(rest[:4]))
		if n+12 > uint64(len(rest)) {
			return nil, fmt.Errorf("chunk %q overruns input", rest[4:8])
		}
		end := 8 + int(n)
		out.Write(rest[:end])
		var sum [4]byte
		binary.BigEndian.PutUint32(sum[:], crc32.ChecksumIEEE(rest[4:end]))
		out.Write(sum[:])
		if string(rest[4:8]) == "IEND" {
			return out.Bytes(), nil
		}
		rest = rest[end+4:]
	}
	return nil, errors.New("missing IEND chunk")
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
