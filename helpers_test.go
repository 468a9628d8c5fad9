package gocard

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCardOptions renders at quarter resolution with only the built-in fonts.
func testCardOptions(assets fs.FS) *CardOptions {
	return &CardOptions{
		Width:        512,
		Height:       256,
		Assets:       assets,
		AssetTimeout: 2 * time.Second,
		FontCache:    newIsolatedFontCache(),
		Logger:       quietLogger(),
	}
}

func solidPNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func studentAssets(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		AssetLogo:       {Data: solidPNG(t, color.RGBA{B: 255, A: 255}, 16, 16)},
		AssetBackground: {Data: solidPNG(t, color.RGBA{R: 255, A: 255}, 16, 16)},
	}
}

// hasInk reports whether any pixel in r is dark, i.e. text or lines were drawn there.
func hasInk(s *Surface, r image.Rectangle) bool {
	r = r.Intersect(s.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := s.At(x, y)
			if c.A > 0 && c.R < 128 && c.G < 128 && c.B < 128 {
				return true
			}
		}
	}
	return false
}

func isWhite(c color.RGBA) bool {
	return c.R == 255 && c.G == 255 && c.B == 255 && c.A == 255
}

func allWhite(s *Surface) bool {
	b := s.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isWhite(s.At(x, y)) {
				return false
			}
		}
	}
	return true
}

// blockingFS never answers until release is closed.
type blockingFS struct {
	release chan struct{}
}

func (b blockingFS) Open(name string) (fs.File, error) {
	<-b.release
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
