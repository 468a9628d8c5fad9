package gocard

import (
	"bufio"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageFormat represents the output image format.
type ImageFormat int

const (
	ImageFormatPNG ImageFormat = iota
	ImageFormatJPEG
)

// ParseImageFormat maps "png", "jpg" or "jpeg" to an ImageFormat.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return ImageFormatPNG, nil
	case "jpg", "jpeg":
		return ImageFormatJPEG, nil
	}
	return ImageFormatPNG, fmt.Errorf("unsupported image format %q", s)
}

// Ext returns the file extension, including the dot.
func (f ImageFormat) Ext() string {
	if f == ImageFormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// SaveOptions configures face-to-file encoding.
type SaveOptions struct {
	// Format is the output image format (PNG or JPEG).
	Format ImageFormat
	// JPEGQuality is the JPEG quality (1-100). Default: 90.
	JPEGQuality int
}

// DefaultSaveOptions returns default encoding options.
func DefaultSaveOptions() *SaveOptions {
	return &SaveOptions{
		Format:      ImageFormatPNG,
		JPEGQuality: 90,
	}
}

// Encode writes the surface pixels to w.
func (s *Surface) Encode(w io.Writer, opts *SaveOptions) error {
	if opts == nil {
		opts = DefaultSaveOptions()
	}
	switch opts.Format {
	case ImageFormatJPEG:
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		return jpeg.Encode(w, s.img, &jpeg.Options{Quality: quality})
	default:
		return png.Encode(w, s.img)
	}
}

// Save encodes the surface to path, creating parent directories as needed.
func (s *Surface) Save(path string, opts *SaveOptions) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := s.Encode(bw, opts); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// SaveFaces writes the card's front and back faces into dir as
// "<prefix>front<ext>" and "<prefix>back<ext>", returning the two paths.
// Each face is encoded under its texture's read lock.
func (c *Card) SaveFaces(dir, prefix string, opts *SaveOptions) (front, back string, err error) {
	if opts == nil {
		opts = DefaultSaveOptions()
	}
	front = filepath.Join(dir, prefix+"front"+opts.Format.Ext())
	back = filepath.Join(dir, prefix+"back"+opts.Format.Ext())
	if err := c.frontTex.View(func(s *Surface) error { return s.Save(front, opts) }); err != nil {
		return "", "", fmt.Errorf("front face: %w", err)
	}
	if err := c.backTex.View(func(s *Surface) error { return s.Save(back, opts) }); err != nil {
		return "", "", fmt.Errorf("back face: %w", err)
	}
	return front, back, nil
}
