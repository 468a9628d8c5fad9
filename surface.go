package gocard

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default surface resolution for a card face.
const (
	DefaultSurfaceWidth  = 2048
	DefaultSurfaceHeight = 1024
)

// Surface is an offscreen immediate-mode 2D drawing target. Every call
// mutates the pixel buffer directly; nothing is retained between calls and
// previous content stays until it is cleared or painted over.
//
// A Surface is not safe for concurrent use. Texture serialises access when a
// surface is shared with a renderer.
type Surface struct {
	img   *image.RGBA
	fonts *FontCache
	faces map[fontKey]font.Face // owned by this surface, never shared
}

// NewSurface allocates a transparent surface. Non-positive dimensions fall
// back to the default card face size.
func NewSurface(width, height int, fonts *FontCache) *Surface {
	if width <= 0 {
		width = DefaultSurfaceWidth
	}
	if height <= 0 {
		height = DefaultSurfaceHeight
	}
	if fonts == nil {
		fonts = NewFontCache()
	}
	return &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts: fonts,
		faces: make(map[fontKey]font.Face),
	}
}

// face returns this surface's face for f. Faces keep glyph buffers, so they
// are cached per surface rather than in the shared FontCache.
func (s *Surface) face(f *Font) font.Face {
	if f == nil {
		f = NewFont()
	}
	key := fontKey{name: strings.ToLower(f.Name), size: f.Size, bold: f.Bold}
	if face, ok := s.faces[key]; ok {
		return face
	}
	face := s.fonts.Resolve(f)
	s.faces[key] = face
	return face
}

func (s *Surface) Width() int  { return s.img.Rect.Dx() }
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Bounds returns the full surface rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Image exposes the backing buffer for read-only use such as encoding.
func (s *Surface) Image() *image.RGBA { return s.img }

// Pix returns the raw RGBA pixel bytes, row-major with no padding.
func (s *Surface) Pix() []byte { return s.img.Pix }

// Snapshot returns an independent copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	cp := image.NewRGBA(s.img.Rect)
	copy(cp.Pix, s.img.Pix)
	return cp
}

// FillRect paints rect with c, compositing over existing content.
func (s *Surface) FillRect(rect image.Rectangle, c Color) {
	draw.Draw(s.img, rect.Intersect(s.img.Rect), &image.Uniform{c.RGBA()}, image.Point{}, draw.Over)
}

// Fill paints the whole surface with c.
func (s *Surface) Fill(c Color) {
	s.FillRect(s.img.Rect, c)
}

// ClearRect resets rect to fully transparent.
func (s *Surface) ClearRect(rect image.Rectangle) {
	draw.Draw(s.img, rect.Intersect(s.img.Rect), image.Transparent, image.Point{}, draw.Src)
}

// Clear resets the whole surface to transparent.
func (s *Surface) Clear() {
	s.ClearRect(s.img.Rect)
}

// DrawImage scales src into dst and composites it over existing content.
func (s *Surface) DrawImage(src image.Image, dst image.Rectangle) {
	if src == nil || dst.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(s.img, dst, src, src.Bounds(), xdraw.Over, nil)
}

// StrokeLine draws a straight line of the given pixel width with a square brush.
func (s *Surface) StrokeLine(x1, y1, x2, y2 float64, width float64, c Color) {
	w := int(math.Round(width))
	if w < 1 {
		w = 1
	}
	ix1, iy1 := int(math.Round(x1)), int(math.Round(y1))
	ix2, iy2 := int(math.Round(x2)), int(math.Round(y2))
	src := &image.Uniform{c.RGBA()}
	half := w / 2

	// Bresenham's line algorithm, stamping a w x w brush at each step.
	dx := abs(ix2 - ix1)
	dy := abs(iy2 - iy1)
	sx := 1
	if ix1 > ix2 {
		sx = -1
	}
	sy := 1
	if iy1 > iy2 {
		sy = -1
	}
	err := dx - dy
	for {
		brush := image.Rect(ix1-half, iy1-half, ix1-half+w, iy1-half+w)
		draw.Draw(s.img, brush.Intersect(s.img.Rect), src, image.Point{}, draw.Src)
		if ix1 == ix2 && iy1 == iy2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			ix1 += sx
		}
		if e2 < dx {
			err += dx
			iy1 += sy
		}
	}
}

// MeasureText returns the advance width of text in pixels for the resolved face.
func (s *Surface) MeasureText(text string, f *Font) float64 {
	face := s.face(f)
	w := fixedToFloat(font.MeasureString(face, text))
	if scale := bitmapScale(face, f); scale > 1 {
		w *= float64(scale)
	}
	return w
}

// FillText draws text anchored at (x, y) according to style.Align and
// style.Baseline. Missing glyphs degrade to whatever the resolved face draws.
func (s *Surface) FillText(text string, x, y float64, style TextStyle) {
	if text == "" {
		return
	}
	face := s.face(style.Font)
	if scale := bitmapScale(face, style.Font); scale > 1 {
		s.fillBitmapText(text, x, y, face, scale, style)
		return
	}

	m := face.Metrics()
	width := fixedToFloat(font.MeasureString(face, text))
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	dotX, dotY := anchorDot(x, y, width, ascent, descent, style)

	d := &font.Drawer{
		Dst:  s.img,
		Src:  &image.Uniform{style.Color.RGBA()},
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(dotX), Y: floatToFixed(dotY)},
	}
	d.DrawString(text)
}

// fillBitmapText handles the basicfont fallback, which only exists at 13px:
// text is rasterised at native size into a mask and scaled up so layouts keep
// their proportions even without any TrueType font available.
func (s *Surface) fillBitmapText(text string, x, y float64, face font.Face, scale int, style TextStyle) {
	m := face.Metrics()
	nativeW := font.MeasureString(face, text).Ceil()
	nativeH := (m.Ascent + m.Descent).Ceil()
	if nativeW <= 0 || nativeH <= 0 {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, nativeW, nativeH))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)

	width := float64(nativeW * scale)
	ascent := fixedToFloat(m.Ascent) * float64(scale)
	descent := fixedToFloat(m.Descent) * float64(scale)
	dotX, dotY := anchorDot(x, y, width, ascent, descent, style)
	top := int(math.Round(dotY - ascent))
	left := int(math.Round(dotX))
	dst := image.Rect(left, top, left+nativeW*scale, top+nativeH*scale)

	scaled := image.NewAlpha(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Rect, mask, mask.Rect, xdraw.Src, nil)
	draw.DrawMask(s.img, dst, &image.Uniform{style.Color.RGBA()}, image.Point{}, scaled, image.Point{}, draw.Over)
}

// bitmapScale reports the integer upscale factor needed when face is the
// fixed-size basicfont fallback, or 1 otherwise.
func bitmapScale(face font.Face, f *Font) int {
	if face != basicfont.Face7x13 || f == nil {
		return 1
	}
	scale := int(math.Round(f.Size / float64(basicfont.Face7x13.Height)))
	if scale < 1 {
		scale = 1
	}
	return scale
}

// anchorDot converts an anchored position into the font.Drawer dot
// (left edge, alphabetic baseline).
func anchorDot(x, y, width, ascent, descent float64, style TextStyle) (float64, float64) {
	switch style.Align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}
	switch style.Baseline {
	case BaselineTop:
		y += ascent
	case BaselineMiddle:
		y += (ascent - descent) / 2
	case BaselineBottom:
		y -= descent
	}
	return x, y
}

// At returns the color at (x, y); out-of-bounds reads are transparent.
func (s *Surface) At(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(s.img.Rect) {
		return color.RGBA{}
	}
	return s.img.RGBAAt(x, y)
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
