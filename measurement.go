package gocard

import "math"

// Card faces are designed against a 2048x1024 reference frame. Layout routines
// express every coordinate in reference pixels and a frame scales them to the
// actual surface size, so changing the surface resolution keeps proportions.
const (
	ReferenceWidth  = 2048
	ReferenceHeight = 1024

	// maxCoord bounds scaled coordinates so image.Rect never overflows.
	maxCoord = math.MaxInt32 / 4
)

// frame maps reference-frame coordinates to surface pixels.
type frame struct {
	w, h   float64
	scaleX float64
	scaleY float64
}

func newFrame(width, height int) frame {
	return frame{
		w:      float64(width),
		h:      float64(height),
		scaleX: float64(width) / ReferenceWidth,
		scaleY: float64(height) / ReferenceHeight,
	}
}

// X converts a reference x coordinate to surface pixels.
func (f frame) X(ref float64) float64 { return clampCoord(ref * f.scaleX) }

// Y converts a reference y coordinate to surface pixels.
func (f frame) Y(ref float64) float64 { return clampCoord(ref * f.scaleY) }

// Size scales a length that is not tied to an axis (font sizes, line widths).
func (f frame) Size(ref float64) float64 {
	return clampCoord(ref * math.Min(f.scaleX, f.scaleY))
}

// CenterX and CenterY return the surface midpoint, offset by a reference delta.
func (f frame) CenterX(refDelta float64) float64 { return f.w/2 + f.X(refDelta) }
func (f frame) CenterY(refDelta float64) float64 { return f.h/2 + f.Y(refDelta) }

// Short is the shorter surface side in pixels.
func (f frame) Short() float64 { return math.Min(f.w, f.h) }

func clampCoord(v float64) float64 {
	if v > maxCoord {
		return maxCoord
	}
	if v < -maxCoord {
		return -maxCoord
	}
	return v
}
