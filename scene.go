package gocard

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PerspectiveCamera is a pinhole camera on the +Z axis looking at the origin.
type PerspectiveCamera struct {
	FOV      float64 // vertical field of view in degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position Vec3

	viewportW float64
	viewportH float64
}

// NewPerspectiveCamera returns the card viewer camera: 75° FOV, two units
// in front of the card.
func NewPerspectiveCamera(aspect float64) *PerspectiveCamera {
	if aspect <= 0 {
		aspect = 1
	}
	return &PerspectiveCamera{
		FOV:      75,
		Aspect:   aspect,
		Near:     0.1,
		Far:      100,
		Position: Vec3{0, 0, 2},
	}
}

// SetViewport records the output size in pixels and updates the aspect ratio.
func (c *PerspectiveCamera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.viewportW = float64(width)
	c.viewportH = float64(height)
	c.Aspect = c.viewportW / c.viewportH
}

// Viewport returns the size last passed to SetViewport.
func (c *PerspectiveCamera) Viewport() (int, int) {
	return int(c.viewportW), int(c.viewportH)
}

// ViewProjection returns the combined view and perspective matrix for the
// camera looking at the origin with +Y up.
func (c *PerspectiveCamera) ViewProjection() mgl64.Mat4 {
	proj := mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
	view := mgl64.LookAtV(c.Position, Vec3{}, Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// Project maps a world-space point to viewport pixels with y pointing down.
// ok is false when the point lies outside the near/far range.
func (c *PerspectiveCamera) Project(p Vec3) (x, y float64, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, false
	}
	x = (ndc.X() + 1) / 2 * c.viewportW
	y = (1 - ndc.Y()) / 2 * c.viewportH
	return x, y, true
}

// Facing reports whether a surface at point p with world normal n faces the camera.
func (c *PerspectiveCamera) Facing(p, n Vec3) bool {
	return c.Position.Sub(p).Dot(n) > 0
}

// DirectionalLight is a light at infinity shining from Position toward the origin.
type DirectionalLight struct {
	Color     Color
	Intensity float64
	Position  Vec3
}

// Irradiance is the light arriving at a surface with normal n, in [0, Intensity].
func (l *DirectionalLight) Irradiance(n Vec3) float64 {
	if l.Position.Len() == 0 {
		return 0
	}
	return math.Max(0, n.Dot(l.Position.Normalize())) * l.Intensity
}

// cardLights surrounds the card with four white lights so every edge catches a highlight.
func cardLights() []*DirectionalLight {
	positions := []Vec3{{1, -4, 0}, {-4, 1, 0}, {4, 1, 0}, {1, 4, 0}}
	lights := make([]*DirectionalLight, len(positions))
	for i, p := range positions {
		lights[i] = &DirectionalLight{Color: ColorWhite, Intensity: 5, Position: p}
	}
	return lights
}

// Scene is everything a host needs to draw one frame.
type Scene struct {
	Background Color
	Camera     *PerspectiveCamera
	Lights     []*DirectionalLight
	Objects    []*Mesh
}

// Shade returns base lit by the scene's lights for normal n, using a fixed
// ambient term and clamping at full brightness.
func (s *Scene) Shade(base Color, n Vec3) Color {
	const ambient = 0.35
	light := ambient
	for _, l := range s.Lights {
		light += l.Irradiance(n) * 0.1
	}
	light = math.Min(light, 1.2)
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, float64(v)*light))
	}
	return NewColor(hexByte(base.GetAlpha()) + hexByte(scale(base.GetRed())) +
		hexByte(scale(base.GetGreen())) + hexByte(scale(base.GetBlue())))
}

func hexByte(v uint8) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[v>>4], digits[v&0xF]})
}

// ProjectedQuad is a mesh face in viewport pixels.
type ProjectedQuad struct {
	Points [4][2]float64 // top-left, top-right, bottom-left, bottom-right
	UVs    [4][2]float64
	Normal Vec3 // world-space
}

// ProjectFace transforms and projects one face of mesh. ok is false when the
// face points away from the camera or a corner falls outside the clip range.
func (s *Scene) ProjectFace(mesh *Mesh, face Face) (ProjectedQuad, bool) {
	var q ProjectedQuad
	corners, uvs, normal := mesh.Geometry.FaceQuad(face)
	q.UVs = uvs
	q.Normal = mesh.TransformNormal(normal)

	var world [4]Vec3
	for i, c := range corners {
		world[i] = mesh.Transform(c)
	}
	if !s.Camera.Facing(world[0], q.Normal) {
		return q, false
	}
	for i, p := range world {
		x, y, ok := s.Camera.Project(p)
		if !ok {
			return q, false
		}
		q.Points[i] = [2]float64{x, y}
	}
	return q, true
}
