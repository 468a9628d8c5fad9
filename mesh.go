package gocard

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is a point or direction in scene space.
type Vec3 = mgl64.Vec3

// Face indexes the six sides of a box, in material-group order.
type Face int

const (
	FaceRight  Face = iota // +X
	FaceLeft               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
	FaceFront              // +Z
	FaceBack               // -Z
)

// Group is a contiguous index range drawn with one material.
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}

// Geometry is an indexed triangle list with per-vertex normals and UVs.
type Geometry struct {
	Positions []Vec3
	Normals   []Vec3
	UVs       [][2]float64
	Indices   []uint16
	Groups    []Group
}

// FaceQuad returns the four corners of a box face in UV order
// (0,1) (1,1) (0,0) (1,0), i.e. top-left, top-right, bottom-left, bottom-right.
func (g *Geometry) FaceQuad(face Face) (corners [4]Vec3, uvs [4][2]float64, normal Vec3) {
	base := int(face) * 4
	copy(corners[:], g.Positions[base:base+4])
	copy(uvs[:], g.UVs[base:base+4])
	return corners, uvs, g.Normals[base]
}

// BoxGeometry builds an axis-aligned box centered on the origin with one
// material group per face.
func BoxGeometry(width, height, depth float64) *Geometry {
	g := &Geometry{}
	w, h, d := width/2, height/2, depth/2

	// corner maps (u, v) to a face corner as seen from outside the box.
	type faceDef struct {
		normal Vec3
		corner func(u, v float64) Vec3
	}
	faces := [6]faceDef{
		{Vec3{1, 0, 0}, func(u, v float64) Vec3 { return Vec3{w, v * h, -u * d} }},
		{Vec3{-1, 0, 0}, func(u, v float64) Vec3 { return Vec3{-w, v * h, u * d} }},
		{Vec3{0, 1, 0}, func(u, v float64) Vec3 { return Vec3{u * w, h, -v * d} }},
		{Vec3{0, -1, 0}, func(u, v float64) Vec3 { return Vec3{u * w, -h, v * d} }},
		{Vec3{0, 0, 1}, func(u, v float64) Vec3 { return Vec3{u * w, v * h, d} }},
		{Vec3{0, 0, -1}, func(u, v float64) Vec3 { return Vec3{-u * w, v * h, -d} }},
	}
	for i, f := range faces {
		base := uint16(len(g.Positions))
		for _, c := range [4][2]float64{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}} {
			g.Positions = append(g.Positions, f.corner(c[0], c[1]))
			g.Normals = append(g.Normals, f.normal)
			g.UVs = append(g.UVs, [2]float64{(c[0] + 1) / 2, (c[1] + 1) / 2})
		}
		start := len(g.Indices)
		g.Indices = append(g.Indices, base, base+2, base+1, base+2, base+3, base+1)
		g.Groups = append(g.Groups, Group{Start: start, Count: 6, MaterialIndex: i})
	}
	return g
}

// EdgesGeometry returns the 12 box edges as line segment endpoint pairs.
func EdgesGeometry(width, height, depth float64) [][2]Vec3 {
	w, h, d := width/2, height/2, depth/2
	corner := func(x, y, z float64) Vec3 { return Vec3{x * w, y * h, z * d} }
	var edges [][2]Vec3
	for _, z := range []float64{-1, 1} {
		edges = append(edges,
			[2]Vec3{corner(-1, -1, z), corner(1, -1, z)},
			[2]Vec3{corner(1, -1, z), corner(1, 1, z)},
			[2]Vec3{corner(1, 1, z), corner(-1, 1, z)},
			[2]Vec3{corner(-1, 1, z), corner(-1, -1, z)},
		)
	}
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			edges = append(edges, [2]Vec3{corner(x, y, -1), corner(x, y, 1)})
		}
	}
	return edges
}

// Material is implemented by the surface materials a Mesh can carry.
type Material interface {
	BaseColor() Color
}

// StandardMaterial is a lit metallic/rough material.
type StandardMaterial struct {
	Color     Color
	Metalness float64
	Roughness float64
}

func (m *StandardMaterial) BaseColor() Color { return m.Color }

// BasicMaterial is an unlit material sampling a texture.
type BasicMaterial struct {
	Map *Texture
}

func (m *BasicMaterial) BaseColor() Color { return ColorWhite }

// LineMaterial styles line segments.
type LineMaterial struct {
	Color Color
	Width float64
}

// LineSegments is a set of unconnected lines attached to a mesh.
type LineSegments struct {
	Segments [][2]Vec3
	Material *LineMaterial
}

// Mesh is geometry plus one material per group, with an orientation and
// decorative children.
type Mesh struct {
	Geometry  *Geometry
	Materials []Material
	Edges     []*LineSegments

	// Rotation in radians around X and Y, applied X first.
	RotationX float64
	RotationY float64
}

// Card mesh dimensions in scene units.
const (
	CardWidth  = 2.0
	CardHeight = 1.0
	CardDepth  = 0.01
)

// NewCardMesh builds the card box: four gold metallic sides, the front and
// back textures on the +Z and -Z faces, and a gold edge outline.
func NewCardMesh(front, back *Texture) *Mesh {
	side := func() Material {
		return &StandardMaterial{Color: ColorGold, Metalness: 0.8, Roughness: 0.2}
	}
	return &Mesh{
		Geometry: BoxGeometry(CardWidth, CardHeight, CardDepth),
		Materials: []Material{
			side(), side(), side(), side(),
			&BasicMaterial{Map: front},
			&BasicMaterial{Map: back},
		},
		Edges: []*LineSegments{{
			Segments: EdgesGeometry(CardWidth, CardHeight, CardDepth),
			Material: &LineMaterial{Color: ColorGold, Width: 10},
		}},
	}
}

// Model returns the local-to-world matrix.
func (m *Mesh) Model() mgl64.Mat4 {
	return mgl64.HomogRotate3DY(m.RotationY).Mul4(mgl64.HomogRotate3DX(m.RotationX))
}

// Transform applies the mesh rotation to a local-space point.
func (m *Mesh) Transform(p Vec3) Vec3 {
	return m.Model().Mul4x1(p.Vec4(1)).Vec3()
}

// TransformNormal rotates a local-space direction into world space.
func (m *Mesh) TransformNormal(n Vec3) Vec3 {
	return m.Model().Mul4x1(n.Vec4(0)).Vec3()
}

// Texture returns the texture bound to face, or nil for untextured sides.
func (m *Mesh) Texture(face Face) *Texture {
	if int(face) >= len(m.Materials) {
		return nil
	}
	if bm, ok := m.Materials[face].(*BasicMaterial); ok {
		return bm.Map
	}
	return nil
}
