package gocard

import (
	"math"
	"testing"
)

func TestBoxGeometry(t *testing.T) {
	g := BoxGeometry(2, 1, 0.01)
	if len(g.Positions) != 24 || len(g.Normals) != 24 || len(g.UVs) != 24 {
		t.Fatalf("expected 24 vertices, got %d", len(g.Positions))
	}
	if len(g.Indices) != 36 {
		t.Fatalf("expected 36 indices, got %d", len(g.Indices))
	}
	if len(g.Groups) != 6 {
		t.Fatalf("expected 6 groups, got %d", len(g.Groups))
	}
	for i, grp := range g.Groups {
		if grp.MaterialIndex != i || grp.Start != i*6 || grp.Count != 6 {
			t.Errorf("group %d = %+v", i, grp)
		}
	}

	corners, uvs, normal := g.FaceQuad(FaceFront)
	if normal != (Vec3{0, 0, 1}) {
		t.Errorf("front normal = %v", normal)
	}
	if corners[0] != (Vec3{-1, 0.5, 0.005}) || corners[3] != (Vec3{1, -0.5, 0.005}) {
		t.Errorf("front corners = %v", corners)
	}
	if uvs[0] != [2]float64{0, 1} || uvs[3] != [2]float64{1, 0} {
		t.Errorf("front uvs = %v", uvs)
	}

	// Every vertex sits on its face plane.
	for i, p := range g.Positions {
		n := g.Normals[i]
		d := p.Dot(n)
		want := math.Abs(Vec3{1, 0.5, 0.005}.Dot(Vec3{math.Abs(n.X()), math.Abs(n.Y()), math.Abs(n.Z())}))
		if math.Abs(d-want) > 1e-12 {
			t.Errorf("vertex %d off its face plane: %v", i, p)
		}
	}
}

func TestEdgesGeometry(t *testing.T) {
	edges := EdgesGeometry(2, 1, 0.01)
	if len(edges) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(edges))
	}
	lengths := map[float64]int{}
	for _, e := range edges {
		l := math.Round(e[1].Sub(e[0]).Len()*1000) / 1000
		lengths[l]++
	}
	if lengths[2] != 4 || lengths[1] != 4 || lengths[0.01] != 4 {
		t.Errorf("unexpected edge lengths %v", lengths)
	}
}

func TestNewCardMesh(t *testing.T) {
	front := NewTexture(NewSurface(4, 4, newIsolatedFontCache()))
	back := NewTexture(NewSurface(4, 4, newIsolatedFontCache()))
	m := NewCardMesh(front, back)

	if len(m.Materials) != 6 {
		t.Fatalf("expected 6 materials, got %d", len(m.Materials))
	}
	for i := FaceRight; i <= FaceBottom; i++ {
		sm, ok := m.Materials[i].(*StandardMaterial)
		if !ok {
			t.Fatalf("side %d is %T", i, m.Materials[i])
		}
		if sm.Color != ColorGold || sm.Metalness != 0.8 || sm.Roughness != 0.2 {
			t.Errorf("side %d = %+v", i, sm)
		}
		if m.Texture(i) != nil {
			t.Errorf("side %d should not carry a texture", i)
		}
	}
	if m.Texture(FaceFront) != front || m.Texture(FaceBack) != back {
		t.Error("front/back textures bound to the wrong faces")
	}
	if len(m.Edges) != 1 || m.Edges[0].Material.Color != ColorGold || len(m.Edges[0].Segments) != 12 {
		t.Error("missing gold edge outline")
	}
}

func TestMesh_Transform(t *testing.T) {
	m := &Mesh{RotationY: math.Pi}
	p := m.Transform(Vec3{1, 0.5, 0.005})
	if math.Abs(p.X()+1) > 1e-9 || math.Abs(p.Y()-0.5) > 1e-9 || math.Abs(p.Z()+0.005) > 1e-9 {
		t.Errorf("half turn around Y = %v", p)
	}
}

func TestMesh_TransformNormal(t *testing.T) {
	m := &Mesh{RotationY: math.Pi}
	n := m.TransformNormal(Vec3{0, 0, -1})
	if math.Abs(n.Z()-1) > 1e-9 || math.Abs(n.X()) > 1e-9 {
		t.Errorf("back normal after half turn = %v", n)
	}
	m = &Mesh{RotationX: math.Pi / 2}
	if n := m.TransformNormal(Vec3{0, 1, 0}); math.Abs(n.Z()-1) > 1e-9 {
		t.Errorf("top normal after quarter tilt = %v", n)
	}
}
