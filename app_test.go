package gocard

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestPerspectiveCamera_Project(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	cam.SetViewport(800, 400)
	if cam.Aspect != 2 {
		t.Errorf("aspect = %v", cam.Aspect)
	}

	x, y, ok := cam.Project(Vec3{})
	if !ok || x != 400 || y != 200 {
		t.Errorf("origin projects to (%v,%v,%v), want viewport center", x, y, ok)
	}
	xr, yt, _ := cam.Project(Vec3{0.5, 0.5, 0})
	if xr <= 400 || yt >= 200 {
		t.Errorf("up-right point projects to (%v,%v)", xr, yt)
	}
	if _, _, ok := cam.Project(Vec3{0, 0, 5}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestScene_ProjectFace(t *testing.T) {
	app := NewApp(LayoutDefault, &AppOptions{Card: testCardOptions(nil), Logger: quietLogger()})
	if err := app.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	w, h := app.Resize(1000, 500)
	if w != 800 || h != 400 {
		t.Errorf("viewport = %dx%d, want 800x400", w, h)
	}
	scene := app.Scene()
	mesh := app.Card().Mesh()

	q, ok := scene.ProjectFace(mesh, FaceFront)
	if !ok {
		t.Fatal("front face should be visible")
	}
	if q.Points[0][0] >= q.Points[1][0] || q.Points[0][1] >= q.Points[2][1] {
		t.Errorf("front quad not upright: %v", q.Points)
	}
	if _, ok := scene.ProjectFace(mesh, FaceBack); ok {
		t.Error("back face should be culled")
	}

	mesh.RotationY = math.Pi
	if _, ok := scene.ProjectFace(mesh, FaceBack); !ok {
		t.Error("back face should be visible after a half turn")
	}
	if _, ok := scene.ProjectFace(mesh, FaceFront); ok {
		t.Error("front face should be culled after a half turn")
	}
}

func TestScene_Lights(t *testing.T) {
	lights := cardLights()
	if len(lights) != 4 {
		t.Fatalf("expected 4 lights, got %d", len(lights))
	}
	for _, l := range lights {
		if l.Intensity != 5 || l.Color != ColorWhite {
			t.Errorf("unexpected light %+v", l)
		}
	}
	s := &Scene{Lights: lights}
	top := s.Shade(ColorGold, Vec3{0, 1, 0})
	if top.GetRed() <= ColorGold.GetRed()/2 {
		t.Errorf("lit side too dark: %v", top)
	}
}

func TestApp_Lifecycle(t *testing.T) {
	app := NewApp(LayoutInfluencer, &AppOptions{
		Card:     testCardOptions(nil),
		SpinRate: 1,
		Logger:   quietLogger(),
	})
	ctx := context.Background()

	if err := app.Submit(ctx, FieldSet{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Submit before Initialize = %v", err)
	}
	if app.Scene() != nil {
		t.Error("scene should not exist before Initialize")
	}
	app.Frame(time.Second) // no scene yet: no-op

	if err := app.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := app.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if v := app.Card().FrontTexture().Version(); v != 2 {
		t.Errorf("Initialize should draw once, front version %d", v)
	}
	scene := app.Scene()
	if scene.Background != ColorSlate || len(scene.Objects) != 1 || scene.Camera.Position.Z() != 2 {
		t.Errorf("unexpected scene %+v", scene)
	}

	app.Frame(500 * time.Millisecond)
	if got := app.Card().Mesh().RotationY; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("rotation after 0.5s = %v", got)
	}

	if err := app.Submit(ctx, FieldSet{"sns": "@x"}); err != nil {
		t.Fatal(err)
	}
	if v := app.Card().FrontTexture().Version(); v != 3 {
		t.Errorf("Submit should mark the front once more, version %d", v)
	}
}

func TestApp_ResizeClamps(t *testing.T) {
	app := NewApp(LayoutDefault, &AppOptions{Card: testCardOptions(nil), ViewportScale: 5})
	if w, h := app.Resize(0, 0); w != 1 || h != 1 {
		t.Errorf("degenerate host gave %dx%d", w, h)
	}
	if w, _ := app.Resize(100, 100); w != 80 {
		t.Errorf("invalid scale should fall back to 0.8, got width %d", w)
	}
}

func TestApp_ResizeBeforeInitialize(t *testing.T) {
	app := NewApp(LayoutDefault, &AppOptions{Card: testCardOptions(nil), Logger: quietLogger()})
	app.Resize(500, 500)
	if err := app.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w, h := app.Scene().Camera.Viewport(); w != 400 || h != 400 {
		t.Errorf("viewport = %dx%d, want the size from the earlier Resize", w, h)
	}
}
