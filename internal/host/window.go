// Package host shows a card App in a desktop window. It plays the scene-host
// role: it owns the frame loop, uploads dirty textures and draws the card
// mesh through the app's camera.
package host

import (
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	gocard "github.com/VantageDataChat/GoCard"
)

// Options configures the preview window.
type Options struct {
	Title  string
	Width  int
	Height int
	// SpinStep is the manual rotation applied per arrow key press, in radians.
	SpinStep float64
	Logger   *slog.Logger
}

// Run opens a window showing app and blocks until it closes. app must
// already be initialized.
func Run(app *gocard.App, opts Options) error {
	if opts.Title == "" {
		opts.Title = "GoCard (" + gocard.Version + ")"
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 800
	}
	if opts.SpinStep == 0 {
		opts.SpinStep = math.Pi / 12
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if app.Scene() == nil {
		return gocard.ErrNotInitialized
	}

	g := newGame(app, opts)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type game struct {
	app    *gocard.App
	opts   Options
	logger *slog.Logger

	textures map[*gocard.Texture]*ebiten.Image
	solid    *ebiten.Image
	last     time.Time
	paused   bool

	outW, outH int
	viewW      int
	viewH      int

	verts []ebiten.Vertex
}

func newGame(app *gocard.App, opts Options) *game {
	solid := ebiten.NewImage(3, 3)
	solid.Fill(color.White)
	return &game{
		app:      app,
		opts:     opts,
		logger:   opts.Logger,
		textures: make(map[*gocard.Texture]*ebiten.Image),
		solid:    solid,
	}
}

func (g *game) Update() error {
	now := time.Now()
	if g.last.IsZero() {
		g.last = now
	}
	elapsed := now.Sub(g.last)
	g.last = now

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	mesh := g.app.Card().Mesh()
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		mesh.RotationY -= g.opts.SpinStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		mesh.RotationY += g.opts.SpinStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		mesh.RotationX -= g.opts.SpinStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		mesh.RotationX += g.opts.SpinStep
	}
	if !g.paused {
		g.app.Frame(elapsed)
	}
	return nil
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outW || outsideHeight != g.outH {
		g.outW, g.outH = outsideWidth, outsideHeight
		g.viewW, g.viewH = g.app.Resize(outsideWidth, outsideHeight)
		g.logger.Debug("viewport resized", "host", [2]int{outsideWidth, outsideHeight}, "viewport", [2]int{g.viewW, g.viewH})
	}
	return outsideWidth, outsideHeight
}

func (g *game) Draw(screen *ebiten.Image) {
	scene := g.app.Scene()
	screen.Fill(colorOf(scene.Background))

	offX := float32(g.outW-g.viewW) / 2
	offY := float32(g.outH-g.viewH) / 2
	for _, mesh := range scene.Objects {
		g.drawMesh(screen, scene, mesh, offX, offY)
	}
}

// texture returns the GPU image for t, re-uploading pixels when t is dirty.
func (g *game) texture(t *gocard.Texture) *ebiten.Image {
	img, ok := g.textures[t]
	if !ok {
		w, h := t.Size()
		img = ebiten.NewImage(w, h)
		g.textures[t] = img
	}
	t.Upload(func(pix []byte, _, _ int) {
		img.WritePixels(pix)
	})
	return img
}

func (g *game) drawMesh(screen *ebiten.Image, scene *gocard.Scene, mesh *gocard.Mesh, offX, offY float32) {
	cam := scene.Camera
	for face := gocard.FaceRight; face <= gocard.FaceBack; face++ {
		quad, ok := scene.ProjectFace(mesh, face)
		if !ok {
			continue
		}

		var src *ebiten.Image
		var srcW, srcH float32
		tint := gocard.ColorWhite
		if tex := mesh.Texture(face); tex != nil {
			src = g.texture(tex)
			b := src.Bounds()
			srcW, srcH = float32(b.Dx()), float32(b.Dy())
		} else {
			src = g.solid
			tint = scene.Shade(mesh.Materials[face].BaseColor(), quad.Normal)
		}

		g.verts = g.verts[:0]
		for i, p := range quad.Points {
			v := ebiten.Vertex{
				DstX:   float32(p[0]) + offX,
				DstY:   float32(p[1]) + offY,
				ColorR: float32(tint.GetRed()) / 255,
				ColorG: float32(tint.GetGreen()) / 255,
				ColorB: float32(tint.GetBlue()) / 255,
				ColorA: float32(tint.GetAlpha()) / 255,
			}
			if src == g.solid {
				v.SrcX, v.SrcY = 1.5, 1.5
			} else {
				v.SrcX = float32(quad.UVs[i][0]) * srcW
				v.SrcY = float32(1-quad.UVs[i][1]) * srcH
			}
			g.verts = append(g.verts, v)
		}
		screen.DrawTriangles(g.verts, []uint16{0, 2, 1, 2, 3, 1}, src, &ebiten.DrawTrianglesOptions{
			Filter: ebiten.FilterLinear,
		})
	}

	for _, edges := range mesh.Edges {
		width := float32(math.Min(edges.Material.Width, 2))
		clr := colorOf(edges.Material.Color)
		for _, seg := range edges.Segments {
			x0, y0, ok0 := cam.Project(mesh.Transform(seg[0]))
			x1, y1, ok1 := cam.Project(mesh.Transform(seg[1]))
			if !ok0 || !ok1 {
				continue
			}
			vector.StrokeLine(screen,
				float32(x0)+offX, float32(y0)+offY, float32(x1)+offX, float32(y1)+offY,
				width, clr, true)
		}
	}
}

func colorOf(c gocard.Color) color.RGBA {
	return c.RGBA()
}
