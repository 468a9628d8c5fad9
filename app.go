package gocard

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"
)

// ErrNotInitialized is returned by App methods called before Initialize.
var ErrNotInitialized = errors.New("app not initialized")

// AppOptions configures an App.
type AppOptions struct {
	Card *CardOptions
	// ViewportScale is the fraction of the host size the scene occupies. Default: 0.8.
	ViewportScale float64
	// SpinRate rotates the card around Y, in radians per second. Zero keeps it still.
	SpinRate float64
	Logger   *slog.Logger
}

// App ties a Card to a Scene and exposes the lifecycle a host drives:
// Initialize once, Resize whenever the host size changes, Frame every
// frame and Submit when the user sends field values.
type App struct {
	card   *Card
	scene  *Scene
	opts   AppOptions
	logger *slog.Logger

	mu          sync.Mutex
	initialized bool
	viewW       int
	viewH       int
}

// NewApp creates an App for kind. Nothing is drawn until Initialize.
func NewApp(kind LayoutKind, opts *AppOptions) *App {
	var o AppOptions
	if opts != nil {
		o = *opts
	}
	if o.ViewportScale <= 0 || o.ViewportScale > 1 {
		o.ViewportScale = 0.8
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	cardOpts := o.Card
	if cardOpts == nil {
		cardOpts = DefaultCardOptions()
	}
	if cardOpts.Logger == nil {
		cp := *cardOpts
		cp.Logger = o.Logger
		cardOpts = &cp
	}
	return &App{
		card:   NewCard(kind, cardOpts),
		opts:   o,
		logger: o.Logger,
	}
}

// Initialize performs the setup draw and assembles the scene.
func (a *App) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return nil
	}
	if err := a.card.ApplyLayout(ctx); err != nil {
		return err
	}
	a.scene = &Scene{
		Background: ColorSlate,
		Camera:     NewPerspectiveCamera(1),
		Lights:     cardLights(),
		Objects:    []*Mesh{a.card.Mesh()},
	}
	a.scene.Camera.SetViewport(a.viewW, a.viewH)
	a.initialized = true
	a.logger.Info("card initialized", "layout", a.card.Layout().String(),
		"width", a.card.Front().Width(), "height", a.card.Front().Height())
	return nil
}

// Resize fits the viewport to a host of the given size and returns the
// viewport dimensions.
func (a *App) Resize(hostWidth, hostHeight int) (int, int) {
	w := int(math.Round(float64(hostWidth) * a.opts.ViewportScale))
	h := int(math.Round(float64(hostHeight) * a.opts.ViewportScale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	a.mu.Lock()
	a.viewW, a.viewH = w, h
	if a.scene != nil {
		a.scene.Camera.SetViewport(w, h)
	}
	a.mu.Unlock()
	return w, h
}

// Frame advances animation state by elapsed.
func (a *App) Frame(elapsed time.Duration) {
	if a.opts.SpinRate == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scene == nil {
		return
	}
	m := a.card.Mesh()
	m.RotationY = math.Mod(m.RotationY+a.opts.SpinRate*elapsed.Seconds(), 2*math.Pi)
}

// Submit redraws the card front from user fields.
func (a *App) Submit(ctx context.Context, fields FieldSet) error {
	a.mu.Lock()
	ready := a.initialized
	a.mu.Unlock()
	if !ready {
		return ErrNotInitialized
	}
	if err := a.card.Update(ctx, fields); err != nil {
		return err
	}
	a.logger.Info("card updated", "layout", a.card.Layout().String(), "fields", len(fields))
	return nil
}

// Scene returns the scene, or nil before Initialize.
func (a *App) Scene() *Scene {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scene
}

// Card returns the underlying card.
func (a *App) Card() *Card { return a.card }
