package gocard

import (
	"context"
	"image"
	"io/fs"
	"log/slog"
	"time"
)

// CardOptions configures a Card.
type CardOptions struct {
	// Width and Height of each face surface in pixels. Default: 2048x1024.
	Width  int
	Height int
	// Assets is where the student layout finds its images. Nil disables them.
	Assets fs.FS
	// AssetTimeout bounds how long a draw waits for an image before drawing
	// without it. Default: 10s.
	AssetTimeout time.Duration
	// FontCache allows sharing a pre-configured FontCache across cards.
	// If nil, a new FontCache is created using FontDirs.
	FontCache *FontCache
	// FontDirs specifies additional directories to search for fonts.
	FontDirs []string
	// Logger receives asset and draw diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultCardOptions returns the options used when NewCard gets nil.
func DefaultCardOptions() *CardOptions {
	return &CardOptions{
		Width:        DefaultSurfaceWidth,
		Height:       DefaultSurfaceHeight,
		AssetTimeout: 10 * time.Second,
	}
}

// Card is one business card: a front/back surface pair, their textures and
// the box mesh that displays them. All three are created once and only the
// surface pixels change afterwards.
type Card struct {
	kind     LayoutKind
	frame    frame
	front    *Surface
	back     *Surface
	frontTex *Texture
	backTex  *Texture
	mesh     *Mesh

	assets       *AssetLoader
	assetTimeout time.Duration
	logger       *slog.Logger
}

// NewCard allocates the surfaces, textures and mesh for kind. Nothing is
// drawn until ApplyLayout.
func NewCard(kind LayoutKind, opts *CardOptions) *Card {
	if opts == nil {
		opts = DefaultCardOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fonts := opts.FontCache
	if fonts == nil {
		fonts = NewFontCache(opts.FontDirs...)
	}
	timeout := opts.AssetTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	front := NewSurface(opts.Width, opts.Height, fonts)
	back := NewSurface(opts.Width, opts.Height, fonts)
	frontTex := NewTexture(front)
	backTex := NewTexture(back)

	return &Card{
		kind:         kind,
		frame:        newFrame(front.Width(), front.Height()),
		front:        front,
		back:         back,
		frontTex:     frontTex,
		backTex:      backTex,
		mesh:         NewCardMesh(frontTex, backTex),
		assets:       NewAssetLoader(opts.Assets, logger),
		assetTimeout: timeout,
		logger:       logger.With("layout", kind.String()),
	}
}

func (c *Card) Layout() LayoutKind     { return c.kind }
func (c *Card) Front() *Surface        { return c.front }
func (c *Card) Back() *Surface         { return c.back }
func (c *Card) FrontTexture() *Texture { return c.frontTex }
func (c *Card) BackTexture() *Texture  { return c.backTex }
func (c *Card) Mesh() *Mesh            { return c.mesh }

// ApplyLayout performs the setup draw of both faces. Images are awaited
// before drawing so each face is marked dirty exactly once. The only error
// is ctx cancellation; missing images just leave their ops out.
func (c *Card) ApplyLayout(ctx context.Context) error {
	front := setupFrontPlan(c.kind, c.frame)
	back := setupBackPlan(c.kind, c.frame)
	return c.draw(ctx, "setup", []*plan{front, back}, []*Texture{c.frontTex, c.backTex})
}

// Update performs the update draw of the front face from fields.
func (c *Card) Update(ctx context.Context, fields FieldSet) error {
	front := updateFrontPlan(c.kind, c.frame, fields.Normalized())
	return c.draw(ctx, "update", []*plan{front}, []*Texture{c.frontTex})
}

func (c *Card) draw(ctx context.Context, stage string, plans []*plan, textures []*Texture) error {
	var names []string
	for _, p := range plans {
		names = append(names, p.assets()...)
	}
	images, err := c.resolve(ctx, names)
	if err != nil {
		return err
	}
	for i, p := range plans {
		var skipped int
		textures[i].Redraw(func(s *Surface) {
			skipped = p.execute(s, images)
		})
		if skipped > 0 {
			c.logger.Debug("draw ops skipped", "stage", stage, "skipped", skipped)
		}
	}
	return nil
}

// resolve starts every load before waiting on any of them. Failed or timed
// out loads are logged and left out of the result.
func (c *Card) resolve(ctx context.Context, names []string) (map[string]image.Image, error) {
	images := make(map[string]image.Image, len(names))
	if len(names) == 0 {
		return images, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, c.assetTimeout)
	defer cancel()

	pending := make([]*Pending, 0, len(names))
	for _, name := range names {
		if _, dup := images[name]; dup {
			continue
		}
		images[name] = nil
		pending = append(pending, c.assets.Load(waitCtx, name))
	}
	for _, p := range pending {
		img, err := p.Wait(waitCtx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("asset unavailable, drawing without it", "asset", p.Name(), "error", err)
			continue
		}
		images[p.Name()] = img
	}
	return images, nil
}
