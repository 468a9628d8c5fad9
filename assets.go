package gocard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// Asset names the student layout loads from the asset file system.
const (
	AssetLogo       = "Lion.png"
	AssetBackground = "Magnolia.png"
)

// maxAssetSize limits how much of an asset file is read into memory.
const maxAssetSize = 32 << 20

var (
	// ErrAssetNotFound is returned when an asset name does not exist.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrNoAssets is returned by loaders created without a file system.
	ErrNoAssets = errors.New("no asset source configured")
)

// AssetLoader decodes images from a file system in the background and caches
// the results by name.
type AssetLoader struct {
	fsys   fs.FS
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]image.Image
	group singleflight.Group
}

// NewAssetLoader creates a loader reading from fsys. A nil fsys is allowed;
// every load then fails with ErrNoAssets.
func NewAssetLoader(fsys fs.FS, logger *slog.Logger) *AssetLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetLoader{
		fsys:   fsys,
		logger: logger,
		cache:  make(map[string]image.Image),
	}
}

// Pending is the eventual result of an asset load.
type Pending struct {
	name string
	done chan struct{}
	img  image.Image
	err  error
}

// Name returns the asset name being loaded.
func (p *Pending) Name() string { return p.name }

// Ready reports whether the load has finished, without blocking.
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the load finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load starts loading name and returns immediately. Concurrent loads of the
// same name share one decode. ctx only bounds the background work.
func (l *AssetLoader) Load(ctx context.Context, name string) *Pending {
	p := &Pending{name: name, done: make(chan struct{})}

	l.mu.RLock()
	img, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		p.img = img
		close(p.done)
		return p
	}

	go func() {
		defer close(p.done)
		ch := l.group.DoChan(name, func() (any, error) {
			return l.decode(name)
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				p.err = res.Err
				return
			}
			p.img = res.Val.(image.Image)
		case <-ctx.Done():
			p.err = ctx.Err()
		}
	}()
	return p
}

func (l *AssetLoader) decode(name string) (image.Image, error) {
	if l.fsys == nil {
		return nil, fmt.Errorf("load %s: %w", name, ErrNoAssets)
	}
	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", name, ErrAssetNotFound)
		}
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if info.Size() > maxAssetSize {
		return nil, fmt.Errorf("load %s: file too large: %d bytes (max %d)", name, info.Size(), maxAssetSize)
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	l.logger.Debug("asset decoded", "name", name, "format", format, "size", img.Bounds().Size())

	l.mu.Lock()
	l.cache[name] = img
	l.mu.Unlock()
	return img, nil
}

// Forget drops a cached image so the next Load re-reads it.
func (l *AssetLoader) Forget(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()
	l.group.Forget(name)
}
