package gocard

import "sync"

// Texture is the renderer-facing view of a Surface. Pixels only reach the
// renderer after the texture has been marked dirty: a redraw that is not
// followed by MarkDirty stays invisible.
//
// Texture is safe for concurrent use by one drawing goroutine and one
// rendering goroutine.
type Texture struct {
	mu       sync.RWMutex
	surface  *Surface
	version  uint64 // bumped by every MarkDirty
	uploaded uint64 // version last handed to Upload
}

// NewTexture binds a texture to s. The texture starts dirty so the first
// frame samples whatever s already holds.
func NewTexture(s *Surface) *Texture {
	return &Texture{surface: s, version: 1}
}

// Redraw runs draw with exclusive access to the surface and marks the
// texture dirty once when it returns, so the renderer never samples a
// half-drawn batch.
func (t *Texture) Redraw(draw func(s *Surface)) {
	t.mu.Lock()
	draw(t.surface)
	t.version++
	t.mu.Unlock()
}

// MarkDirty flags the surface for re-upload on the next frame.
func (t *Texture) MarkDirty() {
	t.mu.Lock()
	t.version++
	t.mu.Unlock()
}

// NeedsUpdate reports whether the surface changed since the last upload.
func (t *Texture) NeedsUpdate() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version != t.uploaded
}

// Version returns the dirty counter.
func (t *Texture) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Upload hands the surface pixels to fn if the texture is dirty and records
// the upload. It reports whether fn was called. pix must not be retained.
func (t *Texture) Upload(fn func(pix []byte, width, height int)) bool {
	t.mu.RLock()
	if t.version == t.uploaded {
		t.mu.RUnlock()
		return false
	}
	v := t.version
	fn(t.surface.Pix(), t.surface.Width(), t.surface.Height())
	t.mu.RUnlock()

	t.mu.Lock()
	if t.uploaded < v {
		t.uploaded = v
	}
	t.mu.Unlock()
	return true
}

// View gives fn read access to the surface regardless of dirty state.
func (t *Texture) View(fn func(s *Surface) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fn(t.surface)
}

// Size returns the surface dimensions.
func (t *Texture) Size() (int, int) {
	return t.surface.Width(), t.surface.Height()
}
