package gocard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestCard(t *testing.T, kind LayoutKind, withAssets bool) *Card {
	t.Helper()
	opts := testCardOptions(nil)
	if withAssets {
		opts.Assets = studentAssets(t)
	}
	return NewCard(kind, opts)
}

func TestCard_EmptyFieldsNeverBlank(t *testing.T) {
	for _, kind := range Layouts {
		t.Run(kind.String(), func(t *testing.T) {
			c := newTestCard(t, kind, false)
			ctx := context.Background()
			if err := c.ApplyLayout(ctx); err != nil {
				t.Fatalf("ApplyLayout: %v", err)
			}
			if err := c.Update(ctx, FieldSet{}); err != nil {
				t.Fatalf("Update: %v", err)
			}
			if !hasInk(c.Front(), c.Front().Bounds()) {
				t.Error("front face has no placeholder text")
			}
			if c := c.Front().At(1, 1); !isWhite(c) {
				t.Errorf("front background should be white, got %v", c)
			}
		})
	}
}

func TestCard_ScenarioDefault(t *testing.T) {
	c := newTestCard(t, LayoutDefault, false)
	ctx := context.Background()
	if err := c.ApplyLayout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(ctx, FieldSet{}); err != nil {
		t.Fatal(err)
	}
	// 512x256: "Default Name" centered on y=103, "Contact Info" on y=128.
	front := c.Front()
	if !hasInk(front, image.Rect(180, 92, 332, 114)) {
		t.Error("missing Default Name line")
	}
	if !hasInk(front, image.Rect(180, 118, 332, 139)) {
		t.Error("missing Contact Info line")
	}
	if hasInk(front, image.Rect(0, 0, 512, 80)) || hasInk(front, image.Rect(0, 150, 512, 256)) {
		t.Error("unexpected ink outside the two centered lines")
	}
	if !hasInk(c.Back(), image.Rect(150, 115, 362, 141)) {
		t.Error("missing Back Side Content")
	}
}

func TestCard_ScenarioStudent(t *testing.T) {
	c := newTestCard(t, LayoutStudent, true)
	ctx := context.Background()
	if err := c.ApplyLayout(ctx); err != nil {
		t.Fatal(err)
	}
	err := c.Update(ctx, FieldSet{"name": "Kim", "class": "3", "generation": "12", "club": "Coding"})
	if err != nil {
		t.Fatal(err)
	}

	front := c.Front()
	// Background artwork left of the divider.
	if px := front.At(100, 120); px.R < 200 || px.G > 60 {
		t.Errorf("expected background image at (100,120), got %v", px)
	}
	// Divider at reference x=900 -> 225.
	if px := front.At(225, 128); px.R > 60 {
		t.Errorf("expected divider at (225,128), got %v", px)
	}
	// Name near the top, right of the divider, then three stacked lines.
	for _, band := range []image.Rectangle{
		image.Rect(246, 65, 320, 86),
		image.Rect(243, 104, 340, 122),
		image.Rect(243, 141, 340, 159),
		image.Rect(243, 179, 340, 197),
	} {
		if !hasInk(front, band) {
			t.Errorf("missing text in %v", band)
		}
	}

	back := c.Back()
	if px := back.At(256, 115); px.B < 200 || px.R > 60 {
		t.Errorf("expected logo at back center, got %v", px)
	}
	// School name caption below the logo.
	if !hasInk(back, image.Rect(150, 205, 362, 226)) {
		t.Error("missing school name under the logo")
	}
}

func TestCard_ScenarioInfluencer(t *testing.T) {
	c := newTestCard(t, LayoutInfluencer, false)
	ctx := context.Background()
	if err := c.ApplyLayout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(ctx, FieldSet{"sns": "@handle"}); err != nil {
		t.Fatal(err)
	}
	// "SNS: @handle" renders in Latin glyphs on band 500 -> y=125.
	if !hasInk(c.Front(), image.Rect(150, 113, 362, 138)) {
		t.Error("missing SNS line")
	}
}

func TestCard_UpdateIsIdempotent(t *testing.T) {
	for _, kind := range Layouts {
		t.Run(kind.String(), func(t *testing.T) {
			c := newTestCard(t, kind, true)
			ctx := context.Background()
			if err := c.ApplyLayout(ctx); err != nil {
				t.Fatal(err)
			}
			fields := FieldSet{"name": "Kim", "sns": "@kim", "club": "Coding"}
			if err := c.Update(ctx, fields); err != nil {
				t.Fatal(err)
			}
			first := c.Front().Snapshot()
			if err := c.Update(ctx, fields); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(first.Pix, c.Front().Pix()) {
				t.Error("second update produced different pixels")
			}
		})
	}
}

func TestCard_OneDirtyMarkPerDraw(t *testing.T) {
	c := newTestCard(t, LayoutStudent, true)
	ctx := context.Background()
	front, back := c.FrontTexture(), c.BackTexture()
	f0, b0 := front.Version(), back.Version()

	if err := c.ApplyLayout(ctx); err != nil {
		t.Fatal(err)
	}
	if front.Version() != f0+1 || back.Version() != b0+1 {
		t.Errorf("setup marked front %d, back %d times", front.Version()-f0, back.Version()-b0)
	}
	if err := c.Update(ctx, FieldSet{"name": "Kim"}); err != nil {
		t.Fatal(err)
	}
	if front.Version() != f0+2 {
		t.Errorf("image and text should land in one update, got %d marks", front.Version()-f0-1)
	}
	if back.Version() != b0+1 {
		t.Error("update must not touch the back face")
	}
}

func TestCard_BindingsNeverChange(t *testing.T) {
	c := newTestCard(t, LayoutInfluencer, false)
	mesh := c.Mesh()
	front, back := c.FrontTexture(), c.BackTexture()
	ctx := context.Background()
	if err := c.ApplyLayout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(ctx, FieldSet{"name": "A"}); err != nil {
		t.Fatal(err)
	}
	if c.Mesh() != mesh || mesh.Texture(FaceFront) != front || mesh.Texture(FaceBack) != back {
		t.Error("redraw must not rebind mesh or textures")
	}
}

func TestCard_LogoNeverResolves(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	opts := testCardOptions(blockingFS{release: release})
	opts.AssetTimeout = 50 * time.Millisecond
	c := NewCard(LayoutStudent, opts)

	done := make(chan error, 1)
	go func() { done <- c.ApplyLayout(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ApplyLayout: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ApplyLayout hung on an unresolved asset")
	}
	if !allWhite(c.Back()) {
		t.Error("back face should still be filled white")
	}
	if c.BackTexture().Version() != 2 {
		t.Error("back texture should be marked dirty after the setup draw")
	}
}

func TestCard_MissingAssetsStillDrawText(t *testing.T) {
	c := newTestCard(t, LayoutStudent, false)
	ctx := context.Background()
	if err := c.ApplyLayout(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(ctx, FieldSet{"name": "Kim"}); err != nil {
		t.Fatal(err)
	}
	if !hasInk(c.Front(), image.Rect(246, 65, 320, 86)) {
		t.Error("name should be drawn even without the background image")
	}
	if !allWhite(c.Back()) {
		t.Error("back should be white without the logo")
	}
}

func TestCard_CanceledContext(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	c := NewCard(LayoutStudent, testCardOptions(blockingFS{release: release}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.ApplyLayout(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := NewCard(LayoutDefault, testCardOptions(nil)).ApplyLayout(ctx); err != nil {
		t.Errorf("layouts without assets never wait: %v", err)
	}
}

func TestCard_SaveFaces(t *testing.T) {
	c := newTestCard(t, LayoutDefault, false)
	if err := c.ApplyLayout(context.Background()); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	front, back, err := c.SaveFaces(dir, "kim_", nil)
	if err != nil {
		t.Fatalf("SaveFaces: %v", err)
	}
	if front != filepath.Join(dir, "kim_front.png") || back != filepath.Join(dir, "kim_back.png") {
		t.Errorf("unexpected paths %s %s", front, back)
	}
	for _, p := range []string{front, back} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}
}

// Cards rendered in parallel share one FontCache, as cardgen batches do.
// Run with -race.
func TestCard_ConcurrentCardsShareFontCache(t *testing.T) {
	fonts := newIsolatedFontCache()
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts := testCardOptions(nil)
			opts.FontCache = fonts
			c := NewCard(LayoutInfluencer, opts)
			ctx := context.Background()
			if err := c.ApplyLayout(ctx); err != nil {
				errs <- err
				return
			}
			for j := 0; j < 5; j++ {
				if err := c.Update(ctx, FieldSet{"sns": "@handle", "content": "Go"}); err != nil {
					errs <- err
					return
				}
			}
			if !hasInk(c.Front(), image.Rect(150, 113, 362, 138)) {
				errs <- errors.New("SNS line missing after concurrent render")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
