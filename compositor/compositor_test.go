package compositor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/present"
	"github.com/gogpu/present/atlas"
	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/surface"
)

type fixture struct {
	dev      *gpu.TestDevice
	tiles    *atlas.Atlas
	surfaces *surface.Registry
	events   *surface.Events
	comp     *Compositor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gpu.NewTestDevice()
	tiles := atlas.NewDefault(dev, dev)
	surfaces := surface.NewRegistry(dev, dev)
	events := surface.NewEvents()
	return &fixture{
		dev:      dev,
		tiles:    tiles,
		surfaces: surfaces,
		events:   events,
		comp:     New(dev, dev, tiles, surfaces, events),
	}
}

func (f *fixture) insertTile(t *testing.T, id uint64, kind present.TextureKind, size present.Size) atlas.Tile {
	t.Helper()
	data := make([]byte, size.Area()*kind.Format().BytesPerPixel())
	tile, err := f.tiles.Insert(atlas.Key{Kind: atlas.KeyGlyph, ID: id}, kind, size, data)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return tile
}

func TestCompositor_FrameProtocol(t *testing.T) {
	f := newFixture(t)

	tile := f.insertTile(t, 1, present.KindMonochrome, present.Size{Width: 4, Height: 4})

	if err := f.comp.DrawTile(tile, present.RectXYWH(0, 0, 4, 4)); !errors.Is(err, ErrNoFrame) {
		t.Errorf("DrawTile outside frame: got %v, want ErrNoFrame", err)
	}
	if _, err := f.comp.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame outside frame: got %v, want ErrNoFrame", err)
	}

	if err := f.comp.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if err := f.comp.BeginFrame(); !errors.Is(err, ErrFrameOpen) {
		t.Errorf("nested BeginFrame: got %v, want ErrFrameOpen", err)
	}
	if _, err := f.comp.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}
}

func TestCompositor_BeginFrameFlushesAtlasUploads(t *testing.T) {
	f := newFixture(t)

	size := present.Size{Width: 2, Height: 2}
	data := []byte{1, 2, 3, 4}
	tile, err := f.tiles.Insert(atlas.Key{Kind: atlas.KeyGlyph, ID: 1}, present.KindMonochrome, size, data)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.comp.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := f.comp.DrawTile(tile, present.RectXYWH(10, 10, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.comp.EndFrame(); err != nil {
		t.Fatal(err)
	}

	// The frame's submit carried the tile upload.
	if got := f.dev.TexelCopies.Load(); got != 1 {
		t.Errorf("TexelCopies = %d, want 1", got)
	}
	info, err := f.tiles.TextureInfo(tile.ID.Texture)
	if err != nil {
		t.Fatal(err)
	}
	tex := info.View.(*gpu.TestTextureView).Texture()
	if px := tex.At(tile.Bounds.Origin.X, tile.Bounds.Origin.Y); px[0] != 1 {
		t.Errorf("tile texel = %d, want 1", px[0])
	}
}

func TestCompositor_DrawTileBatchesPerTexture(t *testing.T) {
	f := newFixture(t)

	size := present.Size{Width: 8, Height: 8}
	mono1 := f.insertTile(t, 1, present.KindMonochrome, size)
	mono2 := f.insertTile(t, 2, present.KindMonochrome, size)
	poly := f.insertTile(t, 3, present.KindPolychrome, size)

	if err := f.comp.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	for _, d := range []struct {
		tile atlas.Tile
		dst  present.Rect
	}{
		{mono1, present.RectXYWH(0, 0, 8, 8)},
		{poly, present.RectXYWH(20, 0, 8, 8)},
		{mono2, present.RectXYWH(10, 0, 8, 8)},
	} {
		if err := f.comp.DrawTile(d.tile, d.dst); err != nil {
			t.Fatal(err)
		}
	}
	frame, err := f.comp.EndFrame()
	if err != nil {
		t.Fatal(err)
	}

	if len(frame.TileBatches) != 2 {
		t.Fatalf("batches = %d, want 2", len(frame.TileBatches))
	}
	if len(frame.TileBatches[0].Draws) != 2 {
		t.Errorf("mono batch draws = %d, want 2", len(frame.TileBatches[0].Draws))
	}
	if frame.TileBatches[0].Draws[0].Src != mono1.Bounds {
		t.Errorf("draw src = %v, want tile bounds %v", frame.TileBatches[0].Draws[0].Src, mono1.Bounds)
	}
	if frame.TileBatches[1].Texture.Format != present.FormatRGBA8Unorm {
		t.Errorf("second batch format = %v, want RGBA8Unorm", frame.TileBatches[1].Texture.Format)
	}
}

func TestCompositor_DrawTileStaleTexture(t *testing.T) {
	f := newFixture(t)

	key := atlas.Key{Kind: atlas.KeyGlyph, ID: 1}
	size := present.Size{Width: 8, Height: 8}
	tile, err := f.tiles.Insert(key, present.KindMonochrome, size, make([]byte, size.Area()))
	if err != nil {
		t.Fatal(err)
	}
	f.tiles.Remove(key) // destroys the sole-occupant texture

	if err := f.comp.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := f.comp.DrawTile(tile, present.RectXYWH(0, 0, 8, 8)); !errors.Is(err, atlas.ErrStaleTexture) {
		t.Errorf("stale draw: got %v, want ErrStaleTexture", err)
	}
	if _, err := f.comp.EndFrame(); err != nil {
		t.Fatal(err)
	}
}

func TestCompositor_DrawSurfaceConsumesPending(t *testing.T) {
	f := newFixture(t)

	h, err := surface.NewHandle(f.surfaces, f.events, 800, 600, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	if err := h.Present(); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.events.TryRecv(); !ok {
		t.Fatal("present did not wake")
	}

	if err := f.comp.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := f.comp.DrawSurface(h.ID(), present.RectXYWH(0, 0, 800, 600)); err != nil {
		t.Fatal(err)
	}
	frame, err := f.comp.EndFrame()
	if err != nil {
		t.Fatal(err)
	}

	if len(frame.Surfaces) != 1 {
		t.Fatalf("surface draws = %d, want 1", len(frame.Surfaces))
	}
	draw := frame.Surfaces[0]
	front, _ := f.surfaces.ViewAt(h.ID(), 1) // present flipped front to 1
	if draw.View != front {
		t.Error("surface draw does not carry the front view")
	}
	if (draw.Size != present.Size{Width: 800, Height: 600}) {
		t.Errorf("surface draw size = %v", draw.Size)
	}

	// Consumption reopened the wake window.
	if err := h.Present(); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.events.TryRecv(); !ok {
		t.Error("present after consumption did not wake")
	}
}

func TestCompositor_ViewCacheFollowsResize(t *testing.T) {
	f := newFixture(t)

	h, err := surface.NewHandle(f.surfaces, f.events, 100, 100, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	drawOnce := func() {
		t.Helper()
		if err := f.comp.BeginFrame(); err != nil {
			t.Fatal(err)
		}
		if err := f.comp.DrawSurface(h.ID(), present.RectXYWH(0, 0, 100, 100)); err != nil {
			t.Fatal(err)
		}
		if _, err := f.comp.EndFrame(); err != nil {
			t.Fatal(err)
		}
	}

	drawOnce()
	before, ok := f.comp.CachedViews(h.ID())
	if !ok {
		t.Fatal("views not cached after first draw")
	}

	// No-op resize keeps the cached pair valid.
	if err := h.Resize(100, 100); err != nil {
		t.Fatal(err)
	}
	drawOnce()
	unchanged, _ := f.comp.CachedViews(h.ID())
	if unchanged != before {
		t.Error("no-op resize invalidated the view cache")
	}

	// Real resize replaces the buffers; the cache must follow.
	if err := h.Resize(200, 150); err != nil {
		t.Fatal(err)
	}
	drawOnce()
	after, ok := f.comp.CachedViews(h.ID())
	if !ok {
		t.Fatal("views not cached after resize")
	}
	if after == before {
		t.Error("view cache kept stale buffers across resize")
	}
}

func TestCompositor_RunDeliversWakes(t *testing.T) {
	f := newFixture(t)

	h, err := surface.NewHandle(f.surfaces, f.events, 64, 64, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	ctx, cancel := context.WithCancel(context.Background())
	woke := make(chan surface.ID, 1)
	done := make(chan error, 1)
	go func() {
		done <- f.comp.Run(ctx, func(id surface.ID) {
			select {
			case woke <- id:
			default:
			}
		})
	}()

	if err := h.Present(); err != nil {
		t.Fatal(err)
	}

	select {
	case id := <-woke:
		if id != h.ID() {
			t.Errorf("woke for %d, want %d", id, h.ID())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no wake delivered")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit on cancel")
	}
}
