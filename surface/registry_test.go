package surface

import (
	"errors"
	"testing"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

func newTestRegistry() (*Registry, *gpu.TestDevice) {
	dev := gpu.NewTestDevice()
	return NewRegistry(dev, dev), dev
}

func backingTexture(t *testing.T, view gpu.TextureView) *gpu.TestTexture {
	t.Helper()
	tv, ok := view.(*gpu.TestTextureView)
	if !ok {
		t.Fatalf("unexpected view type %T", view)
	}
	return tv.Texture()
}

func TestRegistry_CreateAssignsMonotonicIDs(t *testing.T) {
	r, _ := newTestRegistry()

	first, err := r.Create(64, 64, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := r.Create(64, 64, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if first != 1 {
		t.Errorf("first id = %d, want 1", first)
	}
	if second != first+1 {
		t.Errorf("second id = %d, want %d", second, first+1)
	}

	// Removal never frees an id for reuse.
	r.Remove(first)
	third, err := r.Create(64, 64, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	if third != second+1 {
		t.Errorf("id after removal = %d, want %d", third, second+1)
	}
}

func TestRegistry_CreateValidates(t *testing.T) {
	r, _ := newTestRegistry()

	if _, err := r.Create(0, 64, present.FormatRGBA8Unorm); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero width: got %v, want ErrInvalidDimensions", err)
	}
	if _, err := r.Create(64, -1, present.FormatRGBA8Unorm); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative height: got %v, want ErrInvalidDimensions", err)
	}
	if _, err := r.Create(64, 64, present.FormatUndefined); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("undefined format: got %v, want ErrInvalidFormat", err)
	}
}

func TestRegistry_BuffersStartZeroed(t *testing.T) {
	r, _ := newTestRegistry()
	id, err := r.Create(16, 16, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}

	for index := 0; index < 2; index++ {
		view, err := r.ViewAt(id, index)
		if err != nil {
			t.Fatal(err)
		}
		tex := backingTexture(t, view)
		px := tex.At(15, 15)
		for c, v := range px {
			if v != 0 {
				t.Errorf("buffer %d channel %d = %d, want 0", index, c, v)
			}
		}
	}
}

func TestRegistry_DoubleSwapRestoresFront(t *testing.T) {
	r, _ := newTestRegistry()
	id, _ := r.Create(32, 32, present.FormatRGBA8Unorm)

	front, _ := r.FrontIndex(id)
	if front != 0 {
		t.Fatalf("initial front = %d, want 0", front)
	}

	if err := r.Swap(id); err != nil {
		t.Fatal(err)
	}
	if front, _ = r.FrontIndex(id); front != 1 {
		t.Errorf("front after swap = %d, want 1", front)
	}

	if err := r.Swap(id); err != nil {
		t.Fatal(err)
	}
	if front, _ = r.FrontIndex(id); front != 0 {
		t.Errorf("front after double swap = %d, want 0", front)
	}
}

func TestRegistry_PresentPendingEpisodes(t *testing.T) {
	r, _ := newTestRegistry()
	id, _ := r.Create(32, 32, present.FormatRGBA8Unorm)

	// First set after creation opens the episode.
	already, err := r.SetPresentPending(id)
	if err != nil {
		t.Fatal(err)
	}
	if already {
		t.Error("first SetPresentPending returned true, want false")
	}

	// Every set until the clear reports the episode already open.
	for i := 0; i < 3; i++ {
		already, _ = r.SetPresentPending(id)
		if !already {
			t.Errorf("repeat SetPresentPending %d returned false, want true", i)
		}
	}

	if err := r.ClearPresentPending(id); err != nil {
		t.Fatal(err)
	}
	already, _ = r.SetPresentPending(id)
	if already {
		t.Error("SetPresentPending after clear returned true, want false")
	}
}

func TestRegistry_ResizeNoOpPreservesIdentity(t *testing.T) {
	r, dev := newTestRegistry()
	id, _ := r.Create(100, 50, present.FormatRGBA8Unorm)

	if err := r.Swap(id); err != nil {
		t.Fatal(err)
	}

	// Sentinel written to the back buffer must survive a no-op resize.
	backView, err := r.ViewAt(id, 0) // front is 1 after the swap
	if err != nil {
		t.Fatal(err)
	}
	backTex := backingTexture(t, backView)
	err = dev.WriteTexture(
		&gpu.TexelCopy{Texture: backTex, Origin: present.Point{X: 3, Y: 4}},
		[]byte{0xAB, 0xCD, 0xEF, 0xFF},
		&gpu.DataLayout{BytesPerRow: 4},
		present.Size{Width: 1, Height: 1},
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Resize(id, 100, 50); err != nil {
		t.Fatalf("no-op resize failed: %v", err)
	}

	viewAfter, _ := r.ViewAt(id, 0)
	if viewAfter != backView {
		t.Error("no-op resize replaced the buffers")
	}
	if front, _ := r.FrontIndex(id); front != 1 {
		t.Errorf("no-op resize changed front to %d", front)
	}
	if px := backTex.At(3, 4); px[0] != 0xAB {
		t.Errorf("sentinel lost after no-op resize: %v", px)
	}
}

func TestRegistry_ResizeHardReset(t *testing.T) {
	r, _ := newTestRegistry()
	id, _ := r.Create(100, 50, present.FormatRGBA8Unorm)

	r.Swap(id)
	r.SetPresentPending(id)
	oldFront, _ := r.ViewAt(id, 1)

	if err := r.Resize(id, 200, 80); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	if size, _ := r.Size(id); (size != present.Size{Width: 200, Height: 80}) {
		t.Errorf("size after resize = %v", size)
	}
	if front, _ := r.FrontIndex(id); front != 0 {
		t.Errorf("front after resize = %d, want 0", front)
	}
	if view, _ := r.ViewAt(id, 1); view == oldFront {
		t.Error("resize kept the old buffer")
	}
	if backingTexture(t, oldFront).Destroyed() == false {
		t.Error("resize did not destroy the old texture")
	}

	// Hard reset clears the pending flag: the next set opens a new episode.
	already, _ := r.SetPresentPending(id)
	if already {
		t.Error("pending flag survived hard reset")
	}
}

func TestRegistry_FrontViewAndSizeConsistent(t *testing.T) {
	r, _ := newTestRegistry()
	id, _ := r.Create(640, 480, present.FormatBGRA8Unorm)

	view, size, err := r.FrontViewAndSize(id)
	if err != nil {
		t.Fatal(err)
	}
	if (size != present.Size{Width: 640, Height: 480}) {
		t.Errorf("size = %v", size)
	}
	direct, _ := r.ViewAt(id, 0)
	if view != direct {
		t.Error("FrontViewAndSize returned a different view than ViewAt(front)")
	}
	if view.Format() != present.FormatBGRA8Unorm {
		t.Errorf("view format = %v", view.Format())
	}
}

func TestRegistry_BackViewAndSizeConsistent(t *testing.T) {
	r, _ := newTestRegistry()
	id, _ := r.Create(640, 480, present.FormatBGRA8Unorm)

	view, size, err := r.BackViewAndSize(id)
	if err != nil {
		t.Fatal(err)
	}
	if (size != present.Size{Width: 640, Height: 480}) {
		t.Errorf("size = %v", size)
	}
	direct, _ := r.ViewAt(id, 1) // front is 0, so back is 1
	if view != direct {
		t.Error("BackViewAndSize returned a different view than ViewAt(back)")
	}

	// The pair stays consistent across a swap.
	if err := r.Swap(id); err != nil {
		t.Fatal(err)
	}
	view, _, err = r.BackViewAndSize(id)
	if err != nil {
		t.Fatal(err)
	}
	direct, _ = r.ViewAt(id, 0)
	if view != direct {
		t.Error("back view after swap should be buffer 0")
	}
}

func TestRegistry_RemoveDestroysAndIsIdempotent(t *testing.T) {
	r, dev := newTestRegistry()
	id, _ := r.Create(32, 32, present.FormatRGBA8Unorm)

	if r.Count() != 1 {
		t.Fatalf("Count = %d, want 1", r.Count())
	}

	r.Remove(id)
	r.Remove(id) // no-op

	if r.Count() != 0 {
		t.Errorf("Count after remove = %d, want 0", r.Count())
	}
	if live := dev.LiveTextures(); len(live) != 0 {
		t.Errorf("%d textures left alive after remove", len(live))
	}
	if _, err := r.FrontIndex(id); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("removed id: got %v, want ErrUnknownSurface", err)
	}
}

func TestRegistry_ViewAtRejectsBadIndex(t *testing.T) {
	r, _ := newTestRegistry()
	id, _ := r.Create(32, 32, present.FormatRGBA8Unorm)

	if _, err := r.ViewAt(id, 2); !errors.Is(err, ErrInvalidBufferIndex) {
		t.Errorf("index 2: got %v, want ErrInvalidBufferIndex", err)
	}
	if _, err := r.ViewAt(id, -1); !errors.Is(err, ErrInvalidBufferIndex) {
		t.Errorf("index -1: got %v, want ErrInvalidBufferIndex", err)
	}
}

func TestEvents_NotifyNonBlocking(t *testing.T) {
	e := NewEventsWithCapacity(2)

	if !e.Notify(1) || !e.Notify(2) {
		t.Fatal("notifications within capacity were dropped")
	}
	if e.Notify(3) {
		t.Error("notification beyond capacity was not dropped")
	}

	if id, ok := e.TryRecv(); !ok || id != 1 {
		t.Errorf("TryRecv = %d, %v", id, ok)
	}
	if id, ok := e.TryRecv(); !ok || id != 2 {
		t.Errorf("TryRecv = %d, %v", id, ok)
	}
	if _, ok := e.TryRecv(); ok {
		t.Error("TryRecv on empty queue returned a value")
	}
}
