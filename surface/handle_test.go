package surface

import (
	"errors"
	"testing"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

func TestHandle_PresentScenario(t *testing.T) {
	r, _ := newTestRegistry()
	events := NewEvents()

	h, err := NewHandle(r, events, 800, 600, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("NewHandle failed: %v", err)
	}
	defer h.Release()

	if front, _ := r.FrontIndex(h.ID()); front != 0 {
		t.Fatalf("initial front = %d, want 0", front)
	}
	if _, err := h.BackView(); err != nil {
		t.Fatalf("BackView failed: %v", err)
	}

	// First present: flips to 1 and delivers exactly one wake.
	if err := h.Present(); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if front, _ := r.FrontIndex(h.ID()); front != 1 {
		t.Errorf("front after present = %d, want 1", front)
	}
	if id, ok := events.TryRecv(); !ok || id != h.ID() {
		t.Fatalf("expected one wake for %d, got %d, %v", h.ID(), id, ok)
	}

	// Second present before the compositor clears the flag: coalesced.
	if err := h.Present(); err != nil {
		t.Fatal(err)
	}
	if _, ok := events.TryRecv(); ok {
		t.Error("coalesced present delivered a duplicate wake")
	}

	// Compositor consumes, reopening the window; the next present wakes.
	if err := r.ClearPresentPending(h.ID()); err != nil {
		t.Fatal(err)
	}
	if err := h.Present(); err != nil {
		t.Fatal(err)
	}
	if _, ok := events.TryRecv(); !ok {
		t.Error("present after clear did not wake the compositor")
	}
}

func TestHandle_CloneAndRelease(t *testing.T) {
	r, dev := newTestRegistry()

	h, err := NewHandle(r, nil, 64, 64, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	clone := h.Clone()
	if clone == nil {
		t.Fatal("Clone returned nil on a live handle")
	}
	if clone.ID() != h.ID() {
		t.Errorf("clone id = %d, want %d", clone.ID(), h.ID())
	}

	h.Release()
	h.Release() // per-handle release is idempotent
	if r.Count() != 1 {
		t.Fatalf("surface removed while a clone is alive")
	}

	// Released handles refuse operations and cannot be cloned.
	if err := h.Present(); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("Present on released handle: got %v", err)
	}
	if _, err := h.BackView(); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("BackView on released handle: got %v", err)
	}
	if h.Clone() != nil {
		t.Error("Clone on released handle returned a handle")
	}

	clone.Release()
	if r.Count() != 0 {
		t.Error("last release did not deregister the surface")
	}
	if live := dev.LiveTextures(); len(live) != 0 {
		t.Errorf("%d textures alive after last release", len(live))
	}
}

func TestHandle_ResizeUsesCachedSize(t *testing.T) {
	r, _ := newTestRegistry()

	h, err := NewHandle(r, nil, 320, 240, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	before, _ := r.ViewAt(h.ID(), 0)

	// Same dimensions: short-circuits on the cached size.
	if err := h.Resize(320, 240); err != nil {
		t.Fatalf("no-op resize failed: %v", err)
	}
	after, _ := r.ViewAt(h.ID(), 0)
	if before != after {
		t.Error("no-op resize recreated buffers")
	}

	if err := h.Resize(640, 480); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if got := h.Size(); (got != present.Size{Width: 640, Height: 480}) {
		t.Errorf("cached size = %v, want 640x480", got)
	}
	if size, _ := r.Size(h.ID()); (size != present.Size{Width: 640, Height: 480}) {
		t.Errorf("registry size = %v, want 640x480", size)
	}

	if err := h.Resize(0, 480); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("invalid resize: got %v, want ErrInvalidDimensions", err)
	}
}

func TestHandle_ExposesSharedDeviceAndQueue(t *testing.T) {
	r, dev := newTestRegistry()
	h, err := NewHandle(r, nil, 32, 32, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	// Producers render with the same device and queue the registry
	// allocated the buffers on.
	if h.Device() != gpu.Device(dev) {
		t.Error("handle device differs from the registry device")
	}
	if h.Queue() != gpu.Queue(dev) {
		t.Error("handle queue differs from the registry queue")
	}
}

func TestHandle_BackViewAndSize(t *testing.T) {
	r, _ := newTestRegistry()
	h, err := NewHandle(r, nil, 320, 240, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}

	view, size, err := h.BackViewAndSize()
	if err != nil {
		t.Fatal(err)
	}
	if (size != present.Size{Width: 320, Height: 240}) {
		t.Errorf("size = %v, want 320x240", size)
	}
	direct, _ := r.ViewAt(h.ID(), 1)
	if view != direct {
		t.Error("back view should be buffer 1 before the first present")
	}

	// After a resize the pair reflects the new buffers together.
	if err := h.Resize(64, 64); err != nil {
		t.Fatal(err)
	}
	view, size, err = h.BackViewAndSize()
	if err != nil {
		t.Fatal(err)
	}
	if (size != present.Size{Width: 64, Height: 64}) {
		t.Errorf("size after resize = %v, want 64x64", size)
	}
	if view == direct {
		t.Error("resize kept the old back buffer")
	}

	h.Release()
	if _, _, err := h.BackViewAndSize(); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("released handle: got %v, want ErrHandleReleased", err)
	}
}

func TestHandle_BackViewTracksSwap(t *testing.T) {
	r, _ := newTestRegistry()
	h, err := NewHandle(r, nil, 32, 32, present.FormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	view0, _ := r.ViewAt(h.ID(), 0)
	view1, _ := r.ViewAt(h.ID(), 1)

	back, err := h.BackView()
	if err != nil {
		t.Fatal(err)
	}
	if back != view1 {
		t.Error("initial back view should be buffer 1")
	}

	if err := h.Present(); err != nil {
		t.Fatal(err)
	}
	back, err = h.BackView()
	if err != nil {
		t.Fatal(err)
	}
	if back != view0 {
		t.Error("back view after present should be buffer 0")
	}
}
