// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// ErrHandleReleased is returned by operations on a released handle.
var ErrHandleReleased = errors.New("surface: handle released")

// handleState is the clone-shared core of a surface handle.
type handleState struct {
	registry *Registry
	device   gpu.Device
	queue    gpu.Queue
	events   *Events
	id       ID
	format   present.TextureFormat

	// refs counts live clones; the last release removes the registry entry.
	refs atomic.Int64

	// size is cached so Resize can short-circuit without the registry lock.
	mu   sync.Mutex
	size present.Size
}

// Handle is a producer-side reference to one surface.
//
// Handles are clone-counted: Clone returns an independent Handle sharing
// the same surface, and the surface is deregistered when the last clone is
// released. A Handle never exposes the underlying buffers directly; the
// producer renders through BackView and flips with Present.
//
// Each individual Handle must be released exactly once; Release on an
// already released handle is a no-op.
type Handle struct {
	state    *handleState
	released atomic.Bool
}

// NewHandle creates a surface in the registry and returns its first handle.
// events may be nil when no compositor wake-up is wanted.
func NewHandle(registry *Registry, events *Events, width, height int, format present.TextureFormat) (*Handle, error) {
	id, err := registry.Create(width, height, format)
	if err != nil {
		return nil, err
	}

	state := &handleState{
		registry: registry,
		device:   registry.device,
		queue:    registry.queue,
		events:   events,
		id:       id,
		format:   format,
		size:     present.Size{Width: width, Height: height},
	}
	state.refs.Store(1)
	return &Handle{state: state}, nil
}

// ID returns the surface id.
func (h *Handle) ID() ID {
	return h.state.id
}

// Format returns the surface texture format.
func (h *Handle) Format() present.TextureFormat {
	return h.state.format
}

// Size returns the cached surface size.
func (h *Handle) Size() present.Size {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.size
}

// Device returns the GPU device the surface's buffers live on. Producers
// render into the back buffer with it.
func (h *Handle) Device() gpu.Device {
	return h.state.device
}

// Queue returns the queue commands for this surface are submitted on.
func (h *Handle) Queue() gpu.Queue {
	return h.state.queue
}

// Clone returns a new handle to the same surface.
func (h *Handle) Clone() *Handle {
	if h.released.Load() {
		// A released handle no longer owns a reference to share.
		return nil
	}
	h.state.refs.Add(1)
	return &Handle{state: h.state}
}

// Release drops this handle's reference. The last release across all
// clones removes the surface from the registry and destroys its buffers.
func (h *Handle) Release() {
	if h.released.Swap(true) {
		return
	}
	if h.state.refs.Add(-1) == 0 {
		h.state.registry.Remove(h.state.id)
	}
}

// BackView returns the buffer view the producer renders into.
func (h *Handle) BackView() (gpu.TextureView, error) {
	if h.released.Load() {
		return nil, ErrHandleReleased
	}
	return h.state.registry.BackView(h.state.id)
}

// BackViewAndSize returns the back buffer view and the surface size as one
// consistent pair. Prefer it over separate BackView and Size calls when a
// concurrent Resize could slip between them.
func (h *Handle) BackViewAndSize() (gpu.TextureView, present.Size, error) {
	if h.released.Load() {
		return nil, present.Size{}, ErrHandleReleased
	}
	return h.state.registry.BackViewAndSize(h.state.id)
}

// Present publishes the back buffer: it swaps front and back, then marks
// the surface present-pending. Only the transition into the pending state
// wakes the compositor; repeated presents before the compositor consumes
// the frame coalesce into that single wake.
func (h *Handle) Present() error {
	if h.released.Load() {
		return ErrHandleReleased
	}

	if err := h.state.registry.Swap(h.state.id); err != nil {
		return fmt.Errorf("surface: present swap failed: %w", err)
	}
	already, err := h.state.registry.SetPresentPending(h.state.id)
	if err != nil {
		return err
	}
	if !already && h.state.events != nil {
		h.state.events.Notify(h.state.id)
	}
	return nil
}

// Resize changes the surface dimensions. The cached size short-circuits
// no-op resizes without touching the registry.
func (h *Handle) Resize(width, height int) error {
	if h.released.Load() {
		return ErrHandleReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if h.state.size.Width == width && h.state.size.Height == height {
		return nil
	}
	if err := h.state.registry.Resize(h.state.id, width, height); err != nil {
		return err
	}
	h.state.size = present.Size{Width: width, Height: height}
	return nil
}
