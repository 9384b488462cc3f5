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

// Common errors returned by registry operations.
var (
	// ErrUnknownSurface is returned for ids that are absent or removed.
	ErrUnknownSurface = errors.New("surface: unknown surface id")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrInvalidFormat is returned for unusable texture formats.
	ErrInvalidFormat = errors.New("surface: invalid texture format")

	// ErrInvalidBufferIndex is returned when a buffer index is not 0 or 1.
	ErrInvalidBufferIndex = errors.New("surface: buffer index must be 0 or 1")
)

// ID identifies a registered surface. IDs are allocated monotonically
// starting at 1 and never reused.
type ID uint64

// Registry owns the double buffers of all live surfaces.
//
// Every operation takes the registry lock, so buffer swaps, resizes, and
// view reads are mutually exclusive per registry. The present-pending flag
// is additionally atomic; see SetPresentPending.
//
// Registry is safe for concurrent use.
type Registry struct {
	device gpu.Device
	queue  gpu.Queue

	mu      sync.Mutex
	entries map[ID]*doubleBuffer
	nextID  atomic.Uint64
}

// NewRegistry creates an empty registry over device and queue.
func NewRegistry(device gpu.Device, queue gpu.Queue) *Registry {
	return &Registry{
		device:  device,
		queue:   queue,
		entries: make(map[ID]*doubleBuffer),
	}
}

// Create registers a new surface and returns its id.
//
// Both buffers are created immediately and zero-initialized, so sampling a
// surface before its first present yields transparent black rather than
// garbage. The front index starts at 0.
func (r *Registry) Create(width, height int, format present.TextureFormat) (ID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if format.BytesPerPixel() == 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFormat, format)
	}

	id := ID(r.nextID.Add(1))
	entry, err := newDoubleBuffer(r.device, id, width, height, format)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.entries[id] = entry
	r.mu.Unlock()
	return id, nil
}

// Remove destroys a surface's buffers and drops its entry.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if ok {
		entry.destroy()
	}
}

// Swap flips the surface's front and back buffers.
func (r *Registry) Swap(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	entry.front = 1 - entry.front
	return nil
}

// Resize recreates both buffers at the new dimensions.
//
// A resize to the current dimensions is an identity-preserving no-op: the
// buffers, the front index, and the pending flag are untouched. Otherwise
// the resize is a hard reset: both textures are recreated zero-initialized,
// the front index returns to 0, and the pending flag is cleared.
func (r *Registry) Resize(id ID, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	if entry.width == width && entry.height == height {
		return nil
	}

	replacement, err := newDoubleBuffer(r.device, id, width, height, entry.format)
	if err != nil {
		return err
	}
	entry.destroy()
	r.entries[id] = replacement
	return nil
}

// FrontIndex returns the current front buffer index (0 or 1).
func (r *Registry) FrontIndex(id ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.front, nil
}

// ViewAt returns the view of the buffer at index (0 or 1), independent of
// which one is currently front.
func (r *Registry) ViewAt(id ID, index int) (gpu.TextureView, error) {
	if index != 0 && index != 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferIndex, index)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.views[index], nil
}

// Size returns the surface dimensions.
func (r *Registry) Size(id ID) (present.Size, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return present.Size{}, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.size(), nil
}

// Format returns the surface texture format.
func (r *Registry) Format(id ID) (present.TextureFormat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return present.FormatUndefined, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.format, nil
}

// FrontViewAndSize returns the front buffer view together with the surface
// size under a single lock acquisition, so the pair is mutually consistent
// even while another goroutine resizes.
func (r *Registry) FrontViewAndSize(id ID) (gpu.TextureView, present.Size, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, present.Size{}, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.views[entry.front], entry.size(), nil
}

// BackView returns the view the producer should render into.
func (r *Registry) BackView(id ID) (gpu.TextureView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.views[1-entry.front], nil
}

// BackViewAndSize returns the back buffer view together with the surface
// size under a single lock acquisition, the producer-side counterpart of
// FrontViewAndSize. A producer sizing its render pass from this pair never
// sees a view from one generation of buffers and a size from another.
func (r *Registry) BackViewAndSize(id ID) (gpu.TextureView, present.Size, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, present.Size{}, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.views[1-entry.front], entry.size(), nil
}

// SetPresentPending marks the surface as having an unconsumed present.
// It returns the previous flag value: false means this call opened the
// pending episode and the caller should wake the compositor; true means a
// wake is already in flight and must not be duplicated.
func (r *Registry) SetPresentPending(id ID) (already bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	return entry.presentPending.Swap(true), nil
}

// ClearPresentPending marks the pending present as consumed, reopening the
// coalescing window. The compositor calls this when it samples the front
// buffer.
func (r *Registry) ClearPresentPending(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	entry.presentPending.Store(false)
	return nil
}

// Count returns the number of live surfaces.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
