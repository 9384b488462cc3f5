// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/present"
	"github.com/gogpu/present/atlas"
	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/surface"
)

// Common errors returned by compositor operations.
var (
	// ErrFrameOpen is returned by BeginFrame while a frame is in flight.
	ErrFrameOpen = errors.New("compositor: frame already open")

	// ErrNoFrame is returned by draw calls outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("compositor: no open frame")
)

// TileDraw is one atlas tile placement within a frame.
type TileDraw struct {
	Src present.Rect
	Dst present.Rect
}

// TileBatch groups the draws that sample one atlas texture, so a backend
// can bind the texture once and dispatch all of its sprites together.
type TileBatch struct {
	Texture atlas.TextureInfo
	Draws   []TileDraw
}

// SurfaceDraw is one surface front-buffer placement within a frame.
type SurfaceDraw struct {
	ID   surface.ID
	View gpu.TextureView
	Size present.Size
	Dst  present.Rect
}

// Frame is the consumption plan EndFrame hands to the rendering backend.
type Frame struct {
	TileBatches []TileBatch
	Surfaces    []SurfaceDraw
}

// Compositor orders per-frame consumption of the presentation layer.
//
// The frame protocol is BeginFrame, any number of DrawTile/DrawSurface
// calls, then EndFrame. BeginFrame flushes atlas uploads into the frame's
// encoder before anything samples an atlas texture; EndFrame submits the
// encoder and returns the draw plan.
//
// Compositor is safe for concurrent use, but a frame is a single
// conversation: draws interleaved from multiple goroutines land in one
// plan in arrival order.
type Compositor struct {
	device   gpu.Device
	queue    gpu.Queue
	tiles    *atlas.Atlas
	surfaces *surface.Registry
	events   *surface.Events

	mu        sync.Mutex
	encoder   gpu.CommandEncoder
	frameOpen bool
	frame     Frame
	batchFor  map[atlas.TextureID]int
	viewCache map[surface.ID][2]gpu.TextureView
	frameSeq  uint64
}

// New creates a compositor over the shared atlas and surface registry.
// events may be nil when the caller drives frames on its own schedule.
func New(device gpu.Device, queue gpu.Queue, tiles *atlas.Atlas, surfaces *surface.Registry, events *surface.Events) *Compositor {
	return &Compositor{
		device:    device,
		queue:     queue,
		tiles:     tiles,
		surfaces:  surfaces,
		events:    events,
		viewCache: make(map[surface.ID][2]gpu.TextureView),
	}
}

// BeginFrame opens a frame and flushes pending atlas uploads.
func (c *Compositor) BeginFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameOpen {
		return ErrFrameOpen
	}

	encoder, err := c.device.CreateCommandEncoder(fmt.Sprintf("frame-%d", c.frameSeq))
	if err != nil {
		return fmt.Errorf("compositor: encoder creation failed: %w", err)
	}
	if err := c.tiles.BeforeFrame(encoder); err != nil {
		return fmt.Errorf("compositor: atlas flush failed: %w", err)
	}

	c.encoder = encoder
	c.frameOpen = true
	c.frame = Frame{}
	c.batchFor = make(map[atlas.TextureID]int)
	return nil
}

// DrawTile records one tile placement. Draws against the same atlas
// texture accumulate into a single batch. A stale tile (its texture slot
// recycled since allocation) fails with atlas.ErrStaleTexture.
func (c *Compositor) DrawTile(tile atlas.Tile, dst present.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.frameOpen {
		return ErrNoFrame
	}

	texID := tile.ID.Texture
	info, err := c.tiles.TextureInfo(texID)
	if err != nil {
		return err
	}

	idx, ok := c.batchFor[texID]
	if !ok {
		idx = len(c.frame.TileBatches)
		c.frame.TileBatches = append(c.frame.TileBatches, TileBatch{Texture: info})
		c.batchFor[texID] = idx
	}
	batch := &c.frame.TileBatches[idx]
	batch.Draws = append(batch.Draws, TileDraw{Src: tile.Bounds, Dst: dst})
	return nil
}

// DrawSurface records a surface front-buffer placement and consumes the
// surface's pending present, reopening its wake window.
func (c *Compositor) DrawSurface(id surface.ID, dst present.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.frameOpen {
		return ErrNoFrame
	}

	view, size, err := c.surfaces.FrontViewAndSize(id)
	if err != nil {
		return err
	}
	c.refreshViewCache(id, view)

	if err := c.surfaces.ClearPresentPending(id); err != nil {
		return err
	}

	c.frame.Surfaces = append(c.frame.Surfaces, SurfaceDraw{
		ID:   id,
		View: view,
		Size: size,
		Dst:  dst,
	})
	return nil
}

// EndFrame submits the frame's uploads and returns the draw plan.
func (c *Compositor) EndFrame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.frameOpen {
		return Frame{}, ErrNoFrame
	}

	cb, err := c.encoder.Finish()
	if err != nil {
		return Frame{}, fmt.Errorf("compositor: encoder finish failed: %w", err)
	}
	if err := c.queue.Submit(cb); err != nil {
		return Frame{}, fmt.Errorf("compositor: submit failed: %w", err)
	}

	frame := c.frame
	c.frame = Frame{}
	c.batchFor = nil
	c.encoder = nil
	c.frameOpen = false
	c.frameSeq++
	return frame, nil
}

// CachedViews returns the cached buffer views for a surface, if any.
// Backends use the pair to keep per-surface bind groups alive across
// frames; the pair changes only when a resize replaces the buffers.
func (c *Compositor) CachedViews(id surface.ID) ([2]gpu.TextureView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	views, ok := c.viewCache[id]
	return views, ok
}

// Run delivers surface wakes to onWake until ctx is done. A wake means a
// surface presented a new frame; the caller typically schedules a redraw
// of the window owning it.
func (c *Compositor) Run(ctx context.Context, onWake func(surface.ID)) error {
	if c.events == nil {
		return errors.New("compositor: no event source")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id := <-c.events.C():
			if onWake != nil {
				onWake(id)
			}
		}
	}
}

// refreshViewCache keeps both buffer views of a surface cached. When the
// front view is not one of the cached pair, the buffers were replaced by a
// resize and the pair is re-resolved.
func (c *Compositor) refreshViewCache(id surface.ID, front gpu.TextureView) {
	cached, ok := c.viewCache[id]
	if ok && (cached[0] == front || cached[1] == front) {
		return
	}

	view0, err0 := c.surfaces.ViewAt(id, 0)
	view1, err1 := c.surfaces.ViewAt(id, 1)
	if err0 != nil || err1 != nil {
		delete(c.viewCache, id)
		present.Logger().Warn("compositor: view cache refresh failed", "surface", id)
		return
	}
	c.viewCache[id] = [2]gpu.TextureView{view0, view1}
}
