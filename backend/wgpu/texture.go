//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// Texture wraps a HAL texture.
type Texture struct {
	ctx    *Context
	hal    hal.Texture
	label  string
	size   present.Size
	format present.TextureFormat

	destroyed atomic.Bool

	viewOnce sync.Once
	view     *TextureView
	viewErr  error
}

var _ gpu.Texture = (*Texture)(nil)

func (t *Texture) Size() present.Size            { return t.size }
func (t *Texture) Format() present.TextureFormat { return t.format }

// HAL returns the underlying HAL texture for render pipeline wiring.
func (t *Texture) HAL() hal.Texture { return t.hal }

// CreateView returns the texture's view. The view is created once and
// reused, so view identity is stable for the texture's lifetime.
func (t *Texture) CreateView() (gpu.TextureView, error) {
	if t.destroyed.Load() {
		return nil, gpu.ErrTextureDestroyed
	}
	t.viewOnce.Do(func() {
		halView, err := t.ctx.device.CreateTextureView(t.hal, &hal.TextureViewDescriptor{
			Label: t.label + "_view",
		})
		if err != nil {
			t.viewErr = fmt.Errorf("wgpu: create view for %q: %w", t.label, err)
			return
		}
		t.view = &TextureView{texture: t, hal: halView}
	})
	if t.viewErr != nil {
		return nil, t.viewErr
	}
	return t.view, nil
}

// Destroy releases the texture and its view. Idempotent.
func (t *Texture) Destroy() {
	if t.destroyed.Swap(true) {
		return
	}
	if t.view != nil {
		t.ctx.device.DestroyTextureView(t.view.hal)
		t.view = nil
	}
	t.ctx.device.DestroyTexture(t.hal)
}

// TextureView wraps a HAL texture view.
type TextureView struct {
	texture *Texture
	hal     hal.TextureView
}

var _ gpu.TextureView = (*TextureView)(nil)

func (v *TextureView) Size() present.Size            { return v.texture.size }
func (v *TextureView) Format() present.TextureFormat { return v.texture.format }

// HAL returns the underlying HAL view for render pipeline wiring.
func (v *TextureView) HAL() hal.TextureView { return v.hal }

// Buffer wraps a HAL buffer. Copy-source buffers carry a host shadow so
// recorded transfers can replay through the queue.
type Buffer struct {
	ctx   *Context
	hal   hal.Buffer
	label string
	size  uint64

	destroyed atomic.Bool

	mu     sync.Mutex
	shadow []byte
}

var _ gpu.Buffer = (*Buffer)(nil)

func (b *Buffer) BufferSize() uint64 { return b.size }

// HAL returns the underlying HAL buffer for render pipeline wiring.
func (b *Buffer) HAL() hal.Buffer { return b.hal }

// Destroy releases the buffer. Idempotent.
func (b *Buffer) Destroy() {
	if b.destroyed.Swap(true) {
		return
	}
	b.ctx.device.DestroyBuffer(b.hal)
}

// shadowRows returns the shadow bytes covering a row range, or an error
// when the buffer has no shadow or the range runs past its end.
func (b *Buffer) shadowRows(layout *gpu.DataLayout, rowBytes, rows int) ([]byte, error) {
	if b.shadow == nil {
		return nil, fmt.Errorf("%w: buffer %q lacks copy-source usage",
			gpu.ErrInvalidDescriptor, b.label)
	}
	pitch := int(layout.BytesPerRow)
	if pitch == 0 {
		pitch = rowBytes
	}
	end := int(layout.Offset) + (rows-1)*pitch + rowBytes
	if end > len(b.shadow) {
		return nil, gpu.ErrCopyOutOfBounds
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, end-int(layout.Offset))
	copy(out, b.shadow[layout.Offset:end])
	return out, nil
}
