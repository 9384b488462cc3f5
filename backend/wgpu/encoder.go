//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// texWrite is one recorded buffer-to-texture transfer. The source bytes
// are read from the buffer's shadow when the transfer replays, so writes
// issued between recording and submit are observed, matching deferred
// copy semantics.
type texWrite struct {
	buffer *Buffer
	layout gpu.DataLayout
	dst    *Texture
	origin present.Point
	size   present.Size
}

// CommandEncoder records buffer-to-texture transfers. The HAL exposes no
// encoder-level buffer-to-texture copy, so recorded transfers are lowered
// to queue texel writes when the command buffer is submitted.
type CommandEncoder struct {
	device *Device
	label  string

	mu       sync.Mutex
	finished bool
	writes   []texWrite
}

var _ gpu.CommandEncoder = (*CommandEncoder)(nil)

// CopyBufferToTexture records a transfer from src into the dst region.
func (e *CommandEncoder) CopyBufferToTexture(src *gpu.BufferCopyView, dst *gpu.TexelCopy, size present.Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return gpu.ErrEncoderFinished
	}
	buf, ok := src.Buffer.(*Buffer)
	if !ok {
		return fmt.Errorf("wgpu: foreign buffer %T", src.Buffer)
	}
	tex, ok := dst.Texture.(*Texture)
	if !ok {
		return fmt.Errorf("wgpu: foreign texture %T", dst.Texture)
	}
	if src.Layout.BytesPerRow%present.CopyBytesPerRowAlignment != 0 {
		return fmt.Errorf("%w: bytes per row %d not aligned",
			gpu.ErrInvalidDescriptor, src.Layout.BytesPerRow)
	}
	if dst.Origin.X < 0 || dst.Origin.Y < 0 ||
		dst.Origin.X+size.Width > tex.size.Width ||
		dst.Origin.Y+size.Height > tex.size.Height {
		return gpu.ErrCopyOutOfBounds
	}

	e.writes = append(e.writes, texWrite{
		buffer: buf,
		layout: src.Layout,
		dst:    tex,
		origin: dst.Origin,
		size:   size,
	})
	return nil
}

// Finish seals the recording.
func (e *CommandEncoder) Finish() (gpu.CommandBuffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return nil, gpu.ErrEncoderFinished
	}
	e.finished = true
	return &CommandBuffer{label: e.label, writes: e.writes}, nil
}

// CommandBuffer is a sealed recording of transfers awaiting submit.
type CommandBuffer struct {
	label  string
	writes []texWrite
}

var _ gpu.CommandBuffer = (*CommandBuffer)(nil)

func (c *CommandBuffer) Label() string { return c.label }

// replayWrite executes one recorded transfer through the queue.
func (d *Device) replayWrite(w *texWrite) error {
	if w.dst.destroyed.Load() {
		return gpu.ErrTextureDestroyed
	}

	rowBytes := w.size.Width * w.dst.format.BytesPerPixel()
	data, err := w.buffer.shadowRows(&w.layout, rowBytes, w.size.Height)
	if err != nil {
		return err
	}

	d.ctx.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  w.dst.hal,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(w.origin.X), Y: uint32(w.origin.Y), Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w.layout.BytesPerRow,
			RowsPerImage: w.layout.RowsPerImage,
		},
		&hal.Extent3D{
			Width:              uint32(w.size.Width),
			Height:             uint32(w.size.Height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}
