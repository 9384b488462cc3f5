//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// Device adapts a Context to the gpu.Device and gpu.Queue interfaces.
type Device struct {
	ctx *Context
}

var (
	_ gpu.Device = (*Device)(nil)
	_ gpu.Queue  = (*Device)(nil)
)

// Limits reports the HAL device limits.
func (d *Device) Limits() gpu.Limits {
	return gpu.Limits{
		MaxTextureDimension2D: d.ctx.limits.MaxTextureDimension2D,
		MaxBufferSize:         d.ctx.limits.MaxBufferSize,
	}
}

// CreateTexture allocates a 2D texture on the HAL device.
func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q", err, desc.Label)
	}
	dim := d.ctx.limits.MaxTextureDimension2D
	if uint32(desc.Size.Width) > dim || uint32(desc.Size.Height) > dim {
		return nil, fmt.Errorf("%w: %s exceeds max dimension %d",
			gpu.ErrInvalidDescriptor, desc.Size, dim)
	}

	halTex, err := d.ctx.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Size.Width),
			Height:             uint32(desc.Size.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format.ToWGPUFormat(),
		Usage:         textureUsageToHAL(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}

	return &Texture{
		ctx:    d.ctx,
		hal:    halTex,
		label:  desc.Label,
		size:   desc.Size,
		format: desc.Format,
	}, nil
}

// CreateBuffer allocates a buffer on the HAL device. Copy-source buffers
// keep a host shadow of their contents so recorded buffer-to-texture
// transfers can replay through the queue's write path.
func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("%w: zero-size buffer %q", gpu.ErrInvalidDescriptor, desc.Label)
	}
	if desc.Size > d.ctx.limits.MaxBufferSize {
		return nil, fmt.Errorf("%w: buffer %q exceeds max size", gpu.ErrInvalidDescriptor, desc.Label)
	}

	halBuf, err := d.ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsageToHAL(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", desc.Label, err)
	}

	buf := &Buffer{ctx: d.ctx, hal: halBuf, label: desc.Label, size: desc.Size}
	if desc.Usage&gpu.BufferUsageCopySrc != 0 {
		buf.shadow = make([]byte, desc.Size)
	}
	return buf, nil
}

// CreateCommandEncoder starts a new transfer recording.
func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	return &CommandEncoder{device: d, label: label}, nil
}

// WriteTexture uploads texel rows into dst immediately.
func (d *Device) WriteTexture(dst *gpu.TexelCopy, data []byte, layout *gpu.DataLayout, size present.Size) error {
	tex, ok := dst.Texture.(*Texture)
	if !ok {
		return fmt.Errorf("wgpu: foreign texture %T", dst.Texture)
	}
	if tex.destroyed.Load() {
		return gpu.ErrTextureDestroyed
	}
	if dst.Origin.X < 0 || dst.Origin.Y < 0 ||
		dst.Origin.X+size.Width > tex.size.Width ||
		dst.Origin.Y+size.Height > tex.size.Height {
		return gpu.ErrCopyOutOfBounds
	}

	d.ctx.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex.hal,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(dst.Origin.X), Y: uint32(dst.Origin.Y), Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&hal.Extent3D{
			Width:              uint32(size.Width),
			Height:             uint32(size.Height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// WriteBuffer uploads data into buffer at offset immediately.
func (d *Device) WriteBuffer(buffer gpu.Buffer, offset uint64, data []byte) error {
	buf, ok := buffer.(*Buffer)
	if !ok {
		return fmt.Errorf("wgpu: foreign buffer %T", buffer)
	}
	if buf.destroyed.Load() {
		return fmt.Errorf("wgpu: write to destroyed buffer %q", buf.label)
	}
	if offset+uint64(len(data)) > buf.size {
		return gpu.ErrCopyOutOfBounds
	}

	if buf.shadow != nil {
		buf.mu.Lock()
		copy(buf.shadow[offset:], data)
		buf.mu.Unlock()
	}
	d.ctx.queue.WriteBuffer(buf.hal, offset, data)
	return nil
}

// Submit replays the recorded transfers of each command buffer in order.
func (d *Device) Submit(buffers ...gpu.CommandBuffer) error {
	for _, cb := range buffers {
		wcb, ok := cb.(*CommandBuffer)
		if !ok {
			return fmt.Errorf("wgpu: foreign command buffer %T", cb)
		}
		for i := range wcb.writes {
			if err := d.replayWrite(&wcb.writes[i]); err != nil {
				return fmt.Errorf("wgpu: submit %q: %w", wcb.label, err)
			}
		}
	}
	return nil
}

func textureUsageToHAL(usage gpu.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if usage&gpu.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if usage&gpu.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if usage&gpu.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if usage&gpu.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

func bufferUsageToHAL(usage gpu.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if usage&gpu.BufferUsageCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	if usage&gpu.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if usage&gpu.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if usage&gpu.BufferUsageStorage != 0 {
		out |= gputypes.BufferUsageStorage
	}
	return out
}
