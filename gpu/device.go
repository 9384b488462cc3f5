// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"

	"github.com/gogpu/present"
)

// Common errors returned by device operations.
var (
	// ErrInvalidDescriptor is returned when a descriptor fails validation.
	ErrInvalidDescriptor = errors.New("gpu: invalid descriptor")

	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("gpu: texture destroyed")

	// ErrEncoderFinished is returned when recording into a finished encoder.
	ErrEncoderFinished = errors.New("gpu: command encoder already finished")

	// ErrCopyOutOfBounds is returned when a copy region exceeds the
	// destination texture.
	ErrCopyOutOfBounds = errors.New("gpu: copy region out of bounds")
)

// TextureUsage is a bitmask of allowed texture operations.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageRenderAttachment
)

// BufferUsage is a bitmask of allowed buffer operations.
type BufferUsage uint32

const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageUniform
	BufferUsageStorage
)

// TextureDescriptor describes a 2D texture to create.
type TextureDescriptor struct {
	Label  string
	Size   present.Size
	Format present.TextureFormat
	Usage  TextureUsage
}

// Validate checks the descriptor before creation.
func (d *TextureDescriptor) Validate() error {
	if d.Size.IsEmpty() {
		return ErrInvalidDescriptor
	}
	if d.Format.BytesPerPixel() == 0 {
		return ErrInvalidDescriptor
	}
	return nil
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// DataLayout describes the memory layout of texel data in a buffer.
// BytesPerRow must be a multiple of present.CopyBytesPerRowAlignment for
// buffer-to-texture copies. RowsPerImage of zero means tightly packed.
type DataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

// TexelCopy identifies a texture region origin for copy operations.
type TexelCopy struct {
	Texture Texture
	Origin  present.Point
}

// BufferCopyView identifies buffer-resident texel data for copy operations.
type BufferCopyView struct {
	Buffer Buffer
	Layout DataLayout
}

// Limits carries the device limits the presentation layer cares about.
type Limits struct {
	MaxTextureDimension2D uint32
	MaxBufferSize         uint64
}

// DefaultLimits returns the baseline limits guaranteed by the wgpu spec.
func DefaultLimits() Limits {
	return Limits{
		MaxTextureDimension2D: 8192,
		MaxBufferSize:         256 << 20,
	}
}

// Device creates GPU resources.
type Device interface {
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	Limits() Limits
}

// Queue accepts work for the GPU.
type Queue interface {
	// WriteTexture schedules an immediate texel upload into dst.
	WriteTexture(dst *TexelCopy, data []byte, layout *DataLayout, size present.Size) error

	// WriteBuffer schedules an immediate write into buffer at offset.
	WriteBuffer(buffer Buffer, offset uint64, data []byte) error

	// Submit executes recorded command buffers.
	Submit(buffers ...CommandBuffer) error
}

// Texture is a GPU texture.
type Texture interface {
	CreateView() (TextureView, error)
	Size() present.Size
	Format() present.TextureFormat

	// Destroy releases the texture. Further use returns ErrTextureDestroyed.
	// Destroy is idempotent.
	Destroy()
}

// TextureView is a sampleable view of a texture. View identity is stable for
// the life of the texture, so views are safe to use as cache keys.
type TextureView interface {
	Size() present.Size
	Format() present.TextureFormat
}

// Buffer is a GPU buffer.
type Buffer interface {
	BufferSize() uint64
	Destroy()
}

// CommandEncoder records copy commands for deferred execution.
type CommandEncoder interface {
	CopyBufferToTexture(src *BufferCopyView, dst *TexelCopy, size present.Size) error
	Finish() (CommandBuffer, error)
}

// CommandBuffer is a finished recording ready for Queue.Submit.
type CommandBuffer interface {
	Label() string
}

// AlignRowPitch rounds bytesPerRow up to the copy alignment required for
// buffer-to-texture transfers.
func AlignRowPitch(bytesPerRow uint32) uint32 {
	const align = uint32(present.CopyBytesPerRowAlignment)
	return (bytesPerRow + align - 1) &^ (align - 1)
}
