// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/present"
)

// TestDevice is an in-memory Device and Queue. Textures hold real pixel
// storage, copies execute on Submit, and counters record GPU traffic, so
// higher layers can be tested byte-for-byte without hardware.
//
// TestDevice is safe for concurrent use.
type TestDevice struct {
	mu       sync.Mutex
	limits   Limits
	textures []*TestTexture

	// Counters, readable without the lock.
	TextureCreates atomic.Int64
	BufferCreates  atomic.Int64
	Submits        atomic.Int64
	TexelCopies    atomic.Int64
}

var (
	_ Device = (*TestDevice)(nil)
	_ Queue  = (*TestDevice)(nil)
)

// NewTestDevice creates a TestDevice with default limits.
func NewTestDevice() *TestDevice {
	return &TestDevice{limits: DefaultLimits()}
}

// NewTestDeviceWithLimits creates a TestDevice with explicit limits.
// Useful for exercising allocation failure paths.
func NewTestDeviceWithLimits(limits Limits) *TestDevice {
	return &TestDevice{limits: limits}
}

// Limits returns the configured device limits.
func (d *TestDevice) Limits() Limits {
	return d.limits
}

// CreateTexture allocates a zero-initialized in-memory texture.
func (d *TestDevice) CreateTexture(desc *TextureDescriptor) (Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q", err, desc.Label)
	}
	dim := d.limits.MaxTextureDimension2D
	if uint32(desc.Size.Width) > dim || uint32(desc.Size.Height) > dim {
		return nil, fmt.Errorf("%w: %s exceeds max dimension %d",
			ErrInvalidDescriptor, desc.Size, dim)
	}

	t := &TestTexture{
		label:  desc.Label,
		size:   desc.Size,
		format: desc.Format,
		data:   make([]byte, desc.Size.Area()*desc.Format.BytesPerPixel()),
	}
	d.mu.Lock()
	d.textures = append(d.textures, t)
	d.mu.Unlock()
	d.TextureCreates.Add(1)
	return t, nil
}

// CreateBuffer allocates an in-memory buffer.
func (d *TestDevice) CreateBuffer(desc *BufferDescriptor) (Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("%w: zero-size buffer %q", ErrInvalidDescriptor, desc.Label)
	}
	if desc.Size > d.limits.MaxBufferSize {
		return nil, fmt.Errorf("%w: buffer %q exceeds max size", ErrInvalidDescriptor, desc.Label)
	}
	d.BufferCreates.Add(1)
	return &TestBuffer{label: desc.Label, data: make([]byte, desc.Size)}, nil
}

// CreateCommandEncoder starts a new recording.
func (d *TestDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	return &testEncoder{device: d, label: label}, nil
}

// WriteTexture copies rows from data into dst immediately.
func (d *TestDevice) WriteTexture(dst *TexelCopy, data []byte, layout *DataLayout, size present.Size) error {
	tex, ok := dst.Texture.(*TestTexture)
	if !ok {
		return fmt.Errorf("gpu: foreign texture %T", dst.Texture)
	}
	return tex.writeRows(dst.Origin, data, layout, size)
}

// WriteBuffer copies data into buffer at offset immediately.
func (d *TestDevice) WriteBuffer(buffer Buffer, offset uint64, data []byte) error {
	buf, ok := buffer.(*TestBuffer)
	if !ok {
		return fmt.Errorf("gpu: foreign buffer %T", buffer)
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	if offset+uint64(len(data)) > uint64(len(buf.data)) {
		return ErrCopyOutOfBounds
	}
	copy(buf.data[offset:], data)
	return nil
}

// Submit executes every recorded command in order.
func (d *TestDevice) Submit(buffers ...CommandBuffer) error {
	for _, cb := range buffers {
		tcb, ok := cb.(*testCommandBuffer)
		if !ok {
			return fmt.Errorf("gpu: foreign command buffer %T", cb)
		}
		for _, op := range tcb.ops {
			if err := op(); err != nil {
				return err
			}
		}
	}
	d.Submits.Add(1)
	return nil
}

// LiveTextures returns the textures created so far that have not been
// destroyed.
func (d *TestDevice) LiveTextures() []*TestTexture {
	d.mu.Lock()
	defer d.mu.Unlock()
	var live []*TestTexture
	for _, t := range d.textures {
		if !t.destroyed.Load() {
			live = append(live, t)
		}
	}
	return live
}

// TestTexture is the in-memory texture backing TestDevice.
type TestTexture struct {
	label     string
	size      present.Size
	format    present.TextureFormat
	destroyed atomic.Bool

	mu   sync.Mutex
	data []byte
	view *TestTextureView
}

var _ Texture = (*TestTexture)(nil)

func (t *TestTexture) Size() present.Size            { return t.size }
func (t *TestTexture) Format() present.TextureFormat { return t.format }
func (t *TestTexture) Label() string                 { return t.label }
func (t *TestTexture) Destroyed() bool               { return t.destroyed.Load() }

// CreateView returns the (single) view of this texture. Repeated calls
// return the same view so identity comparisons behave like the real stack.
func (t *TestTexture) CreateView() (TextureView, error) {
	if t.destroyed.Load() {
		return nil, ErrTextureDestroyed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view == nil {
		t.view = &TestTextureView{texture: t}
	}
	return t.view, nil
}

// Destroy marks the texture unusable. Idempotent.
func (t *TestTexture) Destroy() {
	t.destroyed.Store(true)
}

// At returns the pixel bytes at (x, y).
func (t *TestTexture) At(x, y int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	bpp := t.format.BytesPerPixel()
	off := (y*t.size.Width + x) * bpp
	px := make([]byte, bpp)
	copy(px, t.data[off:off+bpp])
	return px
}

func (t *TestTexture) writeRows(origin present.Point, data []byte, layout *DataLayout, size present.Size) error {
	if t.destroyed.Load() {
		return ErrTextureDestroyed
	}
	if origin.X < 0 || origin.Y < 0 ||
		origin.X+size.Width > t.size.Width || origin.Y+size.Height > t.size.Height {
		return ErrCopyOutOfBounds
	}

	bpp := t.format.BytesPerPixel()
	rowBytes := size.Width * bpp
	srcPitch := int(layout.BytesPerRow)
	if srcPitch == 0 {
		srcPitch = rowBytes
	}
	need := int(layout.Offset) + (size.Height-1)*srcPitch + rowBytes
	if need > len(data) {
		return ErrCopyOutOfBounds
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for row := 0; row < size.Height; row++ {
		src := int(layout.Offset) + row*srcPitch
		dst := ((origin.Y+row)*t.size.Width + origin.X) * bpp
		copy(t.data[dst:dst+rowBytes], data[src:src+rowBytes])
	}
	return nil
}

// TestTextureView is the view type returned by TestTexture.
type TestTextureView struct {
	texture *TestTexture
}

var _ TextureView = (*TestTextureView)(nil)

func (v *TestTextureView) Size() present.Size            { return v.texture.size }
func (v *TestTextureView) Format() present.TextureFormat { return v.texture.format }

// Texture returns the backing texture.
func (v *TestTextureView) Texture() *TestTexture { return v.texture }

// TestBuffer is the in-memory buffer backing TestDevice.
type TestBuffer struct {
	label     string
	mu        sync.Mutex
	data      []byte
	destroyed atomic.Bool
}

var _ Buffer = (*TestBuffer)(nil)

func (b *TestBuffer) BufferSize() uint64 { return uint64(len(b.data)) }
func (b *TestBuffer) Destroy()           { b.destroyed.Store(true) }

// Bytes returns a copy of the buffer contents.
func (b *TestBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

type testEncoder struct {
	device   *TestDevice
	label    string
	ops      []func() error
	finished bool
}

var _ CommandEncoder = (*testEncoder)(nil)

func (e *testEncoder) CopyBufferToTexture(src *BufferCopyView, dst *TexelCopy, size present.Size) error {
	if e.finished {
		return ErrEncoderFinished
	}
	buf, ok := src.Buffer.(*TestBuffer)
	if !ok {
		return fmt.Errorf("gpu: foreign buffer %T", src.Buffer)
	}
	tex, ok := dst.Texture.(*TestTexture)
	if !ok {
		return fmt.Errorf("gpu: foreign texture %T", dst.Texture)
	}
	if src.Layout.BytesPerRow%present.CopyBytesPerRowAlignment != 0 {
		return fmt.Errorf("%w: bytes per row %d not aligned",
			ErrInvalidDescriptor, src.Layout.BytesPerRow)
	}

	device := e.device
	origin := dst.Origin
	layout := src.Layout
	e.ops = append(e.ops, func() error {
		device.TexelCopies.Add(1)
		return tex.writeRows(origin, buf.Bytes(), &layout, size)
	})
	return nil
}

func (e *testEncoder) Finish() (CommandBuffer, error) {
	if e.finished {
		return nil, ErrEncoderFinished
	}
	e.finished = true
	return &testCommandBuffer{label: e.label, ops: e.ops}, nil
}

type testCommandBuffer struct {
	label string
	ops   []func() error
}

var _ CommandBuffer = (*testCommandBuffer)(nil)

func (c *testCommandBuffer) Label() string { return c.label }
