// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// doubleBuffer is the per-surface state held by the registry.
//
// All fields except presentPending are guarded by the registry mutex.
// presentPending is atomic so the flag transition and its previous value
// stay a single operation even under the lock.
type doubleBuffer struct {
	textures [2]gpu.Texture
	views    [2]gpu.TextureView
	front    int
	width    int
	height   int
	format   present.TextureFormat

	presentPending atomic.Bool
}

// newDoubleBuffer creates both buffers zero-initialized (transparent black),
// with front index 0.
func newDoubleBuffer(device gpu.Device, id ID, width, height int, format present.TextureFormat) (*doubleBuffer, error) {
	b := &doubleBuffer{
		width:  width,
		height: height,
		format: format,
	}
	size := present.Size{Width: width, Height: height}
	for i := 0; i < 2; i++ {
		tex, err := device.CreateTexture(&gpu.TextureDescriptor{
			Label:  fmt.Sprintf("surface-%d-%d", id, i),
			Size:   size,
			Format: format,
			Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
		})
		if err != nil {
			b.destroy()
			return nil, fmt.Errorf("surface: buffer %d creation failed: %w", i, err)
		}
		view, err := tex.CreateView()
		if err != nil {
			tex.Destroy()
			b.destroy()
			return nil, fmt.Errorf("surface: view %d creation failed: %w", i, err)
		}
		b.textures[i] = tex
		b.views[i] = view
	}
	return b, nil
}

func (b *doubleBuffer) destroy() {
	for i, tex := range b.textures {
		if tex != nil {
			tex.Destroy()
			b.textures[i] = nil
			b.views[i] = nil
		}
	}
}

func (b *doubleBuffer) size() present.Size {
	return present.Size{Width: b.width, Height: b.height}
}
