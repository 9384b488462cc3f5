// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import (
	"fmt"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// atlasTexture is one GPU texture plus its packing state.
type atlasTexture struct {
	id        TextureID
	texture   gpu.Texture
	view      gpu.TextureView
	allocator *shelfAllocator

	// liveTiles counts tiles currently resident. The texture is destroyed
	// and its slot recycled when the count returns to zero.
	liveTiles int

	// nextTileIndex numbers tiles within this texture.
	nextTileIndex uint32
}

func newAtlasTexture(device gpu.Device, id TextureID, size present.Size, padding int) (*atlasTexture, error) {
	format := id.Kind.Format()
	tex, err := device.CreateTexture(&gpu.TextureDescriptor{
		Label:  fmt.Sprintf("atlas-%s", id),
		Size:   size,
		Format: format,
		Usage:  gpu.TextureUsageCopyDst | gpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: texture creation failed: %w", err)
	}
	view, err := tex.CreateView()
	if err != nil {
		tex.Destroy()
		return nil, fmt.Errorf("atlas: view creation failed: %w", err)
	}

	return &atlasTexture{
		id:        id,
		texture:   tex,
		view:      view,
		allocator: newShelfAllocator(size.Width, size.Height, padding),
	}, nil
}

// allocate reserves a tile rectangle, or returns false when full.
func (t *atlasTexture) allocate(size present.Size) (Tile, bool) {
	x, y, ok := t.allocator.allocate(size.Width, size.Height)
	if !ok {
		return Tile{}, false
	}
	tile := Tile{
		ID: TileID{
			Texture:   t.id,
			TileIndex: t.nextTileIndex,
		},
		Bounds:  present.Rect{Origin: present.Point{X: x, Y: y}, Size: size},
		Padding: t.allocator.padding,
	}
	t.nextTileIndex++
	t.liveTiles++
	return tile, true
}

func (t *atlasTexture) destroy() {
	t.texture.Destroy()
}

// TextureInfo is the per-texture data a compositor needs to draw tiles.
type TextureInfo struct {
	ID     TextureID
	View   gpu.TextureView
	Size   present.Size
	Format present.TextureFormat
}
