// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import (
	"fmt"

	"github.com/gogpu/present"
)

// KeyKind namespaces tile keys so different content classes never collide.
type KeyKind uint8

const (
	// KeyGlyph identifies a rasterized font glyph.
	KeyGlyph KeyKind = iota

	// KeyImage identifies a decoded image or image region.
	KeyImage

	// KeyPath identifies a rasterized vector path.
	KeyPath
)

// Key uniquely identifies a tile's content.
//
// ID is the content identity within the kind (a font/glyph hash, an image
// hash). Variant distinguishes renditions of the same content, such as
// pixel size or subpixel offset.
type Key struct {
	Kind    KeyKind
	ID      uint64
	Variant uint32
}

// TextureID identifies one atlas texture. Slot indices are recycled, so the
// generation is bumped each time a slot's texture is destroyed; a stale ID
// never resolves against the slot's new occupant.
type TextureID struct {
	Index      uint32
	Generation uint32
	Kind       present.TextureKind
}

func (id TextureID) String() string {
	return fmt.Sprintf("%s[%d.%d]", id.Kind, id.Index, id.Generation)
}

// TileID identifies a tile within an atlas texture.
type TileID struct {
	Texture   TextureID
	TileIndex uint32
}

// Tile describes an allocated tile.
type Tile struct {
	ID TileID

	// Bounds is the tile's pixel rectangle within its texture.
	Bounds present.Rect

	// Padding is the gap reserved around the tile.
	Padding int
}

// UV returns the tile's normalized texture coordinates given the texture
// edge length.
func (t Tile) UV(textureSize present.Size) (u0, v0, u1, v1 float32) {
	w := float32(textureSize.Width)
	h := float32(textureSize.Height)
	u0 = float32(t.Bounds.Origin.X) / w
	v0 = float32(t.Bounds.Origin.Y) / h
	u1 = float32(t.Bounds.MaxX()) / w
	v1 = float32(t.Bounds.MaxY()) / h
	return u0, v0, u1, v1
}
