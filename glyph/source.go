// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glyph

import (
	"sync"

	"github.com/gogpu/present"
	"github.com/gogpu/present/atlas"
)

// Glyph is one atlas-resident glyph ready to draw. Whitespace glyphs have
// HasTile false and carry only metrics.
type Glyph struct {
	Tile    atlas.Tile
	HasTile bool
	Bearing present.Point
	Advance float64
}

// Source feeds glyph rasters into a tile atlas and caches their metrics.
// The atlas itself deduplicates tiles; Source adds the bearing and
// advance the atlas does not store.
//
// Source is safe for concurrent use.
type Source struct {
	tiles *atlas.Atlas

	mu      sync.RWMutex
	metrics map[atlas.Key]Glyph
}

// NewSource creates a Source over the given atlas.
func NewSource(tiles *atlas.Atlas) *Source {
	return &Source{
		tiles:   tiles,
		metrics: make(map[atlas.Key]Glyph),
	}
}

// Get returns the glyph for r at ppem pixels per em, rasterizing into the
// atlas on first use.
func (s *Source) Get(f *Font, r rune, ppem float64) (Glyph, error) {
	key := glyphKey(f, r, ppem)

	s.mu.RLock()
	g, ok := s.metrics[key]
	s.mu.RUnlock()
	if ok && s.tileAlive(&g) {
		return g, nil
	}

	raster, err := f.Rasterize(r, ppem)
	if err != nil {
		return Glyph{}, err
	}

	g = Glyph{Bearing: raster.Bearing, Advance: raster.Advance}
	if !raster.Size.IsEmpty() {
		tile, err := s.tiles.Insert(key, present.KindMonochrome, raster.Size, raster.Data)
		if err != nil {
			return Glyph{}, err
		}
		g.Tile = tile
		g.HasTile = true
	}

	s.mu.Lock()
	s.metrics[key] = g
	s.mu.Unlock()
	return g, nil
}

// Evict removes the glyph's tile and metrics. Unknown glyphs are a no-op.
func (s *Source) Evict(f *Font, r rune, ppem float64) {
	key := glyphKey(f, r, ppem)
	s.tiles.Remove(key)
	s.mu.Lock()
	delete(s.metrics, key)
	s.mu.Unlock()
}

// tileAlive reports whether a cached glyph's tile still resolves. A tile
// goes stale when its atlas texture slot was recycled after eviction.
func (s *Source) tileAlive(g *Glyph) bool {
	if !g.HasTile {
		return true
	}
	_, err := s.tiles.TextureInfo(g.Tile.ID.Texture)
	return err == nil
}

// glyphKey builds the atlas key for (font, rune, size). The size variant
// quantizes ppem to 26.6 fixed point, so sub-pixel size differences get
// distinct tiles.
func glyphKey(f *Font, r rune, ppem float64) atlas.Key {
	return atlas.Key{
		Kind:    atlas.KeyGlyph,
		ID:      uint64(f.ID())<<32 | uint64(uint32(r)),
		Variant: uint32(ppem * 64),
	}
}
