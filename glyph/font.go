// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glyph

import (
	"bytes"
	"fmt"
	"sync/atomic"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// fontIDs hands out process-unique font identifiers for atlas keying.
var fontIDs atomic.Uint32

// Font is a parsed font. The same data is parsed by go-text/typesetting
// for shaping and by x/image's opentype package for rasterization; both
// parsed forms are read-only, so a Font is safe for concurrent use.
type Font struct {
	id     uint32
	shaped *gtfont.Font
	raster *opentype.Font
}

// Parse parses TTF or OTF font data.
func Parse(data []byte) (*Font, error) {
	raster, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font tables: %w", err)
	}
	return &Font{
		id:     fontIDs.Add(1),
		shaped: face.Font,
		raster: raster,
	}, nil
}

// ID returns the font's process-unique identifier. Atlas keys derived
// from the font embed it, so two fonts never collide on tiles.
func (f *Font) ID() uint32 { return f.id }

// Name returns the font family name, or "" when the name table lacks one.
func (f *Font) Name() string {
	name, err := f.raster.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.raster.NumGlyphs() }

// UnitsPerEm returns the font's design grid resolution.
func (f *Font) UnitsPerEm() int { return int(f.raster.UnitsPerEm()) }

// GlyphIndex returns the glyph index for r, and whether the font maps it.
func (f *Font) GlyphIndex(r rune) (uint16, bool) {
	idx, err := f.raster.GlyphIndex(nil, r)
	if err != nil || idx == 0 {
		return 0, false
	}
	return uint16(idx), true
}
