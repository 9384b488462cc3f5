// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glyph

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/present"
)

// Raster is one rasterized glyph: a tight alpha mask plus the metrics
// needed to place it. A whitespace glyph has an empty Size and no mask
// bytes but still carries its advance.
type Raster struct {
	// Data holds Size.Area() alpha bytes, one per texel, row-major.
	Data []byte

	// Size is the mask extent in pixels.
	Size present.Size

	// Bearing is the mask origin relative to the pen position on the
	// baseline. Y grows downward, so an ascender has a negative Y.
	Bearing present.Point

	// Advance is the pen movement after this glyph, in pixels.
	Advance float64
}

// Rasterize renders r at ppem pixels per em into an alpha mask.
func (f *Font) Rasterize(r rune, ppem float64) (*Raster, error) {
	face, err := opentype.NewFace(f.raster, &opentype.FaceOptions{
		Size:    ppem,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: face for %q: %w", f.Name(), err)
	}
	defer func() {
		_ = face.Close()
	}()

	bounds, advance, ok := face.GlyphBounds(r)
	if !ok {
		return nil, fmt.Errorf("glyph: font %q has no glyph for %q", f.Name(), r)
	}

	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()

	out := &Raster{
		Bearing: present.Point{X: minX, Y: minY},
		Advance: float64(advance) / 64,
	}
	if maxX <= minX || maxY <= minY {
		// Whitespace: advance only, nothing to draw.
		return out, nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, maxX-minX, maxY-minY))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot: fixed.Point26_6{
			X: -bounds.Min.X,
			Y: -bounds.Min.Y,
		},
	}
	drawer.DrawString(string(r))

	out.Size = present.Size{Width: maxX - minX, Height: maxY - minY}
	out.Data = packAlpha(mask, out.Size)
	return out, nil
}

// packAlpha copies the mask into tight rows, dropping the image stride.
func packAlpha(mask *image.Alpha, size present.Size) []byte {
	data := make([]byte, size.Width*size.Height)
	for y := 0; y < size.Height; y++ {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+size.Width]
		copy(data[y*size.Width:], src)
	}
	return data
}
