// Package glyph turns font glyphs into atlas tiles.
//
// A Font parses once and serves two consumers: go-text/typesetting for
// shaping and x/image's opentype rasterizer for alpha masks. A Source
// binds fonts to a tile atlas, rasterizing each (font, rune, size)
// combination on first use and returning the cached tile afterwards.
// SplitRuns resolves bidirectional text into visually ordered runs before
// shaping, so right-to-left scripts land in the atlas in display order.
package glyph
