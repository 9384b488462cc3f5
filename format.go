// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import "github.com/gogpu/gputypes"

// DefaultAtlasSize is the edge length of atlas textures in pixels.
// Individual tiles larger than this grow the texture to fit.
const DefaultAtlasSize = 1024

// CopyBytesPerRowAlignment is the required row pitch alignment for
// buffer-to-texture copies.
const CopyBytesPerRowAlignment = 256

// TextureFormat identifies the pixel layout of a presentation texture.
type TextureFormat uint8

const (
	// FormatUndefined is the zero value; no operations accept it.
	FormatUndefined TextureFormat = iota

	// FormatR8Unorm is a single 8-bit channel, used for coverage masks.
	FormatR8Unorm

	// FormatRGBA8Unorm is 8 bits per channel RGBA.
	FormatRGBA8Unorm

	// FormatBGRA8Unorm is 8 bits per channel BGRA, the usual swapchain order.
	FormatBGRA8Unorm
)

// BytesPerPixel returns the per-pixel byte width, or 0 for FormatUndefined.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatR8Unorm:
		return 1
	case FormatRGBA8Unorm, FormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// ToWGPUFormat converts to the gputypes representation.
func (f TextureFormat) ToWGPUFormat() gputypes.TextureFormat {
	switch f {
	case FormatR8Unorm:
		return gputypes.TextureFormatR8Unorm
	case FormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case FormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

func (f TextureFormat) String() string {
	switch f {
	case FormatR8Unorm:
		return "R8Unorm"
	case FormatRGBA8Unorm:
		return "RGBA8Unorm"
	case FormatBGRA8Unorm:
		return "BGRA8Unorm"
	default:
		return "Undefined"
	}
}

// TextureKind partitions atlas textures by content class. Monochrome tiles
// (glyph coverage) and polychrome tiles (images, emoji) never share a
// texture.
type TextureKind uint8

const (
	// KindMonochrome tiles carry a single coverage channel.
	KindMonochrome TextureKind = iota

	// KindPolychrome tiles carry full color.
	KindPolychrome
)

// Format returns the texture format backing this kind.
func (k TextureKind) Format() TextureFormat {
	if k == KindMonochrome {
		return FormatR8Unorm
	}
	return FormatRGBA8Unorm
}

func (k TextureKind) String() string {
	if k == KindMonochrome {
		return "monochrome"
	}
	return "polychrome"
}
