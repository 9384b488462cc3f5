// Command presentdemo exercises the presentation layer end to end:
// glyphs rasterize into the tile atlas, a surface double-buffers a
// client frame, and the compositor consumes both into one frame plan.
//
// The demo runs on the in-memory test device by default, so it works
// without a GPU. Pass -gpu to open a real device (requires a build
// without the nogpu tag and a working Vulkan setup).
package main

import (
	"flag"
	"log"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/present"
	"github.com/gogpu/present/atlas"
	"github.com/gogpu/present/compositor"
	"github.com/gogpu/present/glyph"
	"github.com/gogpu/present/surface"
)

func main() {
	var (
		text   = flag.String("text", "Hello, compositor!", "text to rasterize into the atlas")
		size   = flag.Float64("size", 32, "font size in pixels per em")
		width  = flag.Int("width", 800, "surface width")
		height = flag.Int("height", 600, "surface height")
		useGPU = flag.Bool("gpu", false, "open a real GPU device instead of the test device")
	)
	flag.Parse()

	device, queue, cleanup, err := openDevice(*useGPU)
	if err != nil {
		log.Fatalf("presentdemo: %v", err)
	}
	defer cleanup()

	tiles := atlas.NewDefault(device, queue)
	surfaces := surface.NewRegistry(device, queue)
	events := surface.NewEvents()
	comp := compositor.New(device, queue, tiles, surfaces, events)

	// Rasterize the text into atlas tiles.
	font, err := glyph.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("presentdemo: parse font: %v", err)
	}
	source := glyph.NewSource(tiles)
	shaper := glyph.NewShaper()

	type placed struct {
		tile atlas.Tile
		dst  present.Rect
	}
	var draws []placed
	baseline := 100
	for _, sg := range shaper.ShapeText(font, *text, *size, glyph.DirectionLTR) {
		g, err := source.Get(font, sg.Rune, *size)
		if err != nil {
			log.Fatalf("presentdemo: glyph %q: %v", sg.Rune, err)
		}
		if !g.HasTile {
			continue
		}
		draws = append(draws, placed{
			tile: g.Tile,
			dst: present.Rect{
				Origin: present.Point{
					X: int(sg.X) + g.Bearing.X + 20,
					Y: baseline + g.Bearing.Y,
				},
				Size: g.Tile.Bounds.Size,
			},
		})
	}

	// A client presents one frame into a surface.
	handle, err := surface.NewHandle(surfaces, events, *width, *height, present.FormatRGBA8Unorm)
	if err != nil {
		log.Fatalf("presentdemo: create surface: %v", err)
	}
	defer handle.Release()

	if err := handle.Present(); err != nil {
		log.Fatalf("presentdemo: present: %v", err)
	}
	if id, ok := events.TryRecv(); ok {
		log.Printf("presentdemo: surface %d woke the compositor", id)
	}

	// One compositor frame consumes the atlas and the surface.
	if err := comp.BeginFrame(); err != nil {
		log.Fatalf("presentdemo: begin frame: %v", err)
	}
	for _, d := range draws {
		if err := comp.DrawTile(d.tile, d.dst); err != nil {
			log.Fatalf("presentdemo: draw tile: %v", err)
		}
	}
	if err := comp.DrawSurface(handle.ID(), present.RectXYWH(0, 0, *width, *height)); err != nil {
		log.Fatalf("presentdemo: draw surface: %v", err)
	}
	frame, err := comp.EndFrame()
	if err != nil {
		log.Fatalf("presentdemo: end frame: %v", err)
	}

	stats := tiles.Stats()
	log.Printf("presentdemo: %d glyph tiles in %d atlas texture(s), %d bytes resident",
		stats.LiveTiles, stats.Textures, stats.BytesResident)
	log.Printf("presentdemo: frame plan: %d tile batch(es), %d surface draw(s)",
		len(frame.TileBatches), len(frame.Surfaces))
}
