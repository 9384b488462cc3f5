package glyph

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestParse(t *testing.T) {
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if f.Name() == "" {
		t.Error("font name is empty")
	}
	if f.NumGlyphs() == 0 {
		t.Error("font reports zero glyphs")
	}
	if f.UnitsPerEm() == 0 {
		t.Error("font reports zero units per em")
	}
	if _, ok := f.GlyphIndex('A'); !ok {
		t.Error("font has no glyph for 'A'")
	}
}

func TestParse_UniqueIDs(t *testing.T) {
	a, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID() == b.ID() {
		t.Errorf("two parsed fonts share ID %d", a.ID())
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := Parse([]byte("not a font")); err == nil {
		t.Error("Parse accepted garbage data")
	}
}

func TestFont_Rasterize(t *testing.T) {
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	r, err := f.Rasterize('A', 32)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if r.Size.IsEmpty() {
		t.Fatal("'A' rasterized to an empty mask")
	}
	if len(r.Data) != r.Size.Area() {
		t.Errorf("mask bytes = %d, want %d", len(r.Data), r.Size.Area())
	}
	if r.Advance <= 0 {
		t.Errorf("advance = %f, want positive", r.Advance)
	}
	if r.Bearing.Y >= 0 {
		t.Errorf("bearing Y = %d, want negative for an ascender", r.Bearing.Y)
	}

	covered := false
	for _, a := range r.Data {
		if a != 0 {
			covered = true
			break
		}
	}
	if !covered {
		t.Error("mask has no coverage")
	}
}

func TestFont_RasterizeWhitespace(t *testing.T) {
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	r, err := f.Rasterize(' ', 32)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if !r.Size.IsEmpty() {
		t.Errorf("space rasterized to %v, want empty", r.Size)
	}
	if r.Advance <= 0 {
		t.Errorf("space advance = %f, want positive", r.Advance)
	}
}
