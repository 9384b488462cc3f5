// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glyph

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Shaped is one positioned glyph produced by shaping.
type Shaped struct {
	// Rune is the first rune of the glyph's cluster. Ligatures collapse
	// several runes into one glyph; Rune identifies the cluster start.
	Rune rune

	// X and Y position the glyph relative to the run origin, in pixels.
	X, Y float64

	// XAdvance is the pen movement after this glyph, in pixels.
	XAdvance float64
}

// Shaper converts text into positioned glyphs with HarfBuzz-level
// shaping: kerning, ligatures, and complex-script support.
//
// Shaper is safe for concurrent use. The underlying HarfbuzzShaper is
// not, so instances are pooled per call.
type Shaper struct {
	pool sync.Pool
}

// NewShaper creates a Shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// ShapeText shapes text at ppem pixels per em, resolving bidirectional
// runs first. The returned glyphs are in visual order across runs, with
// X positions accumulating over the whole text.
func (s *Shaper) ShapeText(f *Font, text string, ppem float64, base Direction) []Shaped {
	var out []Shaped
	var penX float64
	for _, run := range SplitRuns(text, base) {
		shaped := s.shapeRun(f, run, ppem, &penX)
		out = append(out, shaped...)
	}
	return out
}

func (s *Shaper) shapeRun(f *Font, run Run, ppem float64, penX *float64) []Shaped {
	runes := []rune(run.Text)
	if len(runes) == 0 {
		return nil
	}

	dir := di.DirectionLTR
	if run.RTL {
		dir = di.DirectionRTL
	}

	// font.Face is not safe for concurrent use; wrap the shared Font
	// fresh for each run.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      gtfont.NewFace(f.shaped),
		Size:      fixed.Int26_6(ppem * 64),
		Script:    runScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	result := make([]Shaped, len(output.Glyphs))
	for i, g := range output.Glyphs {
		xOff := float64(g.XOffset) / 64
		yOff := float64(g.YOffset) / 64
		adv := float64(g.Advance) / 64

		cluster := g.TextIndex()
		var r rune
		if cluster >= 0 && cluster < len(runes) {
			r = runes[cluster]
		}

		result[i] = Shaped{
			Rune:     r,
			X:        *penX + xOff,
			Y:        yOff,
			XAdvance: adv,
		}
		*penX += adv
	}
	return result
}

// runScript returns the script of the first non-space rune, defaulting
// to Latin. Mixed-script text should be split into runs per script
// before shaping.
func runScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
