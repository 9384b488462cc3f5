// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glyph

import (
	"golang.org/x/text/unicode/bidi"
)

// Direction is the base paragraph direction for bidi resolution.
type Direction uint8

const (
	DirectionLTR Direction = iota
	DirectionRTL
)

// Run is a contiguous stretch of text with one resolved direction.
// SplitRuns returns runs in visual order, so drawing them left to right
// reproduces the correct bidirectional layout.
type Run struct {
	Text string
	RTL  bool
}

// SplitRuns resolves text into visually ordered directional runs.
// Empty text returns nil.
func SplitRuns(text string, base Direction) []Run {
	if text == "" {
		return nil
	}

	defaultDir := bidi.Neutral
	if base == DirectionRTL {
		defaultDir = bidi.RightToLeft
	}

	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(defaultDir)); err != nil {
		return []Run{{Text: text, RTL: base == DirectionRTL}}
	}
	ordering, err := p.Order()
	if err != nil {
		return []Run{{Text: text, RTL: base == DirectionRTL}}
	}

	runs := make([]Run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		runs = append(runs, Run{
			Text: run.String(),
			RTL:  run.Direction() == bidi.RightToLeft,
		})
	}
	return runs
}
