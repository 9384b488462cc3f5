// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/sprite.wgsl
var spriteShaderWGSL string

//go:embed shaders/blit.wgsl
var blitShaderWGSL string

// ShaderSet holds the compiled SPIR-V for the compositor's pipelines.
// Backends feed these into their shader module creation.
type ShaderSet struct {
	// SpriteSPIRV draws atlas tiles into the target.
	SpriteSPIRV []uint32

	// BlitSPIRV copies surface front buffers into the target.
	BlitSPIRV []uint32
}

// CompileShaders compiles the embedded WGSL sources to SPIR-V.
func CompileShaders() (*ShaderSet, error) {
	sprite, err := compileWGSL("sprite", spriteShaderWGSL)
	if err != nil {
		return nil, err
	}
	blit, err := compileWGSL("blit", blitShaderWGSL)
	if err != nil {
		return nil, err
	}
	return &ShaderSet{SpriteSPIRV: sprite, BlitSPIRV: blit}, nil
}

func compileWGSL(name, source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compositor: %s shader compilation failed: %w", name, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compositor: %s shader produced %d bytes, not word aligned", name, len(spirvBytes))
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
