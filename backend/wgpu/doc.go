// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements the gpu device abstraction over the gogpu/wgpu
// hardware abstraction layer.
//
// A Context owns (or borrows) the hal instance, device, and queue. Open a
// standalone context with New, or share a host application's device with
// FromProvider. Context.Device returns the gpu.Device/gpu.Queue adapter
// the presentation packages consume:
//
//	ctx, err := wgpu.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	dev := ctx.Device()
//	tiles := atlas.NewDefault(dev, dev)
//
// The package compiles only without the nogpu build tag; headless builds
// and tests use gpu.TestDevice instead.
package wgpu
