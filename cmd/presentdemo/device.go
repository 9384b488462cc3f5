//go:build !nogpu

package main

import (
	"github.com/gogpu/present/backend/wgpu"
	"github.com/gogpu/present/gpu"
)

// openDevice returns the device/queue pair for the demo. With real=false
// it returns the in-memory test device.
func openDevice(real bool) (gpu.Device, gpu.Queue, func(), error) {
	if !real {
		dev := gpu.NewTestDevice()
		return dev, dev, func() {}, nil
	}

	ctx, err := wgpu.New()
	if err != nil {
		return nil, nil, nil, err
	}
	dev := ctx.Device()
	return dev, dev, ctx.Close, nil
}
