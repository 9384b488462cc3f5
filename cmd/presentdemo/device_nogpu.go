//go:build nogpu

package main

import (
	"errors"

	"github.com/gogpu/present/gpu"
)

// openDevice returns the in-memory test device; this build has no GPU
// backend compiled in.
func openDevice(real bool) (gpu.Device, gpu.Queue, func(), error) {
	if real {
		return nil, nil, nil, errors.New("presentdemo: built with nogpu, no GPU backend available")
	}
	dev := gpu.NewTestDevice()
	return dev, dev, func() {}, nil
}
