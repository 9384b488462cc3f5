//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"log"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan backend with the HAL.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Common errors returned during context setup.
var (
	// ErrNoBackend is returned when no HAL backend is compiled in.
	ErrNoBackend = errors.New("wgpu: no HAL backend available")

	// ErrNoAdapter is returned when the instance exposes no GPU adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrNoHALDevice is returned by FromProvider when the provider does not
	// expose a HAL device and queue.
	ErrNoHALDevice = errors.New("wgpu: provider exposes no HAL device")
)

// halSource is implemented by device providers that can hand out their
// underlying HAL device and queue, such as gogpu's GPU context provider.
type halSource interface {
	HalDevice() any
	HalQueue() any
}

// Context holds the HAL resources backing a Device.
//
// A context created by New owns its instance and device and releases them
// in Close. A context created by FromProvider borrows the host
// application's device; Close leaves borrowed resources alone.
type Context struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	limits   gputypes.Limits
	external bool
}

// New opens a standalone GPU context on the best available adapter,
// preferring discrete over integrated GPUs.
func New() (*Context, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	log.Printf("wgpu: device opened on %s", selected.Info.Name)
	return &Context{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		limits:   limits,
	}, nil
}

// FromProvider borrows the HAL device and queue of a host application's
// device provider. The returned context never destroys the borrowed
// resources.
func FromProvider(provider gpucontext.DeviceProvider) (*Context, error) {
	src, ok := provider.(halSource)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := src.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHALDevice
	}
	queue, ok := src.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrNoHALDevice
	}

	return &Context{
		device:   device,
		queue:    queue,
		limits:   gputypes.DefaultLimits(),
		external: true,
	}, nil
}

// Device returns the gpu.Device and gpu.Queue adapter over this context.
func (c *Context) Device() *Device {
	return &Device{ctx: c}
}

// Close releases the context's own HAL resources. Borrowed devices are
// left untouched.
func (c *Context) Close() {
	if c.external {
		return
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}
