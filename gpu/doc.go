// Package gpu defines the narrow device abstraction the presentation layer
// renders through. The real implementation over gogpu/wgpu lives in
// backend/wgpu; TestDevice provides an in-memory implementation so atlas,
// surface, and compositor tests run without hardware.
package gpu
