// Package present implements the GPU-resident presentation layer used by
// UI renderers: a tile atlas and a registry of double-buffered surfaces.
//
// # Overview
//
// The atlas packs small rasters (glyphs, icons, clipped images) into a few
// large GPU textures so a compositor can draw them in batched sprite calls.
// Uploads are deferred and flushed once per frame.
//
// Surfaces carry externally rendered content (video frames, embedded GPU
// views) through a pair of textures: a producer renders into the back
// buffer, presents, and the compositor samples the front buffer. Present
// notifications are coalesced so each pending frame wakes the compositor
// exactly once.
//
// # Packages
//
//   - atlas: keyed tile atlas with deferred uploads
//   - surface: double-buffered surface registry, handles, present events
//   - compositor: per-frame consumption of atlas tiles and surfaces
//   - glyph: font glyph rasterization feeding the atlas
//   - gpu: device abstraction shared by all of the above
//   - backend/wgpu: gpu.Device implementation over gogpu/wgpu
//
// The root package holds the shared vocabulary: device-pixel geometry,
// texture formats, and GPU alignment constants.
package present
