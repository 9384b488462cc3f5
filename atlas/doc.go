// Package atlas packs small rasters into shared GPU textures.
//
// Tiles are keyed so repeated content (glyphs, icons) uploads once. Texture
// data is staged on insert and flushed to the GPU in BeforeFrame, so a frame
// sees either all or none of the tiles inserted before it.
package atlas
