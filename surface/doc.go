// Package surface manages double-buffered textures for externally rendered
// content.
//
// A producer renders into a surface's back buffer and presents; the
// compositor samples the front buffer. Swapping flips the two without
// copying. Present notifications are coalesced through a pending flag so a
// surface wakes the compositor once per pending frame no matter how many
// times it presents in between.
package surface
