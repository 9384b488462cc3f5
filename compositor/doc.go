// Package compositor consumes the presentation layer each frame: it
// flushes pending atlas uploads, batches tile draws per atlas texture, and
// samples surface front buffers, clearing their pending flags as it goes.
package compositor
