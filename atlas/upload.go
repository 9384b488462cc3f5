// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import (
	"fmt"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// pendingUpload is tile data staged for the next BeforeFrame flush.
type pendingUpload struct {
	tileID TileID
	origin present.Point
	size   present.Size
	data   []byte
}

// stageUploadLocked queues tile data for the next flush. Earlier staged data
// for the same tile is superseded.
func (a *Atlas) stageUploadLocked(tile Tile, data []byte) {
	staged := make([]byte, len(data))
	copy(staged, data)

	up := pendingUpload{
		tileID: tile.ID,
		origin: tile.Bounds.Origin,
		size:   tile.Bounds.Size,
		data:   staged,
	}
	for i := range a.pending {
		if a.pending[i].tileID == tile.ID {
			a.pending[i] = up
			return
		}
	}
	a.pending = append(a.pending, up)
}

// BeforeFrame flushes all staged tile uploads into encoder. It must be
// called once at the start of every frame, before any draw that samples
// atlas textures.
//
// Each upload goes through a staging buffer with its row pitch padded to
// present.CopyBytesPerRowAlignment. Staging buffers are retired after the
// following frame's flush, once the copies recorded here have been
// submitted.
func (a *Atlas) BeforeFrame(encoder gpu.CommandEncoder) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, buf := range a.retired {
		buf.Destroy()
	}
	a.retired = a.retired[:0]

	for _, up := range a.pending {
		t, err := a.textureLocked(up.tileID.Texture)
		if err != nil {
			// Tile removed between staging and flush; nothing to upload.
			continue
		}

		bpp := t.texture.Format().BytesPerPixel()
		rowBytes := up.size.Width * bpp
		pitch := gpu.AlignRowPitch(uint32(rowBytes))

		buf, err := a.device.CreateBuffer(&gpu.BufferDescriptor{
			Label: "atlas-staging",
			Size:  uint64(pitch) * uint64(up.size.Height),
			Usage: gpu.BufferUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("atlas: staging buffer creation failed: %w", err)
		}

		staged := make([]byte, int(pitch)*up.size.Height)
		for row := 0; row < up.size.Height; row++ {
			copy(staged[row*int(pitch):], up.data[row*rowBytes:(row+1)*rowBytes])
		}
		if err := a.queue.WriteBuffer(buf, 0, staged); err != nil {
			buf.Destroy()
			return fmt.Errorf("atlas: staging write failed: %w", err)
		}

		err = encoder.CopyBufferToTexture(
			&gpu.BufferCopyView{
				Buffer: buf,
				Layout: gpu.DataLayout{BytesPerRow: pitch, RowsPerImage: uint32(up.size.Height)},
			},
			&gpu.TexelCopy{Texture: t.texture, Origin: up.origin},
			up.size,
		)
		if err != nil {
			buf.Destroy()
			return fmt.Errorf("atlas: upload copy failed: %w", err)
		}
		a.retired = append(a.retired, buf)
	}

	a.pending = a.pending[:0]
	return nil
}
