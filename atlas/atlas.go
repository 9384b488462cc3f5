// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package atlas

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// Common errors returned by atlas operations.
var (
	// ErrEmptyTile is returned for zero-area tile sizes.
	ErrEmptyTile = errors.New("atlas: empty tile size")

	// ErrTileTooLarge is returned when a tile cannot fit any texture the
	// device can create.
	ErrTileTooLarge = errors.New("atlas: tile exceeds max texture dimension")

	// ErrDataSize is returned when tile data does not match width*height*bpp.
	ErrDataSize = errors.New("atlas: tile data size mismatch")

	// ErrStaleTexture is returned when a TextureID's slot has been recycled.
	ErrStaleTexture = errors.New("atlas: stale texture id")

	// ErrTextureBudget is returned when MaxTextures is exhausted.
	ErrTextureBudget = errors.New("atlas: texture budget exhausted")
)

// Atlas packs keyed tiles into shared GPU textures.
//
// Monochrome and polychrome tiles live on separate textures. Tile data is
// staged in memory on insert and uploaded by BeforeFrame.
//
// Atlas is safe for concurrent use.
type Atlas struct {
	device gpu.Device
	queue  gpu.Queue
	config Config

	mu         sync.RWMutex
	tilesByKey map[Key]Tile
	storage    [2]kindStorage
	pending    []pendingUpload
	retired    []gpu.Buffer

	// Statistics (atomic for lock-free reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// kindStorage holds the texture slots for one TextureKind. A nil slot is
// free; freeList carries recyclable indices, most recently freed last.
type kindStorage struct {
	slots       []*atlasTexture
	generations []uint32
	freeList    []uint32
}

// New creates an atlas over the given device and queue.
func New(device gpu.Device, queue gpu.Queue, config Config) (*Atlas, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Atlas{
		device:     device,
		queue:      queue,
		config:     config,
		tilesByKey: make(map[Key]Tile),
	}, nil
}

// NewDefault creates an atlas with the default configuration.
func NewDefault(device gpu.Device, queue gpu.Queue) *Atlas {
	a, err := New(device, queue, DefaultConfig())
	if err != nil {
		panic(err) // DefaultConfig always validates
	}
	return a
}

// GetOrInsert returns the tile for key, rasterizing and inserting it on a
// miss. rasterize is only called when the key is absent, and runs under the
// atlas write lock so concurrent callers of the same key rasterize once.
func (a *Atlas) GetOrInsert(key Key, kind present.TextureKind, size present.Size, rasterize func() ([]byte, error)) (Tile, error) {
	// Fast path: already resident (read lock).
	a.mu.RLock()
	if tile, ok := a.tilesByKey[key]; ok {
		a.mu.RUnlock()
		a.hits.Add(1)
		return tile, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock. Losing the race to a
	// concurrent insert of the same key still counts as a hit: the caller
	// gets a resident tile without rasterizing.
	if tile, ok := a.tilesByKey[key]; ok {
		a.hits.Add(1)
		return tile, nil
	}
	a.misses.Add(1)

	data, err := rasterize()
	if err != nil {
		return Tile{}, fmt.Errorf("atlas: rasterize failed: %w", err)
	}
	return a.insertLocked(key, kind, size, data)
}

// Insert adds or replaces the tile for key.
//
// If the key is already resident with the same dimensions the existing tile
// keeps its identity and only the content upload is restaged. Otherwise the
// old tile is removed and a new one allocated.
func (a *Atlas) Insert(key Key, kind present.TextureKind, size present.Size, data []byte) (Tile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if old, ok := a.tilesByKey[key]; ok {
		if old.Bounds.Size == size && old.ID.Texture.Kind == kind {
			if err := checkDataSize(kind, size, data); err != nil {
				return Tile{}, err
			}
			a.stageUploadLocked(old, data)
			return old, nil
		}
		a.removeLocked(key, old)
	}
	return a.insertLocked(key, kind, size, data)
}

// Lookup returns the tile for key if resident.
func (a *Atlas) Lookup(key Key) (Tile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	tile, ok := a.tilesByKey[key]
	return tile, ok
}

// Remove drops the tile for key. It reports whether a tile was removed;
// removing an absent key is a no-op.
//
// When the last tile of a texture is removed the texture is destroyed, its
// slot index is pushed onto the free list, and the slot generation is
// bumped so stale TextureIDs fail instead of aliasing the next occupant.
func (a *Atlas) Remove(key Key) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	tile, ok := a.tilesByKey[key]
	if !ok {
		return false
	}
	a.removeLocked(key, tile)
	return true
}

// TextureInfo resolves a TextureID to the data needed for draw calls.
func (a *Atlas) TextureInfo(id TextureID) (TextureInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	t, err := a.textureLocked(id)
	if err != nil {
		return TextureInfo{}, err
	}
	return TextureInfo{
		ID:     t.id,
		View:   t.view,
		Size:   t.texture.Size(),
		Format: t.texture.Format(),
	}, nil
}

// Stats reports atlas occupancy and traffic counters.
type Stats struct {
	Textures       int
	LiveTiles      int
	PendingUploads int
	BytesResident  int64
	Hits           uint64
	Misses         uint64
}

// Stats returns a snapshot of atlas state.
func (a *Atlas) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Stats{
		LiveTiles:      len(a.tilesByKey),
		PendingUploads: len(a.pending),
		Hits:           a.hits.Load(),
		Misses:         a.misses.Load(),
	}
	for k := range a.storage {
		for _, t := range a.storage[k].slots {
			if t == nil {
				continue
			}
			s.Textures++
			size := t.texture.Size()
			s.BytesResident += int64(size.Area() * t.texture.Format().BytesPerPixel())
		}
	}
	return s
}

// === Internal (lock held) ===

func (a *Atlas) insertLocked(key Key, kind present.TextureKind, size present.Size, data []byte) (Tile, error) {
	if err := checkDataSize(kind, size, data); err != nil {
		return Tile{}, err
	}

	tile, err := a.allocateLocked(kind, size)
	if err != nil {
		return Tile{}, err
	}
	a.tilesByKey[key] = tile
	a.stageUploadLocked(tile, data)
	return tile, nil
}

// allocateLocked finds space for a tile, scanning existing textures of the
// kind most recently created first, then creating a new texture.
func (a *Atlas) allocateLocked(kind present.TextureKind, size present.Size) (Tile, error) {
	if size.IsEmpty() {
		return Tile{}, ErrEmptyTile
	}
	maxDim := int(a.device.Limits().MaxTextureDimension2D)
	if size.Width > maxDim || size.Height > maxDim {
		return Tile{}, fmt.Errorf("%w: %s", ErrTileTooLarge, size)
	}

	st := &a.storage[kind]
	for i := len(st.slots) - 1; i >= 0; i-- {
		t := st.slots[i]
		if t == nil {
			continue
		}
		if tile, ok := t.allocate(size); ok {
			return tile, nil
		}
	}

	t, err := a.createTextureLocked(kind, size)
	if err != nil {
		return Tile{}, err
	}
	tile, ok := t.allocate(size)
	if !ok {
		// The texture was sized to fit this tile.
		return Tile{}, fmt.Errorf("%w: %s", ErrTileTooLarge, size)
	}
	return tile, nil
}

// createTextureLocked creates a texture sized for the tile, reusing a
// free-listed slot index before growing the slot array.
func (a *Atlas) createTextureLocked(kind present.TextureKind, tileSize present.Size) (*atlasTexture, error) {
	st := &a.storage[kind]

	liveCount := 0
	for _, t := range st.slots {
		if t != nil {
			liveCount++
		}
	}
	if liveCount >= a.config.MaxTextures {
		return nil, fmt.Errorf("%w: %d %s textures", ErrTextureBudget, liveCount, kind)
	}

	edge := a.config.TextureSize
	for edge < tileSize.Width || edge < tileSize.Height {
		edge *= 2
	}
	if maxDim := int(a.device.Limits().MaxTextureDimension2D); edge > maxDim {
		edge = maxDim
	}

	var index uint32
	if n := len(st.freeList); n > 0 {
		index = st.freeList[n-1]
		st.freeList = st.freeList[:n-1]
	} else {
		index = uint32(len(st.slots))
		st.slots = append(st.slots, nil)
		st.generations = append(st.generations, 0)
	}

	id := TextureID{Index: index, Generation: st.generations[index], Kind: kind}
	t, err := newAtlasTexture(a.device, id, present.Size{Width: edge, Height: edge}, a.config.Padding)
	if err != nil {
		st.freeList = append(st.freeList, index)
		return nil, err
	}
	st.slots[index] = t
	return t, nil
}

func (a *Atlas) removeLocked(key Key, tile Tile) {
	delete(a.tilesByKey, key)

	// Drop any pending upload for the removed tile.
	kept := a.pending[:0]
	for _, up := range a.pending {
		if up.tileID != tile.ID {
			kept = append(kept, up)
		}
	}
	a.pending = kept

	id := tile.ID.Texture
	st := &a.storage[id.Kind]
	if int(id.Index) >= len(st.slots) {
		return
	}
	t := st.slots[id.Index]
	if t == nil || t.id != id {
		return
	}

	t.liveTiles--
	if t.liveTiles > 0 {
		return
	}

	t.destroy()
	st.slots[id.Index] = nil
	st.generations[id.Index]++
	st.freeList = append(st.freeList, id.Index)
}

func (a *Atlas) textureLocked(id TextureID) (*atlasTexture, error) {
	st := &a.storage[id.Kind]
	if int(id.Index) >= len(st.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleTexture, id)
	}
	t := st.slots[id.Index]
	if t == nil || t.id != id {
		return nil, fmt.Errorf("%w: %s", ErrStaleTexture, id)
	}
	return t, nil
}

func checkDataSize(kind present.TextureKind, size present.Size, data []byte) error {
	want := size.Area() * kind.Format().BytesPerPixel()
	if len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %s %s",
			ErrDataSize, len(data), want, kind, size)
	}
	return nil
}
