package atlas

// shelfAllocator implements shelf-based rectangle packing.
//
// Rectangles are placed left-to-right on horizontal shelves. Each shelf's
// height is fixed by the tallest item placed on it; when an item does not
// fit on any shelf a new shelf is opened below the last one. Items on a
// shelf are separated by padding; shelves stack tightly, since tiles carry
// their gutter in the horizontal direction only and rasters bake a blank
// border where vertical bleed matters.
type shelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf

	usedArea int
}

// shelf is a horizontal strip of the texture.
type shelf struct {
	y      int // top of the shelf
	height int // tallest item so far
	x      int // next free slot
}

func newShelfAllocator(width, height, padding int) *shelfAllocator {
	return &shelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate finds space for a w by h rectangle.
// Returns the position and true, or -1, -1, false when nothing fits.
func (a *shelfAllocator) allocate(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 {
		return -1, -1, false
	}

	for i := range a.shelves {
		s := &a.shelves[i]

		if s.x+w > a.width {
			continue
		}

		if h > s.height {
			// Taller than the shelf. The last shelf may grow downward if
			// there is room below it.
			if i == len(a.shelves)-1 && s.y+h <= a.height {
				s.height = h
				x, y = s.x, s.y
				s.x += w + a.padding
				a.usedArea += w * h
				return x, y, true
			}
			continue
		}

		x, y = s.x, s.y
		s.x += w + a.padding
		a.usedArea += w * h
		return x, y, true
	}

	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height
	}
	if newY+h > a.height {
		return -1, -1, false
	}

	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: w + a.padding})
	a.usedArea += w * h
	return 0, newY, true
}

// canFit reports whether a w by h rectangle could ever fit in an empty
// allocator of these dimensions.
func (a *shelfAllocator) canFit(w, h int) bool {
	return w > 0 && h > 0 && w <= a.width && h <= a.height
}

// utilization returns the fraction of texture area covered by live tiles.
func (a *shelfAllocator) utilization() float64 {
	total := a.width * a.height
	if total <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}
