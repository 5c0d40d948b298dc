// Package view holds the geometry glue between the flat row sequence
// and the terminal viewport.
package view

import "sort"

// LayoutIndex maps between row indices and content-space Y coordinates
// using cumulative offsets. It mirrors the row sequence one to one: every
// flat-tree splice is echoed here with InsertRows or RemoveRows, keeping
// updates proportional to the splice instead of the whole document.
//
// offsets[i] is the top of row i; heights[i] its height in cells.
type LayoutIndex struct {
	offsets []int
	heights []int
	total   int
}

// Len returns the number of indexed rows.
func (ix *LayoutIndex) Len() int { return len(ix.heights) }

// ContentHeight returns the summed height of all rows.
func (ix *LayoutIndex) ContentHeight() int { return ix.total }

// Rebuild replaces the whole index from a fresh height slice. O(n).
func (ix *LayoutIndex) Rebuild(heights []int) {
	ix.heights = make([]int, len(heights))
	ix.offsets = make([]int, len(heights))
	acc := 0
	for i, h := range heights {
		if h < 0 {
			h = 0
		}
		ix.heights[i] = h
		ix.offsets[i] = acc
		acc += h
	}
	ix.total = acc
}

// RowTop returns the content Y of the top of row i, 0 when out of range.
func (ix *LayoutIndex) RowTop(i int) int {
	if i < 0 || i >= len(ix.offsets) {
		return 0
	}
	return ix.offsets[i]
}

// RowHeight returns the height of row i, 0 when out of range.
func (ix *LayoutIndex) RowHeight(i int) int {
	if i < 0 || i >= len(ix.heights) {
		return 0
	}
	return ix.heights[i]
}

// RowAtY maps a content Y to (row index, offset into that row). Y past
// the end clamps to the bottom of the last row; an empty index returns
// (-1, 0).
func (ix *LayoutIndex) RowAtY(y int) (int, int) {
	if len(ix.offsets) == 0 {
		return -1, 0
	}
	if y < 0 {
		return 0, y
	}
	// First row whose top is strictly past y, minus one.
	i := sort.Search(len(ix.offsets), func(k int) bool { return ix.offsets[k] > y }) - 1
	if i < 0 {
		i = 0
	}
	last := len(ix.heights) - 1
	if y >= ix.total {
		off := ix.heights[last] - 1
		if off < 0 {
			off = 0
		}
		return last, off
	}
	return i, y - ix.offsets[i]
}

// InsertRows splices heights in before row i, shifting later offsets.
// An out-of-range i clamps to the nearest end.
func (ix *LayoutIndex) InsertRows(i int, heights []int) {
	if len(heights) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(ix.heights) {
		i = len(ix.heights)
	}

	segment := make([]int, len(heights))
	segOffsets := make([]int, len(heights))
	base := 0
	if i > 0 {
		base = ix.offsets[i-1] + ix.heights[i-1]
	}
	added := 0
	for k, h := range heights {
		if h < 0 {
			h = 0
		}
		segment[k] = h
		segOffsets[k] = base + added
		added += h
	}

	ix.heights = append(ix.heights[:i], append(segment, ix.heights[i:]...)...)
	ix.offsets = append(ix.offsets[:i], append(segOffsets, ix.offsets[i:]...)...)
	for k := i + len(segment); k < len(ix.offsets); k++ {
		ix.offsets[k] += added
	}
	ix.total += added
}

// RemoveRows splices out n rows starting at i, shifting later offsets.
// The range is clamped to the index bounds.
func (ix *LayoutIndex) RemoveRows(i, n int) {
	if i < 0 {
		n += i
		i = 0
	}
	if i >= len(ix.heights) || n <= 0 {
		return
	}
	if i+n > len(ix.heights) {
		n = len(ix.heights) - i
	}

	removed := 0
	for k := i; k < i+n; k++ {
		removed += ix.heights[k]
	}
	ix.heights = append(ix.heights[:i], ix.heights[i+n:]...)
	ix.offsets = append(ix.offsets[:i], ix.offsets[i+n:]...)
	for k := i; k < len(ix.offsets); k++ {
		ix.offsets[k] -= removed
	}
	ix.total -= removed
}

// SetRowHeight updates one row's height in place, shifting later
// offsets by the delta. Used when a relayout changes a single row.
func (ix *LayoutIndex) SetRowHeight(i, h int) {
	if i < 0 || i >= len(ix.heights) {
		return
	}
	if h < 0 {
		h = 0
	}
	delta := h - ix.heights[i]
	if delta == 0 {
		return
	}
	ix.heights[i] = h
	for k := i + 1; k < len(ix.offsets); k++ {
		ix.offsets[k] += delta
	}
	ix.total += delta
}
