package images

import "github.com/marcus/burrow/internal/notebook"

// Default cell geometry used when a CellSizer field is zero.
const (
	defaultCellPxW = 8
	defaultCellPxH = 16
	defaultMaxRows = 12

	placeholderCols = 10
	placeholderRows = 3
)

// CellSizer maps image pixel dimensions to a terminal cell box,
// preserving aspect ratio. Images shrink to fit the available width and
// the row cap but are never scaled up past their natural cell size.
type CellSizer struct {
	MaxCols int // hard cap on columns, 0 means width-limited only
	MaxRows int // hard cap on rows, 0 uses the default
	CellPxW int // assumed pixel width of one cell
	CellPxH int // assumed pixel height of one cell
}

// DisplaySize returns the cell box for tok at the given available
// width. Tokens with unknown dimensions get a fixed placeholder box.
func (s CellSizer) DisplaySize(tok notebook.ImageToken, availWidth int) (int, int) {
	pxW, pxH := s.CellPxW, s.CellPxH
	if pxW <= 0 {
		pxW = defaultCellPxW
	}
	if pxH <= 0 {
		pxH = defaultCellPxH
	}
	maxRows := s.MaxRows
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	maxCols := availWidth
	if s.MaxCols > 0 && s.MaxCols < maxCols {
		maxCols = s.MaxCols
	}
	if maxCols < 1 {
		maxCols = 1
	}

	if tok.Width <= 0 || tok.Height <= 0 {
		return clamp(placeholderCols, 1, maxCols), clamp(placeholderRows, 1, maxRows)
	}

	cols := (tok.Width + pxW - 1) / pxW
	rows := (tok.Height + pxH - 1) / pxH

	if cols > maxCols {
		rows = scale(rows, maxCols, cols)
		cols = maxCols
	}
	if rows > maxRows {
		cols = scale(cols, maxRows, rows)
		rows = maxRows
	}
	return clamp(cols, 1, maxCols), clamp(rows, 1, maxRows)
}

// scale returns v*num/den rounded, at least 1.
func scale(v, num, den int) int {
	out := (v*num + den/2) / den
	if out < 1 {
		return 1
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
