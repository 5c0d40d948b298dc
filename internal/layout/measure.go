package layout

import (
	"github.com/mattn/go-runewidth"
)

// CellMetrics measures text in terminal cells: every line is one cell
// tall and string widths come from go-runewidth, so east-asian wide
// runes and combining marks measure the way the terminal renders them.
type CellMetrics struct{}

func (CellMetrics) StringWidth(s string) int { return runewidth.StringWidth(s) }

func (CellMetrics) LineHeight() int { return 1 }
