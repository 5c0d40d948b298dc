// Package layout computes wrapped lines and row heights for entry
// content. It is a pure function of its inputs: identical content,
// params and metrics always produce identical output, which is what
// makes the cache in internal/cache sound.
package layout

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/marcus/burrow/internal/notebook"
)

// ErrBadInput rejects malformed layout requests (non-positive width, nil
// metrics, unknown content nodes) at the boundary, before the wrap loop
// runs.
var ErrBadInput = errors.New("layout: bad input")

// RowPadding is the fixed padding above and below every row, in layout
// units.
const RowPadding = 1

// FontMetrics measures text for one rendering backend.
type FontMetrics interface {
	// StringWidth returns the rendered width of s in layout units.
	StringWidth(s string) int
	// LineHeight returns the height of one text line in layout units.
	LineHeight() int
}

// ImageSizer resolves an image token to its display size at the current
// width, typically scaling a thumbnail down to fit. Implementations must
// be deterministic for identical inputs.
type ImageSizer interface {
	DisplaySize(tok notebook.ImageToken, availWidth int) (w, h int)
}

// Params are the inputs that invalidate cached metrics when they change.
type Params struct {
	Width      int
	ThumbScale int // thumbnail max edge, in layout units
}

// Span is a slice of one source text run placed on one line. Start/End
// are byte offsets into the run's text, so the renderer can restyle the
// exact slice without re-deriving run boundaries.
type Span struct {
	Run   int // index into the source content
	Start int
	End   int
	Width int
}

// Line is one wrapped output line: either text spans or a single image.
// Images never share a line with text.
type Line struct {
	Spans  []Span
	Image  *notebook.ImageToken
	Width  int
	Height int
}

// Metrics is the computed layout for one entry at one width. Derived
// data only; owned by the cache, never persisted.
type Metrics struct {
	Lines       []Line
	RowHeight   int
	ComputedFor Params
}

// Compute lays content out into params.Width. Text wraps greedily at
// word boundaries (run boundaries are also break opportunities); a word
// wider than the available width is placed alone on its own line rather
// than hard-broken. Image tokens always occupy a line of their own.
// Zero content produces exactly one empty line of standard text height.
func Compute(content notebook.Content, params Params, fm FontMetrics, sizer ImageSizer) (*Metrics, error) {
	if params.Width <= 0 || fm == nil {
		return nil, ErrBadInput
	}

	var lines []Line
	w := wrapper{width: params.Width, fm: fm}

	for runIdx, node := range content {
		switch v := node.(type) {
		case notebook.TextRun:
			w.addRun(runIdx, v.Text, &lines)
		case notebook.ImageToken:
			w.flush(&lines)
			iw, ih := 0, fm.LineHeight()
			if sizer != nil {
				iw, ih = sizer.DisplaySize(v, params.Width)
			}
			tok := v
			lines = append(lines, Line{Image: &tok, Width: iw, Height: ih + 2*RowPadding})
		default:
			return nil, ErrBadInput
		}
	}
	w.flush(&lines)

	if len(lines) == 0 {
		lines = append(lines, Line{Height: fm.LineHeight()})
	}

	total := 2 * RowPadding
	for _, ln := range lines {
		total += ln.Height
	}
	return &Metrics{
		Lines:       lines,
		RowHeight:   total,
		ComputedFor: params,
	}, nil
}

// wrapper accumulates spans for the in-progress line across run
// boundaries. Whitespace tokens are buffered and only committed once a
// following word fits on the same line, so wrapped lines never carry
// leading or trailing spaces.
type wrapper struct {
	width int
	fm    FontMetrics

	cur     []Span
	curW    int
	pending bool

	spaces []Span
	spaceW int
}

// addRun wraps one text run onto the current and following lines. Tokens
// are maximal runs of space or non-space runes; every committed token
// keeps its exact byte range so the renderer can slice the source run.
func (w *wrapper) addRun(runIdx int, text string, out *[]Line) {
	for pos := 0; pos < len(text); {
		start := pos
		r, size := utf8.DecodeRuneInString(text[pos:])
		isSpace := unicode.IsSpace(r)
		pos += size
		for pos < len(text) {
			r, size = utf8.DecodeRuneInString(text[pos:])
			if unicode.IsSpace(r) != isSpace {
				break
			}
			pos += size
		}
		tw := w.fm.StringWidth(text[start:pos])

		if isSpace {
			// Leading whitespace on a fresh line is dropped outright.
			if w.pending {
				w.spaces = append(w.spaces, Span{Run: runIdx, Start: start, End: pos, Width: tw})
				w.spaceW += tw
			}
			continue
		}

		if w.pending && w.curW+w.spaceW+tw > w.width {
			w.flush(out)
		}
		// Commit any buffered interior whitespace, then the word. An
		// over-wide word lands alone on its (possibly fresh) line and
		// is consumed whole, so the loop always advances.
		for _, sp := range w.spaces {
			w.push(sp)
		}
		w.spaces, w.spaceW = nil, 0
		w.push(Span{Run: runIdx, Start: start, End: pos, Width: tw})
	}
}

// push appends a token to the current line, extending the previous span
// when it is contiguous in the same run.
func (w *wrapper) push(sp Span) {
	w.pending = true
	w.curW += sp.Width
	if n := len(w.cur); n > 0 {
		last := &w.cur[n-1]
		if last.Run == sp.Run && last.End == sp.Start {
			last.End = sp.End
			last.Width += sp.Width
			return
		}
	}
	w.cur = append(w.cur, sp)
}

// flush closes the in-progress line, if any, discarding buffered
// trailing whitespace.
func (w *wrapper) flush(out *[]Line) {
	w.spaces, w.spaceW = nil, 0
	if !w.pending {
		return
	}
	*out = append(*out, Line{
		Spans:  w.cur,
		Width:  w.curW,
		Height: w.fm.LineHeight(),
	})
	w.cur, w.curW, w.pending = nil, 0, false
}
