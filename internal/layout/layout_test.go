package layout

import (
	"errors"
	"reflect"
	"testing"

	"github.com/marcus/burrow/internal/notebook"
)

func text(s string) notebook.Content {
	return notebook.Content{notebook.TextRun{Text: s}}
}

// fixedSizer returns a constant display size for every token.
type fixedSizer struct{ w, h int }

func (s fixedSizer) DisplaySize(notebook.ImageToken, int) (int, int) { return s.w, s.h }

func lineText(content notebook.Content, ln Line) string {
	var out string
	for _, sp := range ln.Spans {
		run := content[sp.Run].(notebook.TextRun)
		out += run.Text[sp.Start:sp.End]
	}
	return out
}

func TestComputeRejectsBadInput(t *testing.T) {
	if _, err := Compute(text("x"), Params{Width: 0}, CellMetrics{}, nil); !errors.Is(err, ErrBadInput) {
		t.Errorf("zero width: %v, want ErrBadInput", err)
	}
	if _, err := Compute(text("x"), Params{Width: -5}, CellMetrics{}, nil); !errors.Is(err, ErrBadInput) {
		t.Errorf("negative width: %v, want ErrBadInput", err)
	}
	if _, err := Compute(text("x"), Params{Width: 10}, nil, nil); !errors.Is(err, ErrBadInput) {
		t.Errorf("nil metrics: %v, want ErrBadInput", err)
	}
}

func TestEmptyContentSingleLine(t *testing.T) {
	for _, content := range []notebook.Content{nil, {}, {notebook.TextRun{}}} {
		m, err := Compute(content, Params{Width: 40}, CellMetrics{}, nil)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if len(m.Lines) != 1 {
			t.Fatalf("lines = %d, want exactly 1", len(m.Lines))
		}
		if m.Lines[0].Height != 1 {
			t.Errorf("empty line height = %d, want 1", m.Lines[0].Height)
		}
		if want := 1 + 2*RowPadding; m.RowHeight != want {
			t.Errorf("row height = %d, want %d", m.RowHeight, want)
		}
	}
}

func TestGreedyWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits on one line", "hello world", 20, []string{"hello world"}},
		{"wraps at word boundary", "hello world", 8, []string{"hello", "world"}},
		{"exact fit", "hello world", 11, []string{"hello world"}},
		{"three lines", "one two three four", 7, []string{"one two", "three", "four"}},
		{"overlong word alone", "hi extraordinarily no", 6, []string{"hi", "extraordinarily", "no"}},
		{"overlong word only", "extraordinarily", 4, []string{"extraordinarily"}},
		{"single char width", "a b c", 1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := text(tt.text)
			m, err := Compute(content, Params{Width: tt.width}, CellMetrics{}, nil)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			var got []string
			for _, ln := range m.Lines {
				got = append(got, lineText(content, ln))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			if want := len(tt.want) + 2*RowPadding; m.RowHeight != want {
				t.Errorf("row height = %d, want %d", m.RowHeight, want)
			}
		})
	}
}

func TestRunBoundariesPreserved(t *testing.T) {
	content := notebook.Content{
		notebook.TextRun{Text: "bold ", Bold: true},
		notebook.TextRun{Text: "plain"},
	}
	m, err := Compute(content, Params{Width: 40}, CellMetrics{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(m.Lines))
	}
	spans := m.Lines[0].Spans
	if len(spans) != 2 {
		t.Fatalf("spans = %+v, want one per run", spans)
	}
	if spans[0].Run != 0 || spans[1].Run != 1 {
		t.Errorf("span runs = %d, %d; want 0, 1", spans[0].Run, spans[1].Run)
	}
	if got := lineText(content, m.Lines[0]); got != "bold plain" {
		t.Errorf("line text = %q", got)
	}
}

func TestSpansMergeWithinRun(t *testing.T) {
	content := text("a b c")
	m, err := Compute(content, Params{Width: 40}, CellMetrics{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// One line, and contiguous tokens of the same run coalesce into a
	// single span.
	if len(m.Lines) != 1 || len(m.Lines[0].Spans) != 1 {
		t.Fatalf("lines = %+v, want one line with one span", m.Lines)
	}
	sp := m.Lines[0].Spans[0]
	if sp.Start != 0 || sp.End != len("a b c") {
		t.Errorf("span range = [%d,%d)", sp.Start, sp.End)
	}
}

func TestWordSplitAcrossRunsMayBreak(t *testing.T) {
	// A run boundary is a break opportunity: "over"+"flow" can split.
	content := notebook.Content{
		notebook.TextRun{Text: "xx over"},
		notebook.TextRun{Text: "flow", Italic: true},
	}
	m, err := Compute(content, Params{Width: 7}, CellMetrics{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(m.Lines))
	}
	if got := lineText(content, m.Lines[0]); got != "xx over" {
		t.Errorf("first line = %q", got)
	}
	if got := lineText(content, m.Lines[1]); got != "flow" {
		t.Errorf("second line = %q", got)
	}
}

func TestImageOwnsItsLine(t *testing.T) {
	content := notebook.Content{
		notebook.TextRun{Text: "before"},
		notebook.ImageToken{Ref: "img.png", Width: 100, Height: 60},
		notebook.TextRun{Text: "after"},
	}
	m, err := Compute(content, Params{Width: 40}, CellMetrics{}, fixedSizer{w: 20, h: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(m.Lines))
	}
	if m.Lines[0].Image != nil || m.Lines[2].Image != nil {
		t.Error("text lines should not carry images")
	}
	img := m.Lines[1]
	if img.Image == nil || img.Image.Ref != "img.png" {
		t.Fatalf("middle line image = %+v", img.Image)
	}
	if len(img.Spans) != 0 {
		t.Error("image line must not mix in text spans")
	}
	if want := 10 + 2*RowPadding; img.Height != want {
		t.Errorf("image line height = %d, want %d", img.Height, want)
	}
	if want := 1 + (10 + 2*RowPadding) + 1 + 2*RowPadding; m.RowHeight != want {
		t.Errorf("row height = %d, want %d", m.RowHeight, want)
	}
}

func TestDeterminism(t *testing.T) {
	content := notebook.Content{
		notebook.TextRun{Text: "the quick brown fox jumps over the lazy dog", Bold: true},
		notebook.ImageToken{Ref: "x.png", Width: 320, Height: 200},
		notebook.TextRun{Text: "and keeps running до самого конца"},
	}
	a, err := Compute(content, Params{Width: 17, ThumbScale: 64}, CellMetrics{}, fixedSizer{w: 16, h: 8})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(content, Params{Width: 17, ThumbScale: 64}, CellMetrics{}, fixedSizer{w: 16, h: 8})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different metrics")
	}
}

func TestComputedForRecordsParams(t *testing.T) {
	p := Params{Width: 33, ThumbScale: 128}
	m, err := Compute(text("x"), p, CellMetrics{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.ComputedFor != p {
		t.Errorf("ComputedFor = %+v, want %+v", m.ComputedFor, p)
	}
}

func TestWideRunesMeasureWide(t *testing.T) {
	// Four CJK runes are eight cells; at width 8 they fit one line, at
	// width 7 they wrap per token rules (single word stays whole).
	content := text("日本語字")
	m, err := Compute(content, Params{Width: 8}, CellMetrics{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Lines) != 1 || m.Lines[0].Width != 8 {
		t.Fatalf("lines = %+v, want one 8-cell line", m.Lines)
	}
}
