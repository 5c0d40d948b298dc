package ui

import (
	"strings"
	"testing"
)

func TestMaxLineWidth(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int
	}{
		{"empty", []string{}, 0},
		{"single", []string{"hello"}, 5},
		{"multiple", []string{"hi", "hello", "hey"}, 5},
		{"with ansi", []string{"\x1b[31mred\x1b[0m"}, 3}, // visual width is 3
		{"empty lines", []string{"", "", ""}, 0},
		{"mixed", []string{"short", "longer line", "mid"}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maxLineWidth(tt.lines)
			if got != tt.want {
				t.Errorf("maxLineWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompositeRow(t *testing.T) {
	tests := []struct {
		name        string
		bgLine      string
		boxLine   string
		startX int
		boxWidth  int
		totalWidth  int
		wantBox   bool // should contain box content
	}{
		{
			name:        "basic centered",
			bgLine:      "background text here",
			boxLine:   "[MODAL]",
			startX: 5,
			boxWidth:  7,
			totalWidth:  20,
			wantBox:   true,
		},
		{
			name:        "box at left edge",
			bgLine:      "background",
			boxLine:   "[M]",
			startX: 0,
			boxWidth:  3,
			totalWidth:  10,
			wantBox:   true,
		},
		{
			name:        "background shorter than box position",
			bgLine:      "hi",
			boxLine:   "[MODAL]",
			startX: 10,
			boxWidth:  7,
			totalWidth:  20,
			wantBox:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compositeRow(tt.bgLine, tt.boxLine, tt.startX, tt.boxWidth, tt.totalWidth)

			if tt.wantBox && !strings.Contains(got, tt.boxLine) {
				t.Errorf("compositeRow() missing box content %q", tt.boxLine)
			}
		})
	}
}

func TestOverlay(t *testing.T) {
	tests := []struct {
		name       string
		background string
		box        string
		width      int
		height     int
		checkFn    func(t *testing.T, result string)
	}{
		{
			name:       "basic overlay",
			background: "line1\nline2\nline3\nline4\nline5",
			box:        "[M]",
			width:      10,
			height:     5,
			checkFn: func(t *testing.T, result string) {
				lines := strings.Split(result, "\n")
				if len(lines) != 5 {
					t.Errorf("expected 5 lines, got %d", len(lines))
				}
				// Box should be in middle line (line 2, 0-indexed)
				if !strings.Contains(lines[2], "[M]") {
					t.Errorf("box not found in expected line")
				}
			},
		},
		{
			name:       "strips ansi from background",
			background: "\x1b[31mred\x1b[0m\n\x1b[32mgreen\x1b[0m",
			box:        "X",
			width:      10,
			height:     3,
			checkFn: func(t *testing.T, result string) {
				// Original ANSI codes should be stripped
				if strings.Contains(result, "\x1b[31m") {
					t.Errorf("original red ANSI code should be stripped")
				}
				// Box should still be present
				if !strings.Contains(result, "X") {
					t.Errorf("box should be present")
				}
			},
		},
		{
			name:       "box larger than background",
			background: "a\nb",
			box:        "MODAL",
			width:      10,
			height:     5,
			checkFn: func(t *testing.T, result string) {
				lines := strings.Split(result, "\n")
				if len(lines) != 5 {
					t.Errorf("expected 5 lines, got %d", len(lines))
				}
				// Box should still be centered
				found := false
				for _, line := range lines {
					if strings.Contains(line, "MODAL") {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("box not found in result")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Overlay(tt.background, tt.box, tt.width, tt.height)
			tt.checkFn(t, result)
		})
	}
}

func TestDimLine(t *testing.T) {
	// dimLine should strip ANSI codes
	input := "\x1b[31mred text\x1b[0m"
	result := dimLine(input)

	// Should not contain original red ANSI code
	if strings.Contains(result, "\x1b[31m") {
		t.Errorf("dimLine should strip original ANSI codes")
	}

	// Should contain the plain text
	if !strings.Contains(result, "red text") {
		t.Errorf("dimLine should preserve text content")
	}
}
