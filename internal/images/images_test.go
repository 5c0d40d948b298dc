package images

import (
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcus/burrow/internal/layout"
	"github.com/marcus/burrow/internal/notebook"
)

var _ layout.ImageSizer = CellSizer{}

func writePNG(t *testing.T, dir string, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.png": true, "b.JPG": true, "c.jpeg": true, "d.gif": true,
		"e.webp": false, "f.txt": false, "noext": false,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDimensions(t *testing.T) {
	path := writePNG(t, t.TempDir(), "pic.png", 17, 9)
	w, h, err := Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 17 || h != 9 {
		t.Errorf("dims = %dx%d, want 17x9", w, h)
	}
}

func TestImport(t *testing.T) {
	store, err := notebook.Create(t.TempDir(), "test", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.CreateEntry("", -1)
	if err != nil {
		t.Fatal(err)
	}
	src := writePNG(t, t.TempDir(), "my photo!.png", 4, 2)

	tok, err := Import(store, id, src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if tok.Width != 4 || tok.Height != 2 {
		t.Errorf("token dims = %dx%d, want 4x2", tok.Width, tok.Height)
	}
	if !strings.HasSuffix(tok.Ref, "_my_photo_.png") {
		t.Errorf("ref = %q, want sanitized suffix", tok.Ref)
	}
	if _, err := os.Stat(Path(store, id, tok)); err != nil {
		t.Errorf("imported file missing: %v", err)
	}
}

func TestImportRejectsUnsupported(t *testing.T) {
	store, err := notebook.Create(t.TempDir(), "test", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.CreateEntry("", -1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Import(store, id, "whatever.webp"); err == nil {
		t.Fatal("webp import should be rejected")
	}
}

func TestImportUnknownEntry(t *testing.T) {
	store, err := notebook.Create(t.TempDir(), "test", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	src := writePNG(t, t.TempDir(), "p.png", 2, 2)
	if _, err := Import(store, "missing000000", src); err == nil {
		t.Fatal("import into unknown entry should fail")
	}
}

func TestCellSizer(t *testing.T) {
	s := CellSizer{} // defaults: 8x16 px cells, 12 row cap
	tests := []struct {
		name       string
		w, h       int
		avail      int
		cols, rows int
	}{
		{"fits untouched", 80, 160, 40, 10, 10},
		{"small image stays small", 8, 16, 40, 1, 1},
		{"wide image fits width", 800, 160, 40, 40, 4},
		{"tall image hits row cap", 80, 800, 40, 2, 12},
		{"unknown dims placeholder", 0, 0, 40, 10, 3},
		{"placeholder clamps to width", 0, 0, 4, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := notebook.ImageToken{Ref: "x.png", Width: tt.w, Height: tt.h}
			cols, rows := s.DisplaySize(tok, tt.avail)
			if cols != tt.cols || rows != tt.rows {
				t.Errorf("DisplaySize = (%d, %d), want (%d, %d)", cols, rows, tt.cols, tt.rows)
			}
		})
	}
}

func TestCellSizerHonorsMaxCols(t *testing.T) {
	s := CellSizer{MaxCols: 8}
	tok := notebook.ImageToken{Ref: "x.png", Width: 400, Height: 80}
	cols, rows := s.DisplaySize(tok, 40)
	if cols != 8 {
		t.Errorf("cols = %d, want MaxCols cap of 8", cols)
	}
	if rows < 1 {
		t.Errorf("rows = %d", rows)
	}
}
