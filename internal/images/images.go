// Package images handles image files attached to notebook entries:
// importing them into the entry directory, reading their pixel
// geometry, and sizing them for terminal display.
package images

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	termimg "github.com/blacktop/go-termimg"

	"github.com/marcus/burrow/internal/notebook"
)

// Supported reports whether the file extension is an image type the
// decoder registry handles.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

// Dimensions reads the pixel size from the image header without
// decoding the pixels.
func Dimensions(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

// Import copies the image at srcPath into the entry's directory under a
// collision-free name and returns the token to splice into the entry
// content. The token carries the pixel dimensions so layout can size
// the row without touching the file again.
func Import(store *notebook.Store, entryID, srcPath string) (notebook.ImageToken, error) {
	if !Supported(srcPath) {
		return notebook.ImageToken{}, fmt.Errorf("unsupported image type %q", filepath.Ext(srcPath))
	}
	w, h, err := Dimensions(srcPath)
	if err != nil {
		return notebook.ImageToken{}, err
	}

	if _, err := store.LoadEntry(entryID); err != nil {
		return notebook.ImageToken{}, err
	}
	dir := store.EntryDir(entryID)
	name := importName(filepath.Base(srcPath))
	if err := atomicCopy(srcPath, filepath.Join(dir, name)); err != nil {
		return notebook.ImageToken{}, err
	}
	return notebook.ImageToken{Ref: name, Width: w, Height: h}, nil
}

// Path resolves an image token reference to its file inside the entry
// directory.
func Path(store *notebook.Store, entryID string, tok notebook.ImageToken) string {
	return filepath.Join(store.EntryDir(entryID), tok.Ref)
}

// importName prefixes the sanitized source name with random hex so two
// imports of the same file never collide.
func importName(base string) string {
	var b [6]byte
	rand.Read(b[:])
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	return hex.EncodeToString(b[:]) + "_" + clean
}

func atomicCopy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".img-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// TerminalRender renders the image for an inline terminal cell block
// using whatever graphics protocol the terminal supports.
func TerminalRender(path string) (string, error) {
	img, err := termimg.Open(path)
	if err != nil {
		return "", err
	}
	return img.Render()
}
