package notebook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Create(t.TempDir(), "test", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return s
}

func TestCreateAndLoadEntry(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateEntry("", -1)
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	e, err := s.LoadEntry(id)
	if err != nil {
		t.Fatalf("LoadEntry failed: %v", err)
	}
	if e.ID != id {
		t.Errorf("loaded id = %q, want %q", e.ID, id)
	}
	if e.ParentID != "" {
		t.Errorf("root entry has parent %q", e.ParentID)
	}
	if len(e.Content) != 1 {
		t.Errorf("new entry content runs = %d, want 1", len(e.Content))
	}

	roots, err := s.RootIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0] != id {
		t.Errorf("root ids = %v, want [%s]", roots, id)
	}
}

func TestLoadEntryNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadEntry("doesnotexist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.LoadEntry("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("short id: expected ErrNotFound, got %v", err)
	}
}

func TestChildOrderPreserved(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateEntry("", -1)

	a, _ := s.CreateEntry(parent, -1)
	b, _ := s.CreateEntry(parent, -1)
	// Insert at the front.
	c, _ := s.CreateEntry(parent, 0)

	children, err := s.ListChildren(parent)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{c, a, b}
	if len(children) != 3 {
		t.Fatalf("children = %v, want 3 ids", children)
	}
	for i := range want {
		if children[i] != want[i] {
			t.Errorf("children[%d] = %s, want %s", i, children[i], want[i])
		}
	}
}

func TestDeleteEntryRemovesSubtree(t *testing.T) {
	s := newTestStore(t)
	root, _ := s.CreateEntry("", -1)
	child, _ := s.CreateEntry(root, -1)
	grand, _ := s.CreateEntry(child, -1)

	if err := s.DeleteEntry(child); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	for _, id := range []string{child, grand} {
		if _, err := s.LoadEntry(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("entry %s should be gone, got %v", id, err)
		}
		if _, err := os.Stat(s.EntryDir(id)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("entry dir %s should be removed", id)
		}
	}

	parent, _ := s.LoadEntry(root)
	if len(parent.Children) != 0 {
		t.Errorf("parent children = %v, want empty", parent.Children)
	}
}

func TestDeleteRootEntry(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)
	b, _ := s.CreateEntry("", -1)

	if err := s.DeleteEntry(a); err != nil {
		t.Fatal(err)
	}
	roots, _ := s.RootIDs()
	if len(roots) != 1 || roots[0] != b {
		t.Errorf("roots = %v, want [%s]", roots, b)
	}
}

func TestSetParentMovesSubtree(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)
	b, _ := s.CreateEntry("", -1)
	child, _ := s.CreateEntry(a, -1)
	grand, _ := s.CreateEntry(child, -1)

	if err := s.SetParent(child, b, 0); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}

	ac, _ := s.ListChildren(a)
	if len(ac) != 0 {
		t.Errorf("old parent children = %v, want empty", ac)
	}
	bc, _ := s.ListChildren(b)
	if len(bc) != 1 || bc[0] != child {
		t.Errorf("new parent children = %v, want [%s]", bc, child)
	}
	moved, _ := s.LoadEntry(child)
	if moved.ParentID != b {
		t.Errorf("moved parent = %q, want %q", moved.ParentID, b)
	}
	// Subtree goes along.
	g, err := s.LoadEntry(grand)
	if err != nil || g.ParentID != child {
		t.Errorf("grandchild should still hang under %s", child)
	}
}

func TestSetParentRejectsCycle(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)
	child, _ := s.CreateEntry(a, -1)

	if err := s.SetParent(a, child, 0); err == nil {
		t.Error("expected error moving entry under its own descendant")
	}
	if err := s.SetParent(a, a, 0); err == nil {
		t.Error("expected error moving entry under itself")
	}
}

func TestSetParentToRoot(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)
	child, _ := s.CreateEntry(a, -1)

	if err := s.SetParent(child, "", 0); err != nil {
		t.Fatal(err)
	}
	roots, _ := s.RootIDs()
	if len(roots) != 2 || roots[0] != child {
		t.Errorf("roots = %v, want [%s %s]", roots, child, a)
	}
}

func TestAncestors(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)
	b, _ := s.CreateEntry(a, -1)
	c, _ := s.CreateEntry(b, -1)

	anc, err := s.Ancestors(c)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{b, a}
	if len(anc) != 2 || anc[0] != want[0] || anc[1] != want[1] {
		t.Errorf("ancestors = %v, want %v", anc, want)
	}

	anc, err = s.Ancestors(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(anc) != 0 {
		t.Errorf("root ancestors = %v, want empty", anc)
	}
}

func TestAddSiblingAfter(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateEntry("", -1)
	a, _ := s.CreateEntry(parent, -1)
	b, _ := s.CreateEntry(parent, -1)

	mid, err := s.AddSiblingAfter(a)
	if err != nil {
		t.Fatalf("AddSiblingAfter failed: %v", err)
	}

	children, _ := s.ListChildren(parent)
	want := []string{a, mid, b}
	for i := range want {
		if children[i] != want[i] {
			t.Fatalf("children = %v, want %v", children, want)
		}
	}
}

func TestAddSiblingAfterRoot(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)
	b, _ := s.CreateEntry("", -1)

	mid, err := s.AddSiblingAfter(a)
	if err != nil {
		t.Fatal(err)
	}
	roots, _ := s.RootIDs()
	want := []string{a, mid, b}
	for i := range want {
		if roots[i] != want[i] {
			t.Fatalf("roots = %v, want %v", roots, want)
		}
	}
}

func TestIndentOutdent(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateEntry("", -1)
	a, _ := s.CreateEntry(parent, -1)
	b, _ := s.CreateEntry(parent, -1)

	// b indents under a.
	ok, err := s.IndentUnderPrevSibling(b)
	if err != nil || !ok {
		t.Fatalf("indent: ok=%v err=%v", ok, err)
	}
	ac, _ := s.ListChildren(a)
	if len(ac) != 1 || ac[0] != b {
		t.Fatalf("a children = %v, want [%s]", ac, b)
	}

	// First child has no previous sibling.
	ok, err = s.IndentUnderPrevSibling(a)
	if err != nil || ok {
		t.Errorf("indent of first child: ok=%v err=%v, want no-op", ok, err)
	}

	// Outdent restores b after a.
	ok, err = s.OutdentToParentSibling(b)
	if err != nil || !ok {
		t.Fatalf("outdent: ok=%v err=%v", ok, err)
	}
	pc, _ := s.ListChildren(parent)
	want := []string{a, b}
	for i := range want {
		if pc[i] != want[i] {
			t.Fatalf("parent children = %v, want %v", pc, want)
		}
	}

	// Roots can't outdent.
	ok, err = s.OutdentToParentSibling(parent)
	if err != nil || ok {
		t.Errorf("outdent of root: ok=%v err=%v, want no-op", ok, err)
	}
}

func TestIndentExpandsCollapsedTarget(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.CreateEntry("", -1)
	a, _ := s.CreateEntry(parent, -1)
	b, _ := s.CreateEntry(parent, -1)
	if _, err := s.SetCollapsed(a, true); err != nil {
		t.Fatal(err)
	}

	if _, err := s.IndentUnderPrevSibling(b); err != nil {
		t.Fatal(err)
	}
	e, _ := s.LoadEntry(a)
	if e.Collapsed {
		t.Error("indent target should have been expanded")
	}
}

func TestSetCollapsedIdempotent(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateEntry("", -1)

	changed, err := s.SetCollapsed(a, true)
	if err != nil || !changed {
		t.Fatalf("first collapse: changed=%v err=%v", changed, err)
	}
	changed, err = s.SetCollapsed(a, true)
	if err != nil || changed {
		t.Errorf("second collapse: changed=%v err=%v, want no change", changed, err)
	}
}

func TestContentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateEntry("", -1)
	e, _ := s.LoadEntry(id)
	e.Content = Content{
		TextRun{Text: "hello ", Bold: true},
		TextRun{Text: "world", Italic: true, Color: "#ff0000"},
		ImageToken{Ref: "img_001.png", Width: 640, Height: 480},
	}
	if err := s.SaveEntry(e); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadEntry(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Content) != 3 {
		t.Fatalf("content runs = %d, want 3", len(got.Content))
	}
	r0, ok := got.Content[0].(TextRun)
	if !ok || r0.Text != "hello " || !r0.Bold {
		t.Errorf("run 0 = %#v", got.Content[0])
	}
	img, ok := got.Content[2].(ImageToken)
	if !ok || img.Ref != "img_001.png" || img.Width != 640 {
		t.Errorf("run 2 = %#v", got.Content[2])
	}
	if got.PlainText() != "hello world" {
		t.Errorf("PlainText = %q", got.PlainText())
	}
}

func TestMalformedContentRejected(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateEntry("", -1)

	// Corrupt the file with an unknown run type.
	path := filepath.Join(s.EntryDir(id), "entry.json")
	bad := `{"id":"` + id + `","children":[],"content":[{"type":"blob"}],` +
		`"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadEntry(id); err == nil {
		t.Error("expected error loading entry with unknown run type")
	}
}

func TestOpenRejectsNonNotebook(t *testing.T) {
	if _, err := Open(t.TempDir(), nil); err == nil {
		t.Error("expected error opening empty dir as notebook")
	}
}

func TestCreateRejectsNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644)
	if _, err := Create(dir, "nb", nil); err == nil {
		t.Error("expected error creating notebook in non-empty dir")
	}
}
