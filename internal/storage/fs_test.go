package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndStat(t *testing.T) {
	s := tempVault(t)
	content := []byte("fake png bytes")
	if err := s.Write("attachments/pic.png", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := s.Stat("attachments/pic.png")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", info.Size, len(content))
	}
}

func TestReadRoundTrip(t *testing.T) {
	s := tempVault(t)
	content := []byte("payload")
	if err := s.Write("attachments/pic.png", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("attachments/pic.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.png", []byte("a"))
	_ = s.Write("sub/b.jpg", []byte("b"))
	_ = s.Write("notes/c.md", []byte("c"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("len = %d, want 3", len(items))
	}
	for _, it := range items {
		if filepath.IsAbs(it.Path) {
			t.Errorf("path %q should be relative", it.Path)
		}
	}
}

func TestList_SkipsDotDirectories(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("visible.png", []byte("v"))
	// Simulate the editor's config directory and a stray dotfile.
	_ = os.MkdirAll(filepath.Join(s.Root(), ".editor", "plugins"), 0o755)
	_ = os.WriteFile(filepath.Join(s.Root(), ".editor", "plugins", "cache.png"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), ".hidden.png"), []byte("x"), 0o644)

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "visible.png" {
		t.Errorf("items = %+v, want only visible.png", items)
	}
}

func TestList_Subdir(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("images/a.png", []byte("a"))
	_ = s.Write("other/b.png", []byte("b"))

	items, err := s.List("images")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "images/a.png" {
		t.Errorf("items = %+v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.png",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Stat(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempVault(t)
	original := []byte("original content")
	_ = s.Write("atomic.png", original)

	updated := []byte("updated content")
	if err := s.Write("atomic.png", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, _ := s.Stat("atomic.png")
	if info.Size != int64(len(updated)) {
		t.Errorf("expected updated content, size = %d", info.Size)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".perthro-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/perthro-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "perthro-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
