package index

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/perthro/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "perthro-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(path string) FileRow {
	return NewFileRow(storage.FileInfo{Path: path, Size: 3, ModTime: time.Now()})
}

func TestNewFileRow_DerivesNameFields(t *testing.T) {
	fr := NewFileRow(storage.FileInfo{Path: "images/sub/Photo.PNG", Size: 9})
	if fr.Name != "Photo.PNG" {
		t.Errorf("name = %q", fr.Name)
	}
	if fr.Stem != "Photo" {
		t.Errorf("stem = %q", fr.Stem)
	}
	if fr.Ext != ".png" {
		t.Errorf("ext = %q", fr.Ext)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertFile(row("images/photo.png")); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	fr, err := db.GetFile("images/photo.png")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if fr == nil || fr.Name != "photo.png" {
		t.Errorf("row = %+v", fr)
	}
	if missing, _ := db.GetFile("nope.png"); missing != nil {
		t.Error("expected nil for unindexed path")
	}
}

func TestLookupName_ByNameAndStem(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(row("images/photo.png"))

	p, err := db.LookupName("photo.png")
	if err != nil {
		t.Fatalf("LookupName: %v", err)
	}
	if p != "images/photo.png" {
		t.Errorf("by name = %q", p)
	}

	p, err = db.LookupName("photo")
	if err != nil {
		t.Fatalf("LookupName: %v", err)
	}
	if p != "images/photo.png" {
		t.Errorf("by stem = %q", p)
	}

	p, _ = db.LookupName("unknown")
	if p != "" {
		t.Errorf("unknown name = %q, want empty", p)
	}
}

func TestLookupName_ShortestPathWins(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(row("deep/nested/dir/photo.png"))
	_ = db.UpsertFile(row("top/photo.png"))

	p, err := db.LookupName("photo.png")
	if err != nil {
		t.Fatalf("LookupName: %v", err)
	}
	if p != "top/photo.png" {
		t.Errorf("got %q, want the shorter path", p)
	}
}

func TestListImages_FiltersAndFolder(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(row("images/a.png"))
	_ = db.UpsertFile(row("images/b.jpg"))
	_ = db.UpsertFile(row("other/c.gif"))
	_ = db.UpsertFile(row("notes/note.md"))

	all, err := db.ListImages("", 0)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all images = %d, want 3 (markdown excluded)", len(all))
	}

	scoped, err := db.ListImages("images", 0)
	if err != nil {
		t.Fatalf("ListImages(images): %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("scoped images = %d, want 2", len(scoped))
	}
}

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	db := testDB(t)
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = store.Write("images/a.png", []byte("a"))
	_ = store.Write("b.jpg", []byte("b"))
	// Pre-seed a stale entry.
	_ = db.UpsertFile(row("gone.png"))

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	files, err := db.AllFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("indexed = %d, want 2", len(files))
	}
	if _, ok := files["gone.png"]; ok {
		t.Error("stale entry survived sync")
	}
	if _, ok := files["images/a.png"]; !ok {
		t.Error("images/a.png not indexed")
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	db := testDB(t)
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = store.Write("a.png", []byte("a"))
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	before, _ := db.GetFile("a.png")

	// Second sync with nothing changed keeps the same row.
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	after, _ := db.GetFile("a.png")
	if before == nil || after == nil || !before.ModTime.Equal(after.ModTime) {
		t.Errorf("unchanged file was rewritten: %+v vs %+v", before, after)
	}
}
