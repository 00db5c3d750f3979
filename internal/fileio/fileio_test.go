package fileio

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"llmgate/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestReadAfterWrite(t *testing.T) {
	a := NewAccessor(testLogger())
	path := filepath.Join(t.TempDir(), "note.txt")
	content := "line one\nline two\n"

	if err := a.Write(path, content); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := a.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != content {
		t.Errorf("roundtrip: got %q, want %q", got, content)
	}
}

func TestWrite_CreatesParentDirectories(t *testing.T) {
	a := NewAccessor(testLogger())
	path := filepath.Join(t.TempDir(), "sub", "deeper", "new.txt")

	if err := a.Write(path, "created"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := a.Read(path)
	if err != nil {
		t.Fatalf("Read after nested write: %v", err)
	}
	if got != "created" {
		t.Errorf("got %q", got)
	}
}

func TestRead_Missing(t *testing.T) {
	a := NewAccessor(testLogger())
	_, err := a.Read(filepath.Join(t.TempDir(), "absent.txt"))

	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRead_DirectoryIsNotFound(t *testing.T) {
	a := NewAccessor(testLogger())
	dir := t.TempDir()

	_, err := a.Read(dir)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("directories must read as NotFound, got %v", err)
	}
}

func TestRead_DanglingSymlinkIsNotFound(t *testing.T) {
	a := NewAccessor(testLogger())
	dir := t.TempDir()
	link := filepath.Join(dir, "dangling")
	if err := os.Symlink(filepath.Join(dir, "nowhere"), link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	_, err := a.Read(link)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("dangling symlink must read as NotFound, got %v", err)
	}
}

func TestRead_Idempotent(t *testing.T) {
	a := NewAccessor(testLogger())
	path := filepath.Join(t.TempDir(), "stable.txt")
	if err := a.Write(path, "same content every time"); err != nil {
		t.Fatal(err)
	}

	first, err := a.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("repeated reads differ: %q vs %q", first, second)
	}
}

func TestWrite_Overwrite(t *testing.T) {
	a := NewAccessor(testLogger())
	path := filepath.Join(t.TempDir(), "file.txt")

	if err := a.Write(path, "first"); err != nil {
		t.Fatal(err)
	}
	if err := a.Write(path, "second"); err != nil {
		t.Fatal(err)
	}

	got, _ := a.Read(path)
	if got != "second" {
		t.Errorf("overwrite: got %q", got)
	}
}
