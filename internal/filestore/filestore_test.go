package filestore

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, slog.Default())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, dir
}

func TestImportStoresFile(t *testing.T) {
	s, dir := setupStore(t)

	res, err := s.Import(strings.NewReader("hello"), "pic.png", 5)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if !strings.HasPrefix(res.StoredName, "attachment_") {
		t.Errorf("stored name %q missing attachment_ prefix", res.StoredName)
	}
	if !strings.HasSuffix(res.StoredName, "_pic.png") {
		t.Errorf("stored name %q missing original name suffix", res.StoredName)
	}
	if res.Written != 5 {
		t.Errorf("written = %d, want 5", res.Written)
	}
	if res.DeclaredSize != 5 {
		t.Errorf("declared = %d, want 5", res.DeclaredSize)
	}

	data, err := os.ReadFile(filepath.Join(dir, res.StoredName))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want hello", data)
	}
}

// The recorded size is whatever the source declared, even when the copy
// moved a different number of bytes.
func TestImportKeepsDeclaredSize(t *testing.T) {
	s, _ := setupStore(t)

	res, err := s.Import(strings.NewReader("abc"), "f.bin", 9999)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.DeclaredSize != 9999 {
		t.Errorf("declared = %d, want 9999", res.DeclaredSize)
	}
	if res.Written != 3 {
		t.Errorf("written = %d, want 3", res.Written)
	}
}

func TestImportFlattensPathyNames(t *testing.T) {
	s, dir := setupStore(t)

	res, err := s.Import(strings.NewReader("x"), "../../escape.txt", 1)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if strings.Contains(res.StoredName, "/") {
		t.Errorf("stored name %q contains a path separator", res.StoredName)
	}
	if _, err := os.Stat(filepath.Join(dir, res.StoredName)); err != nil {
		t.Errorf("stored file not inside the private dir: %v", err)
	}
}

func TestRemove(t *testing.T) {
	s, dir := setupStore(t)

	res, err := s.Import(strings.NewReader("x"), "gone.txt", 1)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := s.Remove(res.StoredName); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, res.StoredName)); !os.IsNotExist(err) {
		t.Errorf("file still present after remove")
	}
}

func TestRemoveAbsentIsNotAnError(t *testing.T) {
	s, _ := setupStore(t)

	if err := s.Remove("attachment_0_never_existed.png"); err != nil {
		t.Errorf("remove absent: %v", err)
	}
}

func TestPathStaysInsideDir(t *testing.T) {
	s, dir := setupStore(t)

	p := s.Path("../../etc/passwd")
	if filepath.Dir(p) != dir {
		t.Errorf("path %q escaped the private dir %q", p, dir)
	}
}
