package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func readAll(t *testing.T, fsys FileSystem, name string) string {
	t.Helper()
	f, err := fsys.Open(name)
	if err != nil {
		t.Fatalf("Open(%q) failed: %v", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read %q failed: %v", name, err)
	}
	return string(data)
}

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_CreateAndOpen(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "cloud.xyz")

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	w, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("1 2 3\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got := readAll(t, fs, path); got != "1 2 3\n" {
		t.Errorf("content = %q, want %q", got, "1 2 3\n")
	}
	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 6 {
		t.Errorf("size = %d, want 6", info.Size())
	}
}

func TestOSFileSystem_ListFiles(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()

	for _, name := range []string{"b.pts", "a.xyz", "a.xyz.meta"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	names, err := fs.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	want := []string{"a.xyz", "a.xyz.meta", "b.pts"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListFiles = %v, want %v", names, want)
	}

	if _, err := fs.ListFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error listing a missing directory")
	}
}

func TestMemoryFileSystem_WriteAndOpen(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("/data/scan.xyz", []byte("1 2 3"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if got := readAll(t, mfs, "/data/scan.xyz"); got != "1 2 3" {
		t.Errorf("content = %q", got)
	}
	if !mfs.Exists("/data") {
		t.Error("expected parent directory to exist")
	}
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/cloud.asc")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := readAll(t, mfs, "/out/cloud.asc"); got != "" {
		t.Errorf("content before close = %q, want empty", got)
	}
	if _, err := io.WriteString(w, "# header\n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := readAll(t, mfs, "/out/cloud.asc"); got != "# header\n" {
		t.Errorf("content after close = %q", got)
	}
}

func TestMemoryFileSystem_DataIsolation(t *testing.T) {
	mfs := NewMemoryFileSystem()
	data := []byte("1 2 3")
	if err := mfs.WriteFile("/a.xyz", data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data[0] = '9'
	if got := readAll(t, mfs, "/a.xyz"); got != "1 2 3" {
		t.Errorf("stored data changed with caller's slice: %q", got)
	}
}

func TestMemoryFileSystem_OpenNonExistent(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if _, err := mfs.Open("/missing.xyz"); !os.IsNotExist(err) {
		t.Errorf("Open error = %v, want not-exist", err)
	}
	if _, err := mfs.Stat("/missing.xyz"); !os.IsNotExist(err) {
		t.Errorf("Stat error = %v, want not-exist", err)
	}
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/clouds/batch", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := mfs.WriteFile("/clouds/batch/a.pts", []byte("abcd"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	dirInfo, err := mfs.Stat("/clouds")
	if err != nil {
		t.Fatalf("Stat dir failed: %v", err)
	}
	if !dirInfo.IsDir() || !dirInfo.Mode().IsDir() {
		t.Error("expected /clouds to be a directory")
	}

	fileInfo, err := mfs.Stat("/clouds/batch/a.pts")
	if err != nil {
		t.Fatalf("Stat file failed: %v", err)
	}
	if fileInfo.IsDir() || fileInfo.Size() != 4 || fileInfo.Name() != "a.pts" {
		t.Errorf("unexpected file info: dir=%v size=%d name=%s", fileInfo.IsDir(), fileInfo.Size(), fileInfo.Name())
	}
	if !fileInfo.ModTime().IsZero() || fileInfo.Sys() != nil {
		t.Error("expected zero mod time and nil Sys")
	}
}

func TestMemoryFileSystem_ListFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()
	for _, name := range []string{"/batch/b.xyz", "/batch/a.xyz", "/batch/deeper/c.xyz", "/other/d.xyz"} {
		if err := mfs.WriteFile(name, nil, 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	names, err := mfs.ListFiles("/batch/")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	want := []string{"a.xyz", "b.xyz"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListFiles = %v, want %v", names, want)
	}

	if _, err := mfs.ListFiles("/nowhere"); err == nil {
		t.Error("expected error for unknown directory")
	}

	if err := mfs.MkdirAll("/empty", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	names, err = mfs.ListFiles("/empty")
	if err != nil || len(names) != 0 {
		t.Errorf("ListFiles(/empty) = %v, %v; want empty, nil", names, err)
	}
}

func TestMemFileReader_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.WriteFile("/a/b.xyz", []byte("12345"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	f, err := mfs.Open("/a/b.xyz")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "b.xyz" || info.Size() != 5 {
		t.Errorf("Stat = %s/%d, want b.xyz/5", info.Name(), info.Size())
	}
}
