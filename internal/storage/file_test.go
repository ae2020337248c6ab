package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if _, ok, err := f.Get("streaming_site_user"); ok || err != nil {
		t.Fatalf("Get() on empty store = %v, %v, want miss", ok, err)
	}
	if err := f.Set("streaming_site_user", "alice"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A second instance over the same directory sees the write.
	g, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	v, ok, err := g.Get("streaming_site_user")
	if err != nil || !ok || v != "alice" {
		t.Fatalf("Get() = %q, %v, %v, want alice", v, ok, err)
	}

	if err := g.Remove("streaming_site_user"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := f.Get("streaming_site_user"); ok {
		t.Fatal("key still present after Remove")
	}
}

func TestFile_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	f, _ := NewFile(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := f.Set(k, k); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory contents = %v, want only %s", names, FileName)
	}
}

func TestFile_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	f, _ := NewFile(dir)
	if _, _, err := f.Get("a"); err == nil {
		t.Fatal("Get() on corrupt file should error")
	}
}
