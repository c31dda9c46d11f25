package storage

import (
	"path/filepath"
	"reflect"
	"testing"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestWriteAndExists(t *testing.T) {
	store := newStore(t)

	if store.Exists("sess/a.jpg") {
		t.Error("Exists before write")
	}
	abs, err := store.Write("sess/a.jpg", []byte("data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if abs == "" {
		t.Error("Write returned empty path")
	}
	if !store.Exists("sess/a.jpg") {
		t.Error("Exists after write returned false")
	}
	if !store.IsDir("sess") || store.IsDir("sess/a.jpg") {
		t.Error("IsDir misclassified")
	}
}

func TestAbsRejectsTraversal(t *testing.T) {
	store := newStore(t)
	for _, rel := range []string{"../escape.jpg", "sess/../../escape.jpg"} {
		if _, err := store.Abs(rel); err == nil {
			t.Errorf("Abs(%q) accepted a path outside the root", rel)
		}
	}
}

// A sibling directory whose name starts with the root's must not pass
// the containment check.
func TestAbsRejectsSiblingPrefix(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "photos"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, rel := range []string{"../photos-old/a.jpg", "../photos2/a.jpg"} {
		if _, err := store.Abs(rel); err == nil {
			t.Errorf("Abs(%q) accepted a sibling of the root", rel)
		}
	}
	// the root itself and real children still resolve
	if _, err := store.Abs(""); err != nil {
		t.Errorf("Abs of the root rejected: %v", err)
	}
	if _, err := store.Abs("sess/a.jpg"); err != nil {
		t.Errorf("Abs of a child rejected: %v", err)
	}
}

func TestScanImages(t *testing.T) {
	store := newStore(t)
	for _, rel := range []string{
		"sess/b.jpg",
		"sess/a.jpg",
		"sess/cam1/c.png",
		"sess/cam1/d.webp",
		"sess/notes.txt",
	} {
		if _, err := store.Write(rel, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ScanImages("sess", true)
	if err != nil {
		t.Fatalf("ScanImages recursive: %v", err)
	}
	want := []string{"sess/a.jpg", "sess/b.jpg", "sess/cam1/c.png", "sess/cam1/d.webp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recursive scan = %v, want %v", got, want)
	}

	got, err = store.ScanImages("sess", false)
	if err != nil {
		t.Fatalf("ScanImages flat: %v", err)
	}
	want = []string{"sess/a.jpg", "sess/b.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flat scan = %v, want %v", got, want)
	}
}

func TestIsImagePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.png", true},
		{"a.webp", true},
		{"a.txt", false},
		{"a.mp4", false},
	}
	for _, tt := range tests {
		if got := IsImagePath(tt.name); got != tt.want {
			t.Errorf("IsImagePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
