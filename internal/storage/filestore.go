package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions lists the file extensions treated as source images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// FileStore persists images under a single root directory. All paths
// handed in and out are relative to that root with forward slashes.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *FileStore) Root() string {
	return s.root
}

// Abs resolves rel against the root, rejecting paths that escape it.
// The prefix check includes the separator so a sibling directory whose
// name merely extends the root's ("photos" vs "photos-old") is not
// mistaken for a child.
func (s *FileStore) Abs(rel string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path %q", rel)
	}
	return abs, nil
}

// Exists reports whether rel exists under the root.
func (s *FileStore) Exists(rel string) bool {
	abs, err := s.Abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// IsDir reports whether rel is an existing directory.
func (s *FileStore) IsDir(rel string) bool {
	abs, err := s.Abs(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

// Write stores data at rel, creating parent directories as needed,
// and returns the absolute path written.
func (s *FileStore) Write(rel string, data []byte) (string, error) {
	abs, err := s.Abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create folder for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return abs, nil
}

// ScanImages returns the relative paths of all image files under dir,
// sorted. With recursive set it descends into subdirectories (camera
// folders nest one level under the session folder).
func (s *FileStore) ScanImages(dir string, recursive bool) ([]string, error) {
	absDir, err := s.Abs(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != absDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// IsImagePath reports whether name carries a recognized image extension.
func IsImagePath(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}
