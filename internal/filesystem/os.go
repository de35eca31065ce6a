package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/models"
)

// Ensure OS implements interfaces.FileSystem
var _ interfaces.FileSystem = (*OS)(nil)

// OS reads templates from the local disk
type OS struct{}

// NewOS creates a new OS filesystem
func NewOS() *OS {
	return &OS{}
}

// ReadFile returns the content of the file at path
func (o *OS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRead, err)
	}
	return data, nil
}

// ListFilesRecursive walks dir and returns the sorted, '/'-separated relative
// paths of regular files whose extension is in extensions (case-insensitive)
func (o *OS) ListFilesRecursive(dir string, extensions []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRead, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", models.ErrRead, dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !hasExtension(path, extensions) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", models.ErrRead, dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range extensions {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}
