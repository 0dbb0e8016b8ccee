// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Listing is the content of one plugin directory.
type Listing struct {
	// Files are the declaration sources, sorted by file name.
	Files []string
	// Dirs are the sub-directories, sorted by name.
	Dirs []string
}

// ListDir reads a single directory and returns files ending with the
// extension and its sub-directories, both as full paths in lexicographic
// order. Hidden entries (leading dot) are skipped.
func ListDir(dir string, extension string) (*Listing, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	out := &Listing{}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case e.IsDir():
			out.Dirs = append(out.Dirs, filepath.Join(dir, name))
		case strings.HasSuffix(name, extension):
			out.Files = append(out.Files, filepath.Join(dir, name))
		}
	}
	// os.ReadDir already sorts by name; keep the order explicit.
	sort.Strings(out.Files)
	sort.Strings(out.Dirs)
	return out, nil
}

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// StemName returns the file name without directory and extension.
func StemName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
