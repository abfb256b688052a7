package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrListDir wraps every directory enumeration failure.
var ErrListDir = errors.New("cannot list directory")

// Entry is one directory entry as seen by the launcher.
type Entry struct {
	Name  string // Raw name as listed.
	Ext   string // Suffix from the final '.', may be empty.
	Path  string // Directory joined with Name.
	Size  int64
	IsDir bool
}

// Discover lists dir (non-recursive) and returns one Entry per listed name.
// The order is the one os.ReadDir yields; callers must not rely on it.
func Discover(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrListDir, dir, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		_, ext := SplitExt(de.Name())
		e := Entry{
			Name:  de.Name(),
			Ext:   ext,
			Path:  filepath.Join(dir, de.Name()),
			IsDir: de.IsDir(),
		}
		// The entry may vanish between listing and stat; size is informational.
		if fi, err := de.Info(); err == nil && !de.IsDir() {
			e.Size = fi.Size()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SplitExt splits name at its final '.' into base and extension. Leading
// dots do not start an extension: ".pgm" has none, "a." has ".".
func SplitExt(name string) (base, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}
