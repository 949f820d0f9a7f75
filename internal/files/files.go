// Package files lists directories and computes navigation targets.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
)

// DirSize is the Size reported for directories.
const DirSize int64 = -1

type Entry struct {
	Name    string      `json:"name" yaml:"name"`
	IsDir   bool        `json:"is_dir" yaml:"is_dir"`
	Size    int64       `json:"size" yaml:"size"`
	ModTime time.Time   `json:"modified" yaml:"modified"`
	Perm    string      `json:"permissions" yaml:"permissions"` // octal, e.g. "755"
	Mode    fs.FileMode `json:"-" yaml:"-"`
}

// Replaced in tests to simulate entries that vanish or cannot be read.
var (
	stat  = os.Stat
	lstat = os.Lstat
)

// List returns the entries of the directory at path, directories first and
// then by name ignoring case. Entries that cannot be stat'ed are skipped.
// Symlinks are followed; a dangling link is listed as itself.
func List(path string) ([]Entry, error) {
	fi, err := stat(path)
	if err != nil {
		return nil, classify(path, err)
	}
	if !fi.IsDir() {
		return nil, lsmerrors.New(lsmerrors.ErrCodeNotFound,
			fmt.Sprintf("%s: not a directory", path), "")
	}

	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, classify(path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		p := filepath.Join(path, d.Name())
		info, err := stat(p)
		if err != nil {
			// broken link
			if info, err = lstat(p); err != nil {
				continue
			}
		}
		entries = append(entries, newEntry(d.Name(), info))
	}

	Sort(entries)
	return entries, nil
}

func newEntry(name string, info fs.FileInfo) Entry {
	e := Entry{
		Name:    name,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Perm:    fmt.Sprintf("%03o", info.Mode().Perm()),
		Mode:    info.Mode(),
	}
	if e.IsDir {
		e.Size = DirSize
	}
	return e
}

// Sort orders entries directories first, then case-insensitively by name.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

// Truncate keeps the first limit entries. limit <= 0 keeps all.
func Truncate(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return lsmerrors.Wrap(err, lsmerrors.ErrCodeNotFound, fmt.Sprintf("directory %s does not exist", path))
	case errors.Is(err, fs.ErrPermission):
		return lsmerrors.WrapWithSuggestion(err, lsmerrors.ErrCodePermission,
			fmt.Sprintf("permission denied reading %s", path),
			"check the directory permissions")
	}
	return lsmerrors.Wrap(err, lsmerrors.ErrCodeUnavailable, fmt.Sprintf("cannot read directory %s", path))
}
