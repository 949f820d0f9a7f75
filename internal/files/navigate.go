package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
)

// Parent returns the directory above p. The root is its own parent.
func Parent(p string) string {
	p = filepath.Clean(p)
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return parent
}

// Child joins a single entry name onto dir.
func Child(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
		return "", lsmerrors.New(lsmerrors.ErrCodeNotFound,
			fmt.Sprintf("invalid entry name %q", name), "")
	}
	return filepath.Join(dir, name), nil
}

// Home returns the user's home directory, or "/" when it cannot be determined.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "/"
	}
	return home
}

// Resolve makes p absolute and cleans it. An empty p resolves to Home.
func Resolve(p string) string {
	if p == "" {
		return Home()
	}
	if strings.HasPrefix(p, "~") && (len(p) == 1 || p[1] == filepath.Separator) {
		p = filepath.Join(Home(), p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
