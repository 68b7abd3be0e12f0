package staging

import (
	"os"
	"path/filepath"
)

// Manager allocates and removes per-run staging directories under a fixed
// backup root. Directories and bundle files are keyed by run date.
type Manager struct {
	root string
}

func New(root string) *Manager {
	return &Manager{
		root: root,
	}
}

func (m *Manager) Allocate(date string) (string, error) {
	dir := filepath.Join(m.root, date)

	err := os.MkdirAll(dir, os.ModeDir|os.ModePerm)
	if err != nil {
		return "", err
	}
	return dir, nil
}

// Deallocate removes the staging directory for the given date. A missing
// directory is not an error.
func (m *Manager) Deallocate(date string) error {
	return os.RemoveAll(filepath.Join(m.root, date))
}

// BundlePath is where the dated bundle archive lives, a sibling of the
// staging directory.
func (m *Manager) BundlePath(date string) string {
	return filepath.Join(m.root, date+".tar.gz")
}
