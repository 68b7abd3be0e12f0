package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_AllocateDeallocate(t *testing.T) {
	m := New(t.TempDir())

	dir, err := m.Allocate("2025-08-24")

	assert.Nil(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, "2025-08-24", filepath.Base(dir))

	err = m.Deallocate("2025-08-24")

	assert.Nil(t, err)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestManager_Deallocate_Missing(t *testing.T) {
	m := New(t.TempDir())

	// pruning the previous run's directory must not fail when there is
	// nothing to prune
	err := m.Deallocate("2025-08-23")

	assert.Nil(t, err)
}

func TestManager_BundlePath(t *testing.T) {
	m := New("/var/lib/volback")

	assert.Equal(t, "/var/lib/volback/2025-08-24.tar.gz", m.BundlePath("2025-08-24"))
}

func TestManager_Allocate_Error(t *testing.T) {
	root := t.TempDir()

	// a file where the staging directory should go
	err := os.WriteFile(filepath.Join(root, "2025-08-24"), []byte("x"), 0644)
	assert.Nil(t, err)

	m := New(root)

	dir, err := m.Allocate("2025-08-24")

	assert.NotNil(t, err)
	assert.Equal(t, "", dir)
}
