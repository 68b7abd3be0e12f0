package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type Manager struct {
}

func New() *Manager {
	return &Manager{}
}

// Bundle tars and compresses the entire contents of dir into outfile and
// returns the size of the produced archive. A partial outfile is removed on
// failure.
func (m *Manager) Bundle(dir, outfile string) (int64, error) {
	f, err := os.Create(outfile)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	tw := tar.NewWriter(gw)
	defer tw.Close()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if path == dir {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return errors.Wrapf(err, "unable to create tar header for %s", path)
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		header.Name = relPath

		if info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			header.Linkname = link
		}

		if err := tw.WriteHeader(header); err != nil {
			return errors.Wrap(err, "unable to write tar header")
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(tw, in)
		return err
	})
	if err != nil {
		os.Remove(outfile)
		return 0, err
	}

	// flush before reading the size
	tw.Close()
	gw.Close()

	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}

	return stat.Size(), nil
}
