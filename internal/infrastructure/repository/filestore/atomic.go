package filestore

import (
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
)

// writeFileAtomic replaces path with data so readers see either the old or
// the new content, never a partial file.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return crerr.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "write temp file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "sync temp file")
	}
	if err = tmp.Close(); err != nil {
		return crerr.Wrap(err, "close temp file")
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return crerr.Wrap(err, "chmod temp file")
	}
	if err = os.Rename(tmpName, path); err != nil {
		return crerr.Wrapf(err, "rename temp file to %s", path)
	}
	return nil
}
