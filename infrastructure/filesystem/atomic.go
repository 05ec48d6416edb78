package filesystem

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteAtomic calls write with a temporary file next to path and renames it
// into place only when write succeeds. A failed write leaves no partial file.
func WriteAtomic(fs afero.Fs, path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			fs.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
