package filesystem

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// GacheFs adapts an afero filesystem to the gache.FileSystem interface
type GacheFs struct {
	Fs afero.Fs
}

// OpenFile opens a file on the wrapped filesystem
func (g GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return g.Fs.OpenFile(name, flag, perm)
}

// MkdirAll creates a directory on the wrapped filesystem
func (g GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return g.Fs.MkdirAll(path, perm)
}
