package filesystem

import (
	"github.com/spf13/afero"
)

// Checker reports whether files exist on an afero filesystem
type Checker struct {
	fs afero.Fs
}

// NewChecker creates a checker over fs; nil means the OS filesystem
func NewChecker(fs afero.Fs) *Checker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Checker{fs: fs}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	ok, err := afero.Exists(c.fs, path)
	return err == nil && ok
}
