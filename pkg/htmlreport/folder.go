package htmlreport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OutputFolder is a directory of the report that pages are written into
type OutputFolder struct {
	root string
}

// NewOutputFolder creates root (and its parents) if needed
func NewOutputFolder(root string) (*OutputFolder, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &OutputFolder{root: root}, nil
}

// Root returns the directory backing the folder
func (f *OutputFolder) Root() string {
	return f.root
}

// Subfolder returns a nested folder, creating it if needed
func (f *OutputFolder) Subfolder(name string) (*OutputFolder, error) {
	return NewOutputFolder(filepath.Join(f.root, name))
}

// Path returns the file system path of a file in the folder
func (f *OutputFolder) Path(name string) string {
	return filepath.Join(f.root, name)
}

// Create opens a new file in the folder for writing, truncating any existing one
func (f *OutputFolder) Create(name string) (io.WriteCloser, error) {
	file, err := os.Create(f.Path(name))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return file, nil
}
