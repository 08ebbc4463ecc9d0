package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader turns an input stream into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, name string, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Load selects a loader by filename and parses r. Unknown extensions are read as CSV.
func Load(r io.Reader, filename string, opt Options) (*Dataset, error) {
	name := filepath.Base(filename)
	for _, l := range registry {
		if l.CanLoad(name) {
			return l.Load(r, name, opt)
		}
	}
	return ReadCSV(r, name, opt)
}

// LoadFile opens path and parses it with the matching loader.
func LoadFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f, path, opt)
}

// Supported reports whether a registered loader accepts filename.
func Supported(filename string) bool {
	name := filepath.Base(filename)
	for _, l := range registry {
		if l.CanLoad(name) {
			return true
		}
	}
	return false
}

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvLoader) Load(r io.Reader, name string, opt Options) (*Dataset, error) {
	return ReadCSV(r, name, opt)
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxLoader) Load(r io.Reader, name string, opt Options) (*Dataset, error) {
	return ReadXLSX(r, name, opt)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
