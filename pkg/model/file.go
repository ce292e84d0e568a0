package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnsupportedFormatError reports a model file whose extension has no
// registered decoder. MATLAB workspaces in particular have no native
// decoder here and are stored as opaque archives instead.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported model format %q for %s", e.Extension, e.Path)
}

// ReadFile loads a model from disk, choosing the decoder by file
// extension. JSON models use the .json extension, SBML models .xml or
// .sbml.
func ReadFile(path string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".xml", ".sbml":
	default:
		return nil, UnsupportedFormatError{Path: path, Extension: ext}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if ext == ".json" {
		return ReadJSON(f)
	}
	return ReadSBML(f)
}

// WriteFile stores a model as JSON at path.
func WriteFile(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
