package meshio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/meshbool/pkg/mesh"
)

// Format identifies a mesh file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatOBJ
	FormatSTL
)

// FormatOf picks a format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ
	case ".stl":
		return FormatSTL
	}
	return FormatUnknown
}

// ReadFile reads a mesh, choosing the format from the extension.
func ReadFile(path string) (mesh.Mesh, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return mesh.Mesh{}, fmt.Errorf("meshio: %s: unknown mesh format", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return mesh.Mesh{}, err
	}
	defer f.Close()

	var m mesh.Mesh
	switch format {
	case FormatOBJ:
		m, err = ReadOBJ(f)
	case FormatSTL:
		m, err = ReadSTL(f)
	}
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("meshio: %s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes a mesh, choosing the format from the extension. STL
// files are written in binary.
func WriteFile(path string, m mesh.Mesh) (err error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return fmt.Errorf("meshio: %s: unknown mesh format", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch format {
	case FormatOBJ:
		err = WriteOBJ(f, m)
	case FormatSTL:
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		err = WriteSTL(f, m, name, false)
	}
	if err != nil {
		return fmt.Errorf("meshio: %s: %w", path, err)
	}
	return nil
}
