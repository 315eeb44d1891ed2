// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Input meshes are turned into signed distance fields, combined with the
// sdfx boolean operators and re-tessellated with marching cubes. The result
// approximates the exact boolean to within one marching-cubes cell.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel    = (*SdfxKernel)(nil)
	_ kernel.Reentrant = (*SdfxKernel)(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest axis of the result.
const DefaultMeshCells = 64

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel at DefaultMeshCells resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel tessellating results with the given number
// of marching cubes cells. Non-positive values select DefaultMeshCells.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Cells returns the marching cubes resolution.
func (k *SdfxKernel) Cells() int {
	return k.cells
}

// Reentrant reports true: the kernel holds no mutable state.
func (k *SdfxKernel) Reentrant() bool {
	return true
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	sa, sb, err := importPair(a, b)
	if err != nil {
		return nil, err
	}
	return k.tessellate(sdf.Union3D(sa, sb))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	sa, sb, err := importPair(a, b)
	if err != nil {
		return nil, err
	}
	return k.tessellate(sdf.Difference3D(sa, sb))
}

// Intersection returns the intersection of two solids. Solids whose
// bounding boxes do not overlap yield an empty mesh.
func (k *SdfxKernel) Intersection(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	sa, sb, err := importPair(a, b)
	if err != nil {
		return nil, err
	}
	if !overlaps(sa.bb, sb.bb) {
		return &kernel.Mesh{}, nil
	}
	return k.tessellate(sdf.Intersect3D(sa, sb))
}

// IsSolid reports whether m is a closed, consistently oriented manifold.
func (k *SdfxKernel) IsSolid(m *kernel.Mesh) bool {
	return kernel.IsClosedManifold(m)
}

// Release drops a result mesh. Results live on the Go heap, so this only
// clears the buffers.
func (k *SdfxKernel) Release(m *kernel.Mesh) {
	m.Free()
}

func importPair(a, b *kernel.Mesh) (*meshSDF, *meshSDF, error) {
	sa, err := newMeshSDF(a)
	if err != nil {
		return nil, nil, fmt.Errorf("sdfx: mesh A: %w", err)
	}
	sb, err := newMeshSDF(b)
	if err != nil {
		return nil, nil, fmt.Errorf("sdfx: mesh B: %w", err)
	}
	return sa, sb, nil
}

// tessellate converts an SDF to an indexed kernel mesh using marching cubes.
func (k *SdfxKernel) tessellate(s sdf.SDF3) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	size := s.BoundingBox().Size()
	diag := math.Sqrt(size.X*size.X + size.Y*size.Y + size.Z*size.Z)
	w := newWelder(diag*1e-7, len(triangles))
	for _, tri := range triangles {
		var corners [3]v3.Vec
		for j := 0; j < 3; j++ {
			corners[j] = tri[j]
		}
		w.add(corners)
	}

	m := w.mesh()
	if !m.IsEmpty() && kernel.SignedVolume(m) < 0 {
		// Keep kernel convention regardless of how the renderer winds.
		for i := 0; i < len(m.Indices); i += 3 {
			m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
		}
	}
	return m, nil
}

func overlaps(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}
