// Package kernel defines the boolean-mesh kernel interface.
// Implementations (sdfx, cork) compute Union, Intersection and Difference
// of two solid triangle meshes behind this interface. The kernel
// abstraction allows swapping backends without changing the boundary layer.
package kernel

import "errors"

// ErrNotBuilt reports that a native kernel was not linked into the current
// binary.
var ErrNotBuilt = errors.New("kernel: native kernel not built")

// Kernel is the boolean-mesh kernel interface. Inputs are borrowed for the
// duration of a call and never retained. A returned mesh belongs to the
// caller until it is handed back through Release.
type Kernel interface {
	// Boolean operations
	Union(a, b *Mesh) (*Mesh, error)
	Intersection(a, b *Mesh) (*Mesh, error)
	Difference(a, b *Mesh) (*Mesh, error)

	// IsSolid reports whether m is a closed, consistently oriented
	// 2-manifold. Boolean operations are only defined for solids.
	IsSolid(m *Mesh) bool

	// Release frees a mesh previously returned by this kernel. It must
	// tolerate nil and already released meshes.
	Release(m *Mesh)
}

// Reentrant is implemented by kernels that know whether concurrent calls
// into them are safe. Kernels that do not implement it are assumed
// reentrant.
type Reentrant interface {
	Reentrant() bool
}
