package csg

import (
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
)

// Result owns a host-convention mesh produced by a successful boolean.
// A successful Result always holds at least one vertex and one triangle.
type Result struct {
	mesh mesh.Mesh
}

// Mesh returns the result mesh. The slices stay valid until Release or
// Take.
func (r *Result) Mesh() mesh.Mesh {
	if r == nil {
		return mesh.Mesh{}
	}
	return r.mesh
}

// VertexCount returns the number of result vertices, 0 after release.
func (r *Result) VertexCount() int {
	return r.Mesh().VertexCount()
}

// IndexCount returns the number of result indices, 0 after release.
func (r *Result) IndexCount() int {
	return r.Mesh().IndexCount()
}

// Released reports whether the result no longer holds a mesh.
func (r *Result) Released() bool {
	return r == nil || r.mesh.Vertices == nil
}

// Release drops the mesh. Calling it again, or on a nil Result, does
// nothing.
func (r *Result) Release() {
	if r == nil {
		return
	}
	r.mesh = mesh.Mesh{}
}

// Take moves the mesh out of the Result, leaving it released.
func (r *Result) Take() mesh.Mesh {
	if r == nil {
		return mesh.Mesh{}
	}
	m := r.mesh
	r.mesh = mesh.Mesh{}
	return m
}

// marshal copies a kernel result into a Result. km is handed back to the
// kernel exactly once whatever the outcome.
func (d *dispatcher) marshal(km *kernel.Mesh, maxElements int) (*Result, error) {
	defer d.release(km)

	if km.IsEmpty() {
		return nil, errorf("marshal", "%w: kernel returned %d vertices, %d triangles",
			ErrDegenerateResult, km.VertexCount(), km.TriangleCount())
	}
	if len(km.Vertices)%3 != 0 || len(km.Indices)%3 != 0 {
		return nil, errorf("marshal", "%w: ragged result buffers (%d floats, %d indices)",
			ErrKernelFailure, len(km.Vertices), len(km.Indices))
	}
	n := km.VertexCount()
	if maxElements > 0 && (n > maxElements || len(km.Indices) > maxElements) {
		return nil, errorf("marshal", "%w: result exceeds %d elements", ErrAllocation, maxElements)
	}
	if n > maxInt32 || len(km.Indices) > maxInt32 {
		return nil, errorf("marshal", "%w: result too large for 32-bit counts", ErrAllocation)
	}
	for i, idx := range km.Indices {
		if int(idx) >= n {
			return nil, errorf("marshal", "%w: result index %d at position %d outside [0, %d)",
				ErrKernelFailure, idx, i, n)
		}
	}
	return &Result{mesh: FromKernel(km)}, nil
}

const maxInt32 = 1<<31 - 1
