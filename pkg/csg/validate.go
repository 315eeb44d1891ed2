package csg

import "github.com/chazu/meshbool/pkg/mesh"

// Validate decides whether a boolean between a and b may proceed. Checks
// run in a fixed order and stop at the first failure:
//
//  1. both meshes have vertex and index buffers
//  2. all counts are positive
//  3. index counts are multiples of 3
//  4. every index lies in [0, vertexCount)
//  5. every coordinate is finite
//  6. op is a defined operation
//
// Every failure wraps ErrMalformedInput. Validate does not allocate.
func Validate(a, b mesh.Mesh, op Operation) error {
	return validate(a, b, op, 0)
}

// validate runs Validate and then refuses meshes larger than maxElements
// vertices or indices. maxElements <= 0 disables the limit.
func validate(a, b mesh.Mesh, op Operation, maxElements int) error {
	pair := [2]struct {
		name string
		m    mesh.Mesh
	}{{"A", a}, {"B", b}}

	for _, p := range pair {
		if p.m.Vertices == nil || p.m.Indices == nil {
			return errorf("validate", "%w: mesh %s: missing buffer", ErrMalformedInput, p.name)
		}
	}
	for _, p := range pair {
		if p.m.VertexCount() == 0 || p.m.IndexCount() == 0 {
			return errorf("validate", "%w: mesh %s: %d vertices, %d indices",
				ErrMalformedInput, p.name, p.m.VertexCount(), p.m.IndexCount())
		}
	}
	for _, p := range pair {
		if p.m.IndexCount()%3 != 0 {
			return errorf("validate", "%w: mesh %s: index count %d is not a multiple of 3",
				ErrMalformedInput, p.name, p.m.IndexCount())
		}
	}
	for _, p := range pair {
		n := p.m.VertexCount()
		for i, idx := range p.m.Indices {
			if idx < 0 || int(idx) >= n {
				return errorf("validate", "%w: mesh %s: index %d at position %d outside [0, %d)",
					ErrMalformedInput, p.name, idx, i, n)
			}
		}
	}
	for _, p := range pair {
		for i, v := range p.m.Vertices {
			if !v.IsFinite() {
				return errorf("validate", "%w: mesh %s: vertex %d is not finite",
					ErrMalformedInput, p.name, i)
			}
		}
	}
	if !op.Valid() {
		return errorf("validate", "%w: unknown operation %d", ErrMalformedInput, int32(op))
	}

	if maxElements > 0 {
		for _, p := range pair {
			if p.m.VertexCount() > maxElements || p.m.IndexCount() > maxElements {
				return errorf("validate", "%w: mesh %s exceeds %d elements",
					ErrAllocation, p.name, maxElements)
			}
		}
	}
	return nil
}
