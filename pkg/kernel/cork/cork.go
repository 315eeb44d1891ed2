//go:build cork && cgo

// Package cork binds the Cork boolean library
// (https://github.com/gilbo/cork) as a kernel.Kernel.
//
// This package requires libcork and GMP to be installed.
// Build with: go build -tags=cork
package cork

/*
#cgo CXXFLAGS: -std=c++11 -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lcork -lgmpxx -lgmp -lstdc++

#include <stdlib.h>
#include <string.h>
#include "cork_shim.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/chazu/meshbool/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel    = (*CorkKernel)(nil)
	_ kernel.Reentrant = (*CorkKernel)(nil)
)

var errOutOfMemory = errors.New("cork: out of C memory")

// CorkKernel implements kernel.Kernel using libcork.
type CorkKernel struct{}

// New creates a new CorkKernel.
func New() (kernel.Kernel, error) {
	return &CorkKernel{}, nil
}

// Reentrant reports false. Cork keeps global state (its random and
// arithmetic contexts) and must not run two booleans at once.
func (k *CorkKernel) Reentrant() bool {
	return false
}

// Union returns the boolean union of two solids.
func (k *CorkKernel) Union(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	return k.boolean(C.MB_CORK_UNION, a, b)
}

// Intersection returns the boolean intersection of two solids.
func (k *CorkKernel) Intersection(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	return k.boolean(C.MB_CORK_INTERSECTION, a, b)
}

// Difference returns the boolean difference (a minus b).
func (k *CorkKernel) Difference(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	return k.boolean(C.MB_CORK_DIFFERENCE, a, b)
}

// IsSolid asks Cork whether m is a closed, non-self-intersecting solid.
func (k *CorkKernel) IsSolid(m *kernel.Mesh) bool {
	if m.IsEmpty() {
		return false
	}
	in, err := toCork(m)
	if err != nil {
		return false
	}
	defer freeInput(in)
	return C.mb_cork_is_solid(in) == 1
}

// Release frees a result produced by this kernel. Safe to call twice.
func (k *CorkKernel) Release(m *kernel.Mesh) {
	m.Free()
}

func (k *CorkKernel) boolean(op C.int, a, b *kernel.Mesh) (*kernel.Mesh, error) {
	in0, err := toCork(a)
	if err != nil {
		return nil, err
	}
	defer freeInput(in0)
	in1, err := toCork(b)
	if err != nil {
		return nil, err
	}
	defer freeInput(in1)

	out := (*C.CorkTriMesh)(C.calloc(1, C.size_t(unsafe.Sizeof(C.CorkTriMesh{}))))
	if out == nil {
		return nil, errOutOfMemory
	}
	if rc := C.mb_cork_boolean(op, in0, in1, out); rc != C.MB_CORK_OK {
		C.free(unsafe.Pointer(out))
		return nil, fmt.Errorf("cork: boolean failed (code %d)", int(rc))
	}
	return wrapResult(out), nil
}

// wrapResult exposes Cork's result buffers without copying. The returned
// mesh owns out: freeing it releases the Cork arrays and the struct itself.
func wrapResult(out *C.CorkTriMesh) *kernel.Mesh {
	release := func() {
		C.mb_cork_free(out)
		C.free(unsafe.Pointer(out))
	}
	if out.n_triangles == 0 || out.n_vertices == 0 || out.triangles == nil || out.vertices == nil {
		return kernel.Foreign(nil, nil, release)
	}
	vertices := unsafe.Slice((*float32)(unsafe.Pointer(out.vertices)), int(out.n_vertices)*3)
	indices := unsafe.Slice((*uint32)(unsafe.Pointer(out.triangles)), int(out.n_triangles)*3)
	return kernel.Foreign(vertices, indices, release)
}

// toCork copies m into C memory. Cork may run for a long time and
// holds pointers for the whole call, so Go memory is never passed in.
func toCork(m *kernel.Mesh) (C.CorkTriMesh, error) {
	var in C.CorkTriMesh
	if m.IsEmpty() {
		return in, errors.New("cork: empty mesh")
	}

	vbytes := C.size_t(len(m.Vertices)) * C.size_t(unsafe.Sizeof(C.float(0)))
	vertices := (*C.float)(C.malloc(vbytes))
	if vertices == nil {
		return in, errOutOfMemory
	}
	ibytes := C.size_t(len(m.Indices)) * C.size_t(unsafe.Sizeof(C.uint(0)))
	triangles := (*C.uint)(C.malloc(ibytes))
	if triangles == nil {
		C.free(unsafe.Pointer(vertices))
		return in, errOutOfMemory
	}
	C.memcpy(unsafe.Pointer(vertices), unsafe.Pointer(&m.Vertices[0]), vbytes)
	C.memcpy(unsafe.Pointer(triangles), unsafe.Pointer(&m.Indices[0]), ibytes)

	in.n_vertices = C.uint(m.VertexCount())
	in.n_triangles = C.uint(m.TriangleCount())
	in.vertices = vertices
	in.triangles = triangles
	return in, nil
}

func freeInput(in C.CorkTriMesh) {
	if in.vertices != nil {
		C.free(unsafe.Pointer(in.vertices))
	}
	if in.triangles != nil {
		C.free(unsafe.Pointer(in.triangles))
	}
}
