// Package capi is the raw-pointer side of the C ABI: it turns host buffers
// into meshes, runs the boolean pipeline and hands results back in buffers
// from an Allocator. It never lets a pointer it did not allocate reach
// Allocator.Free.
package capi

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/chazu/meshbool/pkg/csg"
	"github.com/chazu/meshbool/pkg/logging"
	"github.com/chazu/meshbool/pkg/mesh"
)

const (
	vertexSize = unsafe.Sizeof(mesh.Vector3{})
	indexSize  = unsafe.Sizeof(int32(0))
)

// Request carries the raw arguments of one boolean call.
type Request struct {
	VerticesA    unsafe.Pointer
	VertexCountA int32
	IndicesA     unsafe.Pointer
	IndexCountA  int32
	VerticesB    unsafe.Pointer
	VertexCountB int32
	IndicesB     unsafe.Pointer
	IndexCountB  int32
	Operation    int32
}

// Output is a result in host-owned buffers. It is all zero on failure.
type Output struct {
	Vertices    unsafe.Pointer
	VertexCount int32
	Indices     unsafe.Pointer
	IndexCount  int32
}

// Boundary runs requests against a Pipeline and tracks every buffer it
// hands out until it comes back through Free.
type Boundary struct {
	pipeline *csg.Pipeline
	alloc    Allocator
	log      logging.Logger

	mu   sync.Mutex
	live map[unsafe.Pointer]struct{}
}

// New returns a Boundary. A nil logger discards records.
func New(p *csg.Pipeline, alloc Allocator, log logging.Logger) *Boundary {
	if log == nil {
		log = logging.Discard()
	}
	return &Boundary{
		pipeline: p,
		alloc:    alloc,
		log:      log,
		live:     make(map[unsafe.Pointer]struct{}),
	}
}

// Perform runs req and returns the output with its status code. The output
// is non-zero only when the status is csg.StatusOK.
func (b *Boundary) Perform(ctx context.Context, req Request) (Output, int) {
	ma, err := view("A", req.VerticesA, req.VertexCountA, req.IndicesA, req.IndexCountA)
	if err != nil {
		b.log.Debug(ctx, "request rejected", "err", err)
		return Output{}, csg.Status(err)
	}
	mb, err := view("B", req.VerticesB, req.VertexCountB, req.IndicesB, req.IndexCountB)
	if err != nil {
		b.log.Debug(ctx, "request rejected", "err", err)
		return Output{}, csg.Status(err)
	}

	res, err := b.pipeline.Perform(ctx, ma, mb, csg.Operation(req.Operation))
	if err != nil {
		return Output{}, csg.Status(err)
	}
	defer res.Release()

	out, err := b.export(res.Mesh())
	if err != nil {
		b.log.Warn(ctx, "export failed", "err", err)
		return Output{}, csg.Status(err)
	}
	return out, csg.StatusOK
}

// view builds slices over host memory. Nil pointers become nil slices so
// that validation reports them; negative counts are refused here.
func view(name string, vp unsafe.Pointer, vn int32, ip unsafe.Pointer, in int32) (mesh.Mesh, error) {
	if vn < 0 || in < 0 {
		return mesh.Mesh{}, fmt.Errorf("%w: mesh %s: negative count (%d vertices, %d indices)",
			csg.ErrMalformedInput, name, vn, in)
	}
	var m mesh.Mesh
	if vp != nil {
		m.Vertices = unsafe.Slice((*mesh.Vector3)(vp), int(vn))
	}
	if ip != nil {
		m.Indices = unsafe.Slice((*int32)(ip), int(in))
	}
	return m, nil
}

// export copies m into allocator buffers. If the index buffer cannot be
// allocated the vertex buffer is returned before failing.
func (b *Boundary) export(m mesh.Mesh) (Output, error) {
	vn, in := m.VertexCount(), m.IndexCount()

	vp := b.alloc.Alloc(uintptr(vn) * vertexSize)
	if vp == nil {
		return Output{}, fmt.Errorf("%w: %d vertices", csg.ErrAllocation, vn)
	}
	ip := b.alloc.Alloc(uintptr(in) * indexSize)
	if ip == nil {
		b.alloc.Free(vp)
		return Output{}, fmt.Errorf("%w: %d indices", csg.ErrAllocation, in)
	}

	copy(unsafe.Slice((*mesh.Vector3)(vp), vn), m.Vertices)
	copy(unsafe.Slice((*int32)(ip), in), m.Indices)

	b.mu.Lock()
	b.live[vp] = struct{}{}
	b.live[ip] = struct{}{}
	b.mu.Unlock()

	return Output{Vertices: vp, VertexCount: int32(vn), Indices: ip, IndexCount: int32(in)}, nil
}

// Free returns buffers from a successful Perform. Nil pointers are
// ignored, as are pointers that were never handed out or were already
// freed.
func (b *Boundary) Free(vertices, indices unsafe.Pointer) {
	for _, p := range [2]unsafe.Pointer{vertices, indices} {
		if p == nil {
			continue
		}
		b.mu.Lock()
		_, ok := b.live[p]
		delete(b.live, p)
		b.mu.Unlock()
		if !ok {
			b.log.Warn(context.Background(), "ignoring free of unknown buffer", "ptr", fmt.Sprintf("%p", p))
			continue
		}
		b.alloc.Free(p)
	}
}

// Live returns the number of buffers handed out and not yet freed.
func (b *Boundary) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}
