package csg

import (
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/mesh"
)

// FlipWinding swaps the second and third corners of a triangle. Applying it
// twice returns the original triangle.
func FlipWinding(t [3]int32) [3]int32 {
	return [3]int32{t[0], t[2], t[1]}
}

// ToKernel copies a validated host mesh into kernel convention. It
// allocates one vertex and one index buffer and leaves m untouched.
func ToKernel(m mesh.Mesh) *kernel.Mesh {
	vertices := make([]float32, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		vertices = append(vertices, v.X, v.Y, v.Z)
	}
	indices := make([]uint32, len(m.Indices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		indices[i] = uint32(m.Indices[i])
		indices[i+1] = uint32(m.Indices[i+2])
		indices[i+2] = uint32(m.Indices[i+1])
	}
	return &kernel.Mesh{Vertices: vertices, Indices: indices}
}

// FromKernel copies a kernel mesh back into host convention. Vertices are
// copied verbatim; every triangle has its winding reversed. Indices must
// already be known to be in range.
func FromKernel(k *kernel.Mesh) mesh.Mesh {
	n := k.VertexCount()
	vertices := make([]mesh.Vector3, n)
	for i := range vertices {
		vertices[i] = mesh.Vector3{X: k.Vertices[3*i], Y: k.Vertices[3*i+1], Z: k.Vertices[3*i+2]}
	}
	t := k.TriangleCount()
	indices := make([]int32, 3*t)
	for i := 0; i < 3*t; i += 3 {
		indices[i] = int32(k.Indices[i])
		indices[i+1] = int32(k.Indices[i+2])
		indices[i+2] = int32(k.Indices[i+1])
	}
	return mesh.Mesh{Vertices: vertices, Indices: indices}
}
