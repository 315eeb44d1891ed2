package kernel

// Mesh is a triangle mesh in kernel convention. Both arrays are flat:
// vertices has 3 floats per vertex (x,y,z), indices has 3 uint32s per
// triangle. Triangle winding is counter-clockwise seen from outside.
//
// A Mesh produced by a native kernel may view memory the kernel allocated.
// Such meshes carry a release hook and must go back through
// Kernel.Release exactly once.
type Mesh struct {
	Vertices []float32 // [x0,y0,z0, x1,y1,z1, ...]
	Indices  []uint32  // [i0,i1,i2, ...] triangles

	free func()
}

// Foreign wraps buffers owned by a kernel. free is invoked by Free.
func Foreign(vertices []float32, indices []uint32, free func()) *Mesh {
	return &Mesh{Vertices: vertices, Indices: indices, free: free}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry: no vertices, no
// triangles, or missing buffers.
func (m *Mesh) IsEmpty() bool {
	return m == nil || m.Vertices == nil || m.Indices == nil ||
		m.VertexCount() == 0 || m.TriangleCount() == 0
}

// Free drops the mesh's buffers and runs its release hook, if any. It is
// safe to call more than once and on a nil mesh.
func (m *Mesh) Free() {
	if m == nil {
		return
	}
	free := m.free
	m.free = nil
	m.Vertices = nil
	m.Indices = nil
	if free != nil {
		free()
	}
}

// Vertex returns vertex i as three floats.
func (m *Mesh) Vertex(i uint32) (x, y, z float32) {
	return m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]
}
