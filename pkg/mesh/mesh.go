// Package mesh holds the host-side indexed triangle mesh: the shape game
// engines hand across the boundary and receive back.
//
// Host convention lists each triangle's vertices clockwise when seen from
// outside the solid. Kernels work in the opposite winding; see package csg
// for the conversion.
package mesh

import "github.com/chewxy/math32"

// Mesh is an indexed triangle mesh in host convention. Indices come in
// triples, one per triangle, and refer into Vertices.
type Mesh struct {
	Vertices []Vector3
	Indices  []int32
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the number of indices.
func (m Mesh) IndexCount() int {
	return len(m.Indices)
}

// TriangleCount returns the number of whole triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no vertices or no indices.
func (m Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Triangle returns the vertex indices of triangle i.
func (m Mesh) Triangle(i int) [3]int32 {
	return [3]int32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Clone returns a deep copy of m.
func (m Mesh) Clone() Mesh {
	out := Mesh{}
	if m.Vertices != nil {
		out.Vertices = append([]Vector3(nil), m.Vertices...)
	}
	if m.Indices != nil {
		out.Indices = append([]int32(nil), m.Indices...)
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty
// mesh yields a zero box.
func (m Mesh) Bounds() (min, max Vector3) {
	if len(m.Vertices) == 0 {
		return Vector3{}, Vector3{}
	}
	min = Vector3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	max = Vector3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}
	for _, v := range m.Vertices {
		min = MinVec3(min, v)
		max = MaxVec3(max, v)
	}
	return min, max
}

// Translate returns a copy of m moved by d.
func (m Mesh) Translate(d Vector3) Mesh {
	out := m.Clone()
	for i := range out.Vertices {
		out.Vertices[i] = out.Vertices[i].Add(d)
	}
	return out
}

// Scale returns a copy of m scaled about the origin by s on each axis.
func (m Mesh) Scale(s Vector3) Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = Vector3{v.X * s.X, v.Y * s.Y, v.Z * s.Z}
	}
	return out
}

// Append merges o into a copy of m, offsetting o's indices. The result is
// two shells in one buffer pair; it is not a boolean union.
func (m Mesh) Append(o Mesh) Mesh {
	out := m.Clone()
	base := int32(len(out.Vertices))
	out.Vertices = append(out.Vertices, o.Vertices...)
	for _, idx := range o.Indices {
		out.Indices = append(out.Indices, idx+base)
	}
	return out
}
