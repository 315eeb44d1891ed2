package kernel

import "gonum.org/v1/gonum/spatial/r3"

// edge is a directed triangle edge.
type edge struct {
	from, to uint32
}

// IsClosedManifold reports whether m is a closed, consistently oriented
// 2-manifold: every triangle references three distinct in-range vertices
// and every directed edge is used exactly once, with its reverse used
// exactly once by a neighbouring triangle.
//
// It does not detect self-intersections.
func IsClosedManifold(m *Mesh) bool {
	if m.IsEmpty() || len(m.Indices)%3 != 0 || len(m.Vertices)%3 != 0 {
		return false
	}
	nv := uint32(m.VertexCount())
	edges := make(map[edge]int, len(m.Indices))
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]
		if a >= nv || b >= nv || c >= nv {
			return false
		}
		if a == b || b == c || c == a {
			return false
		}
		for _, e := range [3]edge{{a, b}, {b, c}, {c, a}} {
			edges[e]++
			if edges[e] > 1 {
				// Two triangles walking the same edge the same way are
				// either inconsistently oriented or non-manifold.
				return false
			}
		}
	}
	for e := range edges {
		if edges[edge{e.to, e.from}] != 1 {
			return false
		}
	}
	return true
}

// SignedVolume returns the volume enclosed by m. It is positive when
// triangles wind counter-clockwise seen from outside and negative for the
// opposite winding. The result is only meaningful for closed meshes.
func SignedVolume(m *Mesh) float64 {
	var vol float64
	for t := 0; t < m.TriangleCount(); t++ {
		a := m.point(m.Indices[3*t])
		b := m.point(m.Indices[3*t+1])
		c := m.point(m.Indices[3*t+2])
		vol += r3.Dot(a, r3.Cross(b, c))
	}
	return vol / 6
}

// Bounds returns the axis-aligned bounding box of m's vertices.
func Bounds(m *Mesh) r3.Box {
	if m.VertexCount() == 0 {
		return r3.Box{}
	}
	box := r3.Box{Min: m.point(0), Max: m.point(0)}
	for i := uint32(1); i < uint32(m.VertexCount()); i++ {
		p := m.point(i)
		box.Min = r3.Vec{X: min(box.Min.X, p.X), Y: min(box.Min.Y, p.Y), Z: min(box.Min.Z, p.Z)}
		box.Max = r3.Vec{X: max(box.Max.X, p.X), Y: max(box.Max.Y, p.Y), Z: max(box.Max.Z, p.Z)}
	}
	return box
}

func (m *Mesh) point(i uint32) r3.Vec {
	x, y, z := m.Vertex(i)
	return r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
}
