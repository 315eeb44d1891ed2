package meshio

import (
	"io"

	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/hschendel/stl"
)

// ReadSTL reads an ASCII or binary STL stream. STL stores separate
// corners per triangle; bit-identical corners are merged into one vertex.
func ReadSTL(r io.ReadSeeker) (mesh.Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return mesh.Mesh{}, err
	}
	return fromSolid(solid), nil
}

func fromSolid(solid *stl.Solid) mesh.Mesh {
	m := mesh.Mesh{
		Vertices: make([]mesh.Vector3, 0, len(solid.Triangles)/2+3),
		Indices:  make([]int32, 0, 3*len(solid.Triangles)),
	}
	lookup := make(map[stl.Vec3]int32, len(solid.Triangles)/2+3)
	corner := func(v stl.Vec3) int32 {
		if idx, ok := lookup[v]; ok {
			return idx
		}
		idx := int32(len(m.Vertices))
		m.Vertices = append(m.Vertices, mesh.Vector3{X: v[0], Y: v[1], Z: v[2]})
		lookup[v] = idx
		return idx
	}
	for _, t := range solid.Triangles {
		a, b, c := corner(t.Vertices[0]), corner(t.Vertices[1]), corner(t.Vertices[2])
		m.Indices = append(m.Indices, a, c, b)
	}
	return m
}

// WriteSTL writes m as a binary STL stream, or ASCII if ascii is set.
func WriteSTL(w io.Writer, m mesh.Mesh, name string, ascii bool) error {
	return toSolid(m, name, ascii).WriteAll(w)
}

const binaryHeaderSize = 80

func toSolid(m mesh.Mesh, name string, ascii bool) *stl.Solid {
	solid := &stl.Solid{
		Name:      name,
		IsAscii:   ascii,
		Triangles: make([]stl.Triangle, 0, m.TriangleCount()),
	}
	if !ascii {
		// Binary headers must not begin with "solid".
		solid.BinaryHeader = make([]byte, binaryHeaderSize)
		copy(solid.BinaryHeader, "meshbool "+name)
	}
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		a, b, c := m.Vertices[t[0]], m.Vertices[t[2]], m.Vertices[t[1]]
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		solid.Triangles = append(solid.Triangles, stl.Triangle{
			Normal:   stl.Vec3{n.X, n.Y, n.Z},
			Vertices: [3]stl.Vec3{{a.X, a.Y, a.Z}, {b.X, b.Y, b.Z}, {c.X, c.Y, c.Z}},
		})
	}
	return solid
}
