package mesh

// boxIndices lists the 12 triangles of a box over the corner numbering
// used by Box, clockwise from outside.
var boxIndices = []int32{
	0, 1, 2, 0, 2, 3, // -z
	4, 6, 5, 4, 7, 6, // +z
	0, 5, 1, 0, 4, 5, // -y
	3, 6, 7, 3, 2, 6, // +y
	0, 7, 4, 0, 3, 7, // -x
	1, 6, 2, 1, 5, 6, // +x
}

// Box returns the closed 8-vertex, 12-triangle box spanning min to max.
func Box(min, max Vector3) Mesh {
	return Mesh{
		Vertices: []Vector3{
			{min.X, min.Y, min.Z},
			{max.X, min.Y, min.Z},
			{max.X, max.Y, min.Z},
			{min.X, max.Y, min.Z},
			{min.X, min.Y, max.Z},
			{max.X, min.Y, max.Z},
			{max.X, max.Y, max.Z},
			{min.X, max.Y, max.Z},
		},
		Indices: append([]int32(nil), boxIndices...),
	}
}

// Cube returns an axis-aligned cube of the given edge length with its
// minimum corner at the origin.
func Cube(size float32) Mesh {
	return Box(Vector3{}, Vector3{size, size, size})
}

// SingleTriangle returns an open single-triangle mesh. It is never solid and is
// mostly useful to exercise rejection paths.
func SingleTriangle(a, b, c Vector3) Mesh {
	return Mesh{
		Vertices: []Vector3{a, b, c},
		Indices:  []int32{0, 1, 2},
	}
}
