package sdfx

import (
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

type weldKey [3]int64

// welder merges coincident marching cubes vertices into an indexed mesh.
// Vertices are bucketed on a grid of size tol.
type welder struct {
	tol      float64
	lookup   map[weldKey]uint32
	vertices []float32
	indices  []uint32
}

func newWelder(tol float64, triangles int) *welder {
	if tol <= 0 {
		tol = 1e-9
	}
	return &welder{
		tol:      tol,
		lookup:   make(map[weldKey]uint32, triangles/2+1),
		vertices: make([]float32, 0, triangles*3),
		indices:  make([]uint32, 0, triangles*3),
	}
}

func (w *welder) vertex(v v3.Vec) uint32 {
	key := weldKey{
		int64(math.Round(v.X / w.tol)),
		int64(math.Round(v.Y / w.tol)),
		int64(math.Round(v.Z / w.tol)),
	}
	if idx, ok := w.lookup[key]; ok {
		return idx
	}
	idx := uint32(len(w.vertices) / 3)
	w.vertices = append(w.vertices, float32(v.X), float32(v.Y), float32(v.Z))
	w.lookup[key] = idx
	return idx
}

// add appends a triangle, dropping it when welding collapses two corners.
func (w *welder) add(t [3]v3.Vec) {
	i0, i1, i2 := w.vertex(t[0]), w.vertex(t[1]), w.vertex(t[2])
	if i0 == i1 || i1 == i2 || i0 == i2 {
		return
	}
	w.indices = append(w.indices, i0, i1, i2)
}

func (w *welder) mesh() *kernel.Mesh {
	return &kernel.Mesh{Vertices: w.vertices, Indices: w.indices}
}
