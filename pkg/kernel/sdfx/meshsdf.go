package sdfx

import (
	"errors"
	"math"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

var errEmptyMesh = errors.New("empty mesh")

// meshSDF is a signed distance field backed by a closed triangle mesh.
// Distance is exact to the nearest triangle; the sign comes from the
// generalized winding number, so slightly open or noisy input still has a
// usable inside.
type meshSDF struct {
	tris [][3]r3.Vec
	bb   sdf.Box3
}

var _ sdf.SDF3 = (*meshSDF)(nil)

func newMeshSDF(m *kernel.Mesh) (*meshSDF, error) {
	if m.IsEmpty() {
		return nil, errEmptyMesh
	}
	n := m.TriangleCount()
	s := &meshSDF{tris: make([][3]r3.Vec, 0, n)}
	for i := 0; i < n; i++ {
		var t [3]r3.Vec
		for j := 0; j < 3; j++ {
			x, y, z := m.Vertex(m.Indices[3*i+j])
			t[j] = r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
		}
		s.tris = append(s.tris, t)
	}

	box := kernel.Bounds(m)
	size := r3.Sub(box.Max, box.Min)
	pad := 0.05*math.Max(size.X, math.Max(size.Y, size.Z)) + 1e-6
	s.bb = sdf.Box3{
		Min: v3.Vec{X: box.Min.X - pad, Y: box.Min.Y - pad, Z: box.Min.Z - pad},
		Max: v3.Vec{X: box.Max.X + pad, Y: box.Max.Y + pad, Z: box.Max.Z + pad},
	}
	return s, nil
}

// Evaluate returns the signed distance from p to the surface, negative
// inside.
func (s *meshSDF) Evaluate(p v3.Vec) float64 {
	q := r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
	best := math.Inf(1)
	var omega float64
	for _, t := range s.tris {
		d := r3.Norm2(r3.Sub(q, closestPoint(q, t)))
		if d < best {
			best = d
		}
		omega += solidAngle(q, t)
	}
	d := math.Sqrt(best)
	if math.Abs(omega/(4*math.Pi)) > 0.5 {
		return -d
	}
	return d
}

// BoundingBox returns the padded bounds of the mesh.
func (s *meshSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// closestPoint returns the point on triangle t nearest to p. Region tests
// follow Ericson, Real-Time Collision Detection 5.1.5.
func closestPoint(p r3.Vec, t [3]r3.Vec) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)

	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return r3.Add(a, r3.Scale(d1/(d1-d3), ab))
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(d2/(d2-d6), ac))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}

	denom := va + vb + vc
	if denom == 0 {
		// Zero-area triangle: the edge tests above already cover it.
		return a
	}
	v := vb / denom
	w := vc / denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// solidAngle returns the signed solid angle subtended by t at p
// (Van Oosterom and Strackee). Counter-clockwise triangles seen from
// outside contribute positively at interior points.
func solidAngle(p r3.Vec, t [3]r3.Vec) float64 {
	a := r3.Sub(t[0], p)
	b := r3.Sub(t[1], p)
	c := r3.Sub(t[2], p)
	la, lb, lc := r3.Norm(a), r3.Norm(b), r3.Norm(c)
	num := r3.Dot(a, r3.Cross(b, c))
	den := la*lb*lc + r3.Dot(a, b)*lc + r3.Dot(b, c)*la + r3.Dot(c, a)*lb
	return 2 * math.Atan2(num, den)
}
