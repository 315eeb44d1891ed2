package mesh

import "github.com/chewxy/math32"

// Vector3 is a single-precision point. Its layout matches the C struct
// {float x, y, z;} so host buffers can be viewed as []Vector3 directly.
type Vector3 struct {
	X, Y, Z float32
}

// Vec3 is shorthand for Vector3{x, y, z}.
func Vec3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul scales v by s.
func (v Vector3) Mul(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Cross returns the cross product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len returns the euclidean length of v.
func (v Vector3) Len() float32 {
	return math32.Sqrt(v.Dot(v))
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// MinVec3 returns the component-wise minimum of a and b.
func MinVec3(a, b Vector3) Vector3 {
	return Vector3{math32.Min(a.X, b.X), math32.Min(a.Y, b.Y), math32.Min(a.Z, b.Z)}
}

// MaxVec3 returns the component-wise maximum of a and b.
func MaxVec3(a, b Vector3) Vector3 {
	return Vector3{math32.Max(a.X, b.X), math32.Max(a.Y, b.Y), math32.Max(a.Z, b.Z)}
}
