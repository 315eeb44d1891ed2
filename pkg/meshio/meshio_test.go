package meshio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/meshbool/pkg/mesh"
)

const quadCubeOBJ = `# unit cube with quad faces
o cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
vn 0 0 -1
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 4 8 7 3
f 1 5 8 4
f 2/1 3/1 7/1 6/1
`

func TestReadOBJQuads(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(quadCubeOBJ))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if m.VertexCount() != 8 {
		t.Fatalf("VertexCount = %d, want 8", m.VertexCount())
	}
	if m.TriangleCount() != 12 {
		t.Fatalf("TriangleCount = %d, want 12", m.TriangleCount())
	}
	// Faces are stored clockwise seen from outside: the first fan
	// triangle of the bottom face must face up.
	tri := m.Triangle(0)
	a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
	if n := b.Sub(a).Cross(c.Sub(a)); n.Z <= 0 {
		t.Fatalf("bottom face normal %v should point into the cube", n)
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	want := []int32{0, 2, 1}
	for i, idx := range m.Indices {
		if idx != want[i] {
			t.Fatalf("Indices = %v, want %v", m.Indices, want)
		}
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"short vertex", "v 1 2\n", "line 1"},
		{"bad float", "v 1 2 x\n", "line 1"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", "line 3"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "not allowed"},
		{"forward reference", "v 0 0 0\nf 1 2 3\nv 1 0 0\n", "out of range"},
		{"garbage index", "v 0 0 0\nf a b c\n", "bad vertex reference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestOBJRoundTrip(t *testing.T) {
	in := mesh.Box(mesh.Vec3(-1.5, 0, 0.25), mesh.Vec3(2, 3.125, 1e-3+1))
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, in); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	out, err := ReadOBJ(&buf)
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	assertSameMesh(t, in, out)
}

func TestSTLRoundTrip(t *testing.T) {
	for _, ascii := range []bool{false, true} {
		in := mesh.Cube(2).Translate(mesh.Vec3(1, 2, 3))
		var buf bytes.Buffer
		if err := WriteSTL(&buf, in, "cube", ascii); err != nil {
			t.Fatalf("WriteSTL(ascii=%v) failed: %v", ascii, err)
		}
		out, err := ReadSTL(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("ReadSTL(ascii=%v) failed: %v", ascii, err)
		}
		// Corners are re-welded in first-use order, which for a box
		// matches the original numbering only up to relabeling.
		if out.VertexCount() != 8 || out.TriangleCount() != 12 {
			t.Fatalf("ascii=%v: got %d vertices, %d triangles", ascii, out.VertexCount(), out.TriangleCount())
		}
		for i := 0; i < in.TriangleCount(); i++ {
			ti, to := in.Triangle(i), out.Triangle(i)
			for j := 0; j < 3; j++ {
				if in.Vertices[ti[j]] != out.Vertices[to[j]] {
					t.Fatalf("ascii=%v: triangle %d corner %d = %v, want %v",
						ascii, i, j, out.Vertices[to[j]], in.Vertices[ti[j]])
				}
			}
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := mesh.Cube(1)
	for _, name := range []string{"cube.obj", "cube.STL"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, in); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
		out, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) failed: %v", name, err)
		}
		if out.TriangleCount() != 12 {
			t.Fatalf("%s: TriangleCount = %d, want 12", name, out.TriangleCount())
		}
	}
	if err := WriteFile(filepath.Join(dir, "cube.ply"), in); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.obj")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.obj":     FormatOBJ,
		"b.OBJ":     FormatOBJ,
		"dir/c.stl": FormatSTL,
		"d.3mf":     FormatUnknown,
		"noext":     FormatUnknown,
	}
	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Errorf("FormatOf(%q) = %v, want %v", path, got, want)
		}
	}
}

func assertSameMesh(t *testing.T, want, got mesh.Mesh) {
	t.Helper()
	if len(got.Vertices) != len(want.Vertices) || len(got.Indices) != len(want.Indices) {
		t.Fatalf("got %d vertices, %d indices; want %d, %d",
			len(got.Vertices), len(got.Indices), len(want.Vertices), len(want.Indices))
	}
	for i := range want.Vertices {
		if got.Vertices[i] != want.Vertices[i] {
			t.Fatalf("vertex %d = %v, want %v", i, got.Vertices[i], want.Vertices[i])
		}
	}
	for i := range want.Indices {
		if got.Indices[i] != want.Indices[i] {
			t.Fatalf("index %d = %d, want %d", i, got.Indices[i], want.Indices[i])
		}
	}
}
