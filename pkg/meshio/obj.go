package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/meshbool/pkg/mesh"
)

// ReadOBJ parses the vertices and faces of a Wavefront OBJ stream. Faces
// with more than three corners are split into a fan. Texture and normal
// references are ignored.
func ReadOBJ(r io.Reader) (mesh.Mesh, error) {
	m := mesh.Mesh{Vertices: []mesh.Vector3{}, Indices: []int32{}}

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return mesh.Mesh{}, fmt.Errorf("obj: line %d: %w", lineNum, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			face, err := parseFace(lineTokens, len(m.Vertices))
			if err != nil {
				return mesh.Mesh{}, fmt.Errorf("obj: line %d: %w", lineNum, err)
			}
			for i := 1; i+1 < len(face); i++ {
				// File order is counter-clockwise; store clockwise.
				m.Indices = append(m.Indices, face[0], face[i+1], face[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return mesh.Mesh{}, fmt.Errorf("obj: %w", err)
	}
	return m, nil
}

// WriteOBJ writes m as a Wavefront OBJ stream.
func WriteOBJ(w io.Writer, m mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# meshbool: %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
	}
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[2]+1, t[1]+1)
	}
	return bw.Flush()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// parseVec3 parses a "v x y z [w]" row.
func parseVec3(lineTokens []string) (mesh.Vector3, error) {
	if len(lineTokens) < 4 {
		return mesh.Vector3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	var coords [3]float32
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return mesh.Vector3{}, err
		}
		coords[tokIdx-1] = float32(coord)
	}
	return mesh.Vector3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// parseFace parses an "f" row into zero-based vertex indices. Each corner
// may be "v", "v/vt", "v//vn" or "v/vt/vn"; negative v counts back from the
// last vertex read so far.
func parseFace(lineTokens []string, vertexCount int) ([]int32, error) {
	if len(lineTokens) < 4 {
		return nil, fmt.Errorf("unsupported syntax for 'f'; expected at least 3 corners; got %d", len(lineTokens)-1)
	}

	face := make([]int32, 0, len(lineTokens)-1)
	for _, tok := range lineTokens[1:] {
		ref := tok
		if slash := strings.IndexByte(tok, '/'); slash >= 0 {
			ref = tok[:slash]
		}
		idx, err := strconv.ParseInt(ref, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad vertex reference %q: %w", tok, err)
		}
		switch {
		case idx > 0:
			idx--
		case idx < 0:
			idx += int64(vertexCount)
		default:
			return nil, fmt.Errorf("vertex reference 0 is not allowed")
		}
		if idx < 0 || idx >= int64(vertexCount) {
			return nil, fmt.Errorf("vertex reference %q out of range; %d vertices defined", tok, vertexCount)
		}
		face = append(face, int32(idx))
	}
	return face, nil
}
