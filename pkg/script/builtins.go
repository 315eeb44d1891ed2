package script

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/meshbool/pkg/csg"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/chazu/meshbool/pkg/meshio"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sexpMesh wraps a mesh.Mesh so it can be passed between builtins.
type sexpMesh struct {
	m mesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d vertices %d triangles)", s.m.VertexCount(), s.m.TriangleCount())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword with no value after it is a flag.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			if _, next := isKW(args[i+1]); !next {
				result.kw[name] = args[i+1]
				i++
				continue
			}
		}
		result.kw[name] = zygo.SexpNull
	}
	return result
}

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// toFloat32 extracts a number from a Sexp (SexpInt or SexpFloat).
func toFloat32(s zygo.Sexp) (float32, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float32(v.Val), nil
	case *zygo.SexpFloat:
		return float32(v.Val), nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 reads three numbers starting at args[0].
func toVec3(args []zygo.Sexp) (mesh.Vector3, error) {
	if len(args) != 3 {
		return mesh.Vector3{}, fmt.Errorf("expected 3 numbers, got %d arguments", len(args))
	}
	var c [3]float32
	for i, a := range args {
		f, err := toFloat32(a)
		if err != nil {
			return mesh.Vector3{}, err
		}
		c[i] = f
	}
	return mesh.Vec3(c[0], c[1], c[2]), nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toMesh(s zygo.Sexp) (mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return mesh.Mesh{}, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// registerBuiltins installs the mesh builtins into a zygomys environment.
// Source must go through preprocessSource first so that :keyword tokens
// are recognizable.
func (e *Engine) registerBuiltins(ctx context.Context, env *zygo.Zlisp) {

	// (cube 2) or (cube 2 :center)
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("cube requires a size")
		}
		size, err := toFloat32(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: size: %w", err)
		}
		if size <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: size must be positive, got %g", size)
		}
		m := mesh.Cube(size)
		if _, ok := pa.kw["center"]; ok {
			m = m.Translate(mesh.Vec3(-size/2, -size/2, -size/2))
		}
		return &sexpMesh{m: m}, nil
	})

	// (box x0 y0 z0 x1 y1 z1)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 6 {
			return zygo.SexpNull, fmt.Errorf("box requires 6 numbers, got %d", len(args))
		}
		lo, err := toVec3(args[:3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: min: %w", err)
		}
		hi, err := toVec3(args[3:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: max: %w", err)
		}
		if hi.X <= lo.X || hi.Y <= lo.Y || hi.Z <= lo.Z {
			return zygo.SexpNull, fmt.Errorf("box: max must exceed min on every axis")
		}
		return &sexpMesh{m: mesh.Box(lo, hi)}, nil
	})

	// (translate m 1 0 0)
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires a mesh and 3 numbers")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		d, err := toVec3(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return &sexpMesh{m: m.Translate(d)}, nil
	})

	// (scale m 2) or (scale m 1 2 1)
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("scale requires a mesh and 1 or 3 numbers")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		var s mesh.Vector3
		if len(args) == 2 {
			f, err := toFloat32(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scale: %w", err)
			}
			s = mesh.Vec3(f, f, f)
		} else if s, err = toVec3(args[1:]); err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("scale: factors must be positive")
		}
		return &sexpMesh{m: m.Scale(s)}, nil
	})

	// (union a b ...), (intersection a b ...), (difference a b ...)
	for _, op := range []csg.Operation{csg.Union, csg.Intersection, csg.Difference} {
		op := op
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 meshes", name)
			}
			acc, err := toMesh(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			for i, a := range args[1:] {
				m, err := toMesh(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", name, i+2, err)
				}
				if acc, err = e.perform(ctx, acc, m, op); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
				}
			}
			return &sexpMesh{m: acc}, nil
		})
	}

	// (load "part.stl")
	env.AddFunction("load", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("load requires a file name")
		}
		file, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load: %w", err)
		}
		path, err := e.resolve(file)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load: %w", err)
		}
		m, err := meshio.ReadFile(path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// (vertex-count m), (triangle-count m)
	env.AddFunction("vertex_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("vertex-count requires a mesh")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(m.VertexCount())}, nil
	})
	env.AddFunction("triangle_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("triangle-count requires a mesh")
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("triangle-count: %w", err)
		}
		return &zygo.SexpInt{Val: int64(m.TriangleCount())}, nil
	})
}

func (e *Engine) perform(ctx context.Context, a, b mesh.Mesh, op csg.Operation) (mesh.Mesh, error) {
	var (
		res *csg.Result
		err error
	)
	if e.opts.Pipeline != nil {
		res, err = e.opts.Pipeline.Perform(ctx, a, b, op)
	} else {
		res, err = csg.Perform(ctx, a, b, op)
	}
	if err != nil {
		return mesh.Mesh{}, err
	}
	return res.Take(), nil
}

// resolve maps a script file name into Options.Dir, refusing names that
// leave it.
func (e *Engine) resolve(file string) (string, error) {
	if e.opts.Dir == "" {
		return "", fmt.Errorf("file access is disabled")
	}
	if filepath.IsAbs(file) {
		return "", fmt.Errorf("%q: absolute paths are not allowed", file)
	}
	path := filepath.Join(e.opts.Dir, file)
	rel, err := filepath.Rel(e.opts.Dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside the script directory", file)
	}
	return path, nil
}
