package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/meshbool/pkg/csg"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/cork"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/logging"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/script"
	"github.com/urfave/cli"
)

// environment carries what every command needs.
type environment struct {
	stdout io.Writer
	stderr io.Writer
	logger logging.Logger
}

func (e *environment) setupLogging(ctx *cli.Context) error {
	level := slog.LevelWarn
	if ctx.GlobalBool("v") {
		level = slog.LevelInfo
	}
	if ctx.GlobalBool("vv") {
		level = slog.LevelDebug
	}
	e.logger = logging.NewText(e.stderr, level)
	return nil
}

func (e *environment) pipeline(ctx *cli.Context) (*csg.Pipeline, error) {
	var k kernel.Kernel
	switch name := ctx.String("kernel"); name {
	case "", "sdfx":
		k = sdfx.NewWithCells(ctx.Int("cells"))
	case "cork":
		ck, err := cork.New()
		if err != nil {
			return nil, err
		}
		k = ck
	default:
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
	return csg.New(csg.Options{
		Kernel:          k,
		Logger:          e.logger,
		SerializeKernel: ctx.Bool("serialize"),
		MaxElements:     csg.DefaultMaxElements,
	}), nil
}

// runBoolean reads two meshes, combines them and writes the result.
func (e *environment) runBoolean(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("run: expected 2 mesh files, got %d", ctx.NArg())
	}
	op, err := csg.ParseOperation(ctx.String("op"))
	if err != nil {
		return err
	}
	p, err := e.pipeline(ctx)
	if err != nil {
		return err
	}

	a, err := meshio.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	b, err := meshio.ReadFile(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	res, err := p.Perform(context.Background(), a, b, op)
	if err != nil {
		return fmt.Errorf("%s: %w", csg.StatusText(csg.Status(err)), err)
	}
	m := res.Take()

	out := ctx.String("out")
	if err := meshio.WriteFile(out, m); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: %d vertices, %d triangles\n", out, m.VertexCount(), m.TriangleCount())
	return nil
}

// checkMeshes reports validation and solidity for each file. It fails if
// any file is not a valid solid.
func (e *environment) checkMeshes(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("check: expected at least one mesh file")
	}
	p, err := e.pipeline(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range ctx.Args() {
		m, err := meshio.ReadFile(path)
		if err == nil {
			err = p.Check(m)
		}
		if err != nil {
			failed++
			fmt.Fprintf(e.stdout, "%s: %s (%v)\n", path, csg.StatusText(csg.Status(err)), err)
			continue
		}
		fmt.Fprintf(e.stdout, "%s: solid, %d vertices, %d triangles\n", path, m.VertexCount(), m.TriangleCount())
	}
	if failed > 0 {
		return fmt.Errorf("check: %d of %d files failed", failed, ctx.NArg())
	}
	return nil
}

// evalScript runs a mesh script and writes its final mesh.
func (e *environment) evalScript(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("eval: expected 1 script file, got %d", ctx.NArg())
	}
	path := ctx.Args().Get(0)
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := e.pipeline(ctx)
	if err != nil {
		return err
	}

	eng := script.NewEngine(script.Options{
		Pipeline: p,
		Dir:      filepath.Dir(path),
		Timeout:  ctx.Duration("timeout"),
	})
	res, evalErrs, err := eng.Evaluate(context.Background(), string(src))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, ee := range evalErrs {
			fmt.Fprintf(e.stderr, "%s: %v\n", path, ee)
		}
		return fmt.Errorf("eval: %d errors", len(evalErrs))
	}
	if res.Mesh.IsEmpty() {
		return fmt.Errorf("eval: script produced %s, not a mesh", res.Value)
	}

	out := ctx.String("out")
	if err := meshio.WriteFile(out, res.Mesh); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: %d vertices, %d triangles\n", out, res.Mesh.VertexCount(), res.Mesh.TriangleCount())
	return nil
}

func (e *environment) printVersion(ctx *cli.Context) error {
	fmt.Fprintf(e.stdout, "meshbool %s\n", Version)
	return nil
}
