package csg

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/logging"
	"github.com/chazu/meshbool/pkg/mesh"
)

// DefaultMaxElements bounds vertex and index counts per mesh.
const DefaultMaxElements = 1 << 24

// Options configures a Pipeline.
type Options struct {
	// Kernel performs the booleans. Nil selects the sdfx kernel.
	Kernel kernel.Kernel
	// Logger receives per-call records. Nil selects slog.Default().
	Logger logging.Logger
	// SerializeKernel forces one kernel call at a time even when the
	// kernel reports itself reentrant.
	SerializeKernel bool
	// MaxElements bounds vertex and index counts of inputs and results.
	// Zero or less disables the limit.
	MaxElements int
}

// DefaultOptions returns options for the pure-Go sdfx kernel.
func DefaultOptions() Options {
	return Options{
		Kernel:      sdfx.New(),
		Logger:      logging.New(nil),
		MaxElements: DefaultMaxElements,
	}
}

// Pipeline runs boolean operations against one kernel. It is safe for
// concurrent use; calls share nothing but the kernel.
type Pipeline struct {
	opts  Options
	d     *dispatcher
	calls atomic.Uint64
}

// New returns a Pipeline for opts.
func New(opts Options) *Pipeline {
	if opts.Kernel == nil {
		opts.Kernel = sdfx.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.New(nil)
	}
	return &Pipeline{
		opts: opts,
		d:    newDispatcher(opts.Kernel, opts.SerializeKernel),
	}
}

// Kernel returns the kernel the pipeline dispatches to.
func (p *Pipeline) Kernel() kernel.Kernel {
	return p.opts.Kernel
}

// Perform computes op(a, b). Neither input is modified. On success the
// caller owns the returned Result; on failure the Result is nil and every
// intermediate buffer has been released.
func (p *Pipeline) Perform(ctx context.Context, a, b mesh.Mesh, op Operation) (*Result, error) {
	log := p.opts.Logger.With("call", p.calls.Add(1), "op", op)
	log.Debug(ctx, "boolean requested",
		"vertices_a", a.VertexCount(), "indices_a", a.IndexCount(),
		"vertices_b", b.VertexCount(), "indices_b", b.IndexCount())

	res, err := p.perform(ctx, log, a, b, op)
	if err != nil {
		log.Warn(ctx, "boolean failed", "status", StatusText(Status(err)), "err", err)
		return nil, err
	}
	log.Debug(ctx, "boolean done", "vertices", res.VertexCount(), "indices", res.IndexCount())
	return res, nil
}

func (p *Pipeline) perform(ctx context.Context, log logging.Logger, a, b mesh.Mesh, op Operation) (*Result, error) {
	if err := validate(a, b, op, p.opts.MaxElements); err != nil {
		return nil, err
	}

	ka := ToKernel(a)
	kb := ToKernel(b)

	for _, in := range []struct {
		name string
		m    *kernel.Mesh
	}{{"A", ka}, {"B", kb}} {
		solid, err := p.d.isSolid(in.m)
		if err != nil {
			return nil, err
		}
		if !solid {
			return nil, errorf("solidity", "%w: mesh %s", ErrNotSolid, in.name)
		}
	}

	km, err := p.d.dispatch(ctx, log, op, ka, kb)
	if err != nil {
		return nil, err
	}
	return p.d.marshal(km, p.opts.MaxElements)
}

// Check validates a single mesh and asks the kernel whether it is solid.
func (p *Pipeline) Check(m mesh.Mesh) error {
	if err := validate(m, m, Union, p.opts.MaxElements); err != nil {
		return err
	}
	solid, err := p.d.isSolid(ToKernel(m))
	if err != nil {
		return err
	}
	if !solid {
		return errorf("solidity", "%w", ErrNotSolid)
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultPipeline *Pipeline
)

// Perform runs op(a, b) on a shared Pipeline built from DefaultOptions.
func Perform(ctx context.Context, a, b mesh.Mesh, op Operation) (*Result, error) {
	defaultOnce.Do(func() {
		defaultPipeline = New(DefaultOptions())
	})
	return defaultPipeline.Perform(ctx, a, b, op)
}
