package csg

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/logging"
	"github.com/chazu/meshbool/pkg/mesh"
	"github.com/stretchr/testify/require"
)

// fakeKernel returns a copy of mesh A for every operation unless run is
// set. Results carry a release hook so frees can be counted.
type fakeKernel struct {
	run       func(a, b *kernel.Mesh) (*kernel.Mesh, error)
	solid     func(m *kernel.Mesh) bool
	reentrant bool

	calls    atomic.Int32
	released atomic.Int32
	freed    atomic.Int32
}

func (k *fakeKernel) foreign(v []float32, i []uint32) *kernel.Mesh {
	return kernel.Foreign(v, i, func() { k.freed.Add(1) })
}

func (k *fakeKernel) boolean(a, b *kernel.Mesh) (*kernel.Mesh, error) {
	k.calls.Add(1)
	if k.run != nil {
		return k.run(a, b)
	}
	v := append([]float32(nil), a.Vertices...)
	i := append([]uint32(nil), a.Indices...)
	return k.foreign(v, i), nil
}

func (k *fakeKernel) Union(a, b *kernel.Mesh) (*kernel.Mesh, error)        { return k.boolean(a, b) }
func (k *fakeKernel) Intersection(a, b *kernel.Mesh) (*kernel.Mesh, error) { return k.boolean(a, b) }
func (k *fakeKernel) Difference(a, b *kernel.Mesh) (*kernel.Mesh, error)   { return k.boolean(a, b) }

func (k *fakeKernel) IsSolid(m *kernel.Mesh) bool {
	if k.solid != nil {
		return k.solid(m)
	}
	return kernel.IsClosedManifold(m)
}

func (k *fakeKernel) Release(m *kernel.Mesh) {
	k.released.Add(1)
	m.Free()
}

func (k *fakeKernel) Reentrant() bool { return k.reentrant }

func newTestPipeline(k kernel.Kernel) *Pipeline {
	return New(Options{Kernel: k, Logger: logging.Discard(), MaxElements: DefaultMaxElements})
}

func cubeAt(x, y, z float32) mesh.Mesh {
	return mesh.Cube(1).Translate(mesh.Vec3(x, y, z))
}

func TestValidateRejects(t *testing.T) {
	good := mesh.Cube(1)
	nan := good.Clone()
	nan.Vertices[3].Y = float32(math.NaN())
	inf := good.Clone()
	inf.Vertices[0].Z = float32(math.Inf(1))
	outOfRange := good.Clone()
	outOfRange.Indices[5] = int32(len(outOfRange.Vertices))
	negative := good.Clone()
	negative.Indices[0] = -1

	tests := []struct {
		name string
		a, b mesh.Mesh
		op   Operation
		want string
	}{
		{"nil vertices A", mesh.Mesh{Indices: good.Indices}, good, Union, "missing buffer"},
		{"nil indices B", good, mesh.Mesh{Vertices: good.Vertices}, Union, "missing buffer"},
		{"empty vertices", mesh.Mesh{Vertices: []mesh.Vector3{}, Indices: good.Indices}, good, Union, "0 vertices"},
		{"empty indices", good, mesh.Mesh{Vertices: good.Vertices, Indices: []int32{}}, Union, "0 indices"},
		{"partial triangle", good, mesh.Mesh{Vertices: good.Vertices, Indices: good.Indices[:4]}, Union, "multiple of 3"},
		{"index equals vertex count", good, outOfRange, Union, "outside [0, 8)"},
		{"negative index", negative, good, Union, "outside [0, 8)"},
		{"NaN coordinate", nan, good, Union, "not finite"},
		{"Inf coordinate", good, inf, Union, "not finite"},
		{"operation 3", good, good, Operation(3), "unknown operation 3"},
		{"operation -1", good, good, Operation(-1), "unknown operation -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.a, tt.b, tt.op)
			require.ErrorIs(t, err, ErrMalformedInput)
			require.ErrorContains(t, err, tt.want)
			require.Equal(t, StatusMalformedInput, Status(err))

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			require.Equal(t, "validate", cerr.Op)
		})
	}
}

func TestValidateOrder(t *testing.T) {
	good := mesh.Cube(1)
	// Partial triangle and out-of-range index: the count check runs first.
	bad := mesh.Mesh{Vertices: good.Vertices, Indices: []int32{0, 1, 99, 2}}
	err := Validate(good, bad, Operation(7))
	require.ErrorContains(t, err, "multiple of 3")

	// A problem in B at an earlier stage wins over one in A at a later stage.
	nan := good.Clone()
	nan.Vertices[0].X = float32(math.NaN())
	err = Validate(nan, mesh.Mesh{Vertices: good.Vertices}, Union)
	require.ErrorContains(t, err, "mesh B: missing buffer")
}

func TestValidateAccepts(t *testing.T) {
	for _, op := range []Operation{Union, Intersection, Difference} {
		require.NoError(t, Validate(mesh.Cube(1), cubeAt(3, 0, 0), op))
	}
}

func TestMaxElements(t *testing.T) {
	k := &fakeKernel{reentrant: true}
	p := New(Options{Kernel: k, Logger: logging.Discard(), MaxElements: 10})

	res, err := p.Perform(context.Background(), mesh.Cube(1), cubeAt(2, 0, 0), Union)
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrAllocation)
	require.Equal(t, StatusAllocationFailure, Status(err))
	require.Zero(t, k.calls.Load())
}

func TestFlipWindingInvolution(t *testing.T) {
	tri := [3]int32{4, 9, 2}
	require.Equal(t, [3]int32{4, 2, 9}, FlipWinding(tri))
	require.Equal(t, tri, FlipWinding(FlipWinding(tri)))
}

func TestConvertRoundTrip(t *testing.T) {
	in := mesh.Cube(2)
	before := in.Clone()

	km := ToKernel(in)
	require.Len(t, km.Vertices, 3*len(in.Vertices))
	require.Len(t, km.Indices, len(in.Indices))
	for i := 0; i < in.TriangleCount(); i++ {
		host := in.Triangle(i)
		require.Equal(t, uint32(host[0]), km.Indices[3*i])
		require.Equal(t, uint32(host[2]), km.Indices[3*i+1])
		require.Equal(t, uint32(host[1]), km.Indices[3*i+2])
	}
	require.Greater(t, kernel.SignedVolume(km), 0.0, "kernel convention faces outward counter-clockwise")

	require.Equal(t, before, FromKernel(km))
	require.Equal(t, before, in, "conversion must not mutate its input")
}

func TestPerformEchoIsIdentity(t *testing.T) {
	k := &fakeKernel{reentrant: true}
	p := newTestPipeline(k)
	a := mesh.Cube(1)

	for _, op := range []Operation{Union, Intersection, Difference} {
		res, err := p.Perform(context.Background(), a, cubeAt(0.5, 0.5, 0.5), op)
		require.NoError(t, err)
		require.Equal(t, a, res.Mesh())
		require.Equal(t, 8, res.VertexCount())
		require.Equal(t, 36, res.IndexCount())
		res.Release()
	}
	require.EqualValues(t, 3, k.calls.Load())
	require.EqualValues(t, 3, k.released.Load())
	require.EqualValues(t, 3, k.freed.Load())
}

func TestPerformNotSolid(t *testing.T) {
	k := &fakeKernel{reentrant: true}
	p := newTestPipeline(k)
	open := mesh.SingleTriangle(mesh.Vec3(0, 0, 0), mesh.Vec3(0, 1, 0), mesh.Vec3(1, 0, 0))

	res, err := p.Perform(context.Background(), mesh.Cube(1), open, Union)
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrNotSolid)
	require.ErrorContains(t, err, "mesh B")
	require.Equal(t, StatusNotSolid, Status(err))
	require.Zero(t, k.calls.Load(), "kernel must not run on non-solid input")
}

func TestPerformKernelFailures(t *testing.T) {
	tests := []struct {
		name      string
		run       func(k *fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error)
		want      error
		wantFreed int32
	}{
		{
			name: "error with partial result",
			run: func(k *fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error) {
				return func(a, _ *kernel.Mesh) (*kernel.Mesh, error) {
					return k.foreign(a.Vertices[:3], a.Indices[:3]), errors.New("numerical degeneracy")
				}
			},
			want:      ErrKernelFailure,
			wantFreed: 1,
		},
		{
			name: "error without result",
			run: func(*fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error) {
				return func(_, _ *kernel.Mesh) (*kernel.Mesh, error) {
					return nil, errors.New("unsupported topology")
				}
			},
			want: ErrKernelFailure,
		},
		{
			name: "panic",
			run: func(*fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error) {
				return func(_, _ *kernel.Mesh) (*kernel.Mesh, error) {
					panic("kernel abort")
				}
			},
			want: ErrKernelFailure,
		},
		{
			name: "nil result",
			run: func(*fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error) {
				return func(_, _ *kernel.Mesh) (*kernel.Mesh, error) { return nil, nil }
			},
			want: ErrKernelFailure,
		},
		{
			name: "empty result",
			run: func(k *fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error) {
				return func(_, _ *kernel.Mesh) (*kernel.Mesh, error) { return k.foreign(nil, nil), nil }
			},
			want:      ErrDegenerateResult,
			wantFreed: 1,
		},
		{
			name: "result index out of range",
			run: func(k *fakeKernel) func(a, b *kernel.Mesh) (*kernel.Mesh, error) {
				return func(a, _ *kernel.Mesh) (*kernel.Mesh, error) {
					return k.foreign(append([]float32(nil), a.Vertices...), []uint32{0, 1, 8}), nil
				}
			},
			want:      ErrKernelFailure,
			wantFreed: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &fakeKernel{reentrant: true}
			k.run = tt.run(k)
			p := newTestPipeline(k)

			var (
				res *Result
				err error
			)
			require.NotPanics(t, func() {
				res, err = p.Perform(context.Background(), mesh.Cube(1), cubeAt(0.5, 0, 0), Difference)
			})
			require.Nil(t, res)
			require.ErrorIs(t, err, tt.want)
			require.Equal(t, tt.wantFreed, k.freed.Load())
		})
	}
}

func TestPerformSolidityPanic(t *testing.T) {
	k := &fakeKernel{
		reentrant: true,
		solid:     func(*kernel.Mesh) bool { panic("predicate abort") },
	}
	p := newTestPipeline(k)
	res, err := p.Perform(context.Background(), mesh.Cube(1), cubeAt(1, 0, 0), Union)
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrKernelFailure)
	require.Zero(t, k.calls.Load())
}

func TestDispatchUnknownOperation(t *testing.T) {
	k := &fakeKernel{reentrant: true}
	d := newDispatcher(k, false)
	km := ToKernel(mesh.Cube(1))
	res, err := d.dispatch(context.Background(), logging.Discard(), Operation(9), km, km)
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrKernelFailure)
	require.Zero(t, k.calls.Load())
}

func TestResultReleaseAndTake(t *testing.T) {
	p := newTestPipeline(&fakeKernel{reentrant: true})

	res, err := p.Perform(context.Background(), mesh.Cube(1), cubeAt(0, 0, 1), Union)
	require.NoError(t, err)
	require.False(t, res.Released())
	res.Release()
	require.True(t, res.Released())
	require.Zero(t, res.VertexCount())
	res.Release()

	res, err = p.Perform(context.Background(), mesh.Cube(1), cubeAt(0, 0, 1), Union)
	require.NoError(t, err)
	m := res.Take()
	require.Equal(t, 8, m.VertexCount())
	require.True(t, res.Released())
	require.True(t, res.Take().IsEmpty())

	var nilResult *Result
	nilResult.Release()
	require.True(t, nilResult.Released())
}

func TestNonReentrantKernelIsSerialized(t *testing.T) {
	var active, peak atomic.Int32
	k := &fakeKernel{reentrant: false}
	k.run = func(a, _ *kernel.Mesh) (*kernel.Mesh, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return k.foreign(append([]float32(nil), a.Vertices...), append([]uint32(nil), a.Indices...)), nil
	}
	p := newTestPipeline(k)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Perform(context.Background(), mesh.Cube(1), cubeAt(0.5, 0, 0), Union)
			if err == nil {
				res.Release()
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 8, k.calls.Load())
	require.EqualValues(t, 1, peak.Load())
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, StatusOK},
		{errorf("validate", "%w", ErrMalformedInput), StatusMalformedInput},
		{errorf("solidity", "%w", ErrNotSolid), StatusNotSolid},
		{errorf("dispatch", "%w", ErrKernelFailure), StatusKernelFailure},
		{errorf("marshal", "%w", ErrDegenerateResult), StatusDegenerateResult},
		{errorf("marshal", "%w", ErrAllocation), StatusAllocationFailure},
		{errors.New("foreign"), StatusKernelFailure},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Status(tt.err), "Status(%v)", tt.err)
	}
	require.Equal(t, "not solid", StatusText(StatusNotSolid))
	require.Equal(t, "status(42)", StatusText(42))
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want Operation
	}{
		{"union", Union},
		{"Intersect", Intersection},
		{"2", Difference},
		{" subtract ", Difference},
	}
	for _, tt := range tests {
		got, err := ParseOperation(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
	_, err := ParseOperation("xor")
	require.ErrorIs(t, err, ErrMalformedInput)

	require.Equal(t, "difference", Difference.String())
	require.Equal(t, "Operation(5)", Operation(5).String())
	require.False(t, Operation(5).Valid())
}

func TestCheck(t *testing.T) {
	p := newTestPipeline(&fakeKernel{reentrant: true})
	require.NoError(t, p.Check(mesh.Cube(1)))

	open := mesh.SingleTriangle(mesh.Vec3(0, 0, 0), mesh.Vec3(0, 1, 0), mesh.Vec3(1, 0, 0))
	require.ErrorIs(t, p.Check(open), ErrNotSolid)
	require.ErrorIs(t, p.Check(mesh.Mesh{}), ErrMalformedInput)
}

func TestPerformSdfx(t *testing.T) {
	p := New(Options{Kernel: sdfx.NewWithCells(32), Logger: logging.Discard()})

	res, err := p.Perform(context.Background(), mesh.Cube(1), cubeAt(0.5, 0.5, 0.5), Union)
	require.NoError(t, err)
	defer res.Release()

	m := res.Mesh()
	require.Positive(t, m.VertexCount())
	require.Positive(t, m.IndexCount())
	require.Zero(t, m.IndexCount()%3)
	for _, idx := range m.Indices {
		require.True(t, idx >= 0 && int(idx) < m.VertexCount())
	}
	lo, hi := m.Bounds()
	require.InDelta(t, 0, lo.X, 0.1)
	require.InDelta(t, 1.5, hi.Y, 0.1)

	// Converted back to kernel convention the result encloses the union.
	require.InDelta(t, 1.875, kernel.SignedVolume(ToKernel(m)), 0.3)

	_, err = p.Perform(context.Background(), mesh.Cube(1), cubeAt(5, 5, 5), Intersection)
	require.ErrorIs(t, err, ErrDegenerateResult)
}
