package csg

import (
	"context"
	"fmt"
	"sync"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/logging"
)

type dispatchState int

const (
	stateNotStarted dispatchState = iota
	stateRunning
	stateSucceeded
	stateFailed
)

func (s dispatchState) String() string {
	switch s {
	case stateNotStarted:
		return "not-started"
	case stateRunning:
		return "running"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	}
	return fmt.Sprintf("dispatchState(%d)", int(s))
}

// dispatcher invokes kernel entry points. No kernel error or panic escapes
// it: both come back as ErrKernelFailure.
type dispatcher struct {
	k  kernel.Kernel
	mu *sync.Mutex // nil when calls may run concurrently
}

func newDispatcher(k kernel.Kernel, serialize bool) *dispatcher {
	d := &dispatcher{k: k}
	if r, ok := k.(kernel.Reentrant); ok && !r.Reentrant() {
		serialize = true
	}
	if serialize {
		d.mu = &sync.Mutex{}
	}
	return d
}

func (d *dispatcher) lock() func() {
	if d.mu == nil {
		return func() {}
	}
	d.mu.Lock()
	return d.mu.Unlock
}

// isSolid runs the kernel's solidity predicate. A panicking predicate is a
// kernel failure, not a verdict.
func (d *dispatcher) isSolid(m *kernel.Mesh) (solid bool, err error) {
	defer d.lock()()
	defer func() {
		if r := recover(); r != nil {
			solid = false
			err = errorf("solidity", "%w: panic: %v", ErrKernelFailure, r)
		}
	}()
	return d.k.IsSolid(m), nil
}

// dispatch runs op on the kernel and returns its result in kernel
// convention. On failure any partial result is released before returning.
func (d *dispatcher) dispatch(ctx context.Context, log logging.Logger, op Operation, a, b *kernel.Mesh) (res *kernel.Mesh, err error) {
	state := stateNotStarted
	transition := func(next dispatchState) {
		log.Debug(ctx, "dispatch", "op", op, "from", state, "to", next)
		state = next
	}

	defer d.lock()()
	transition(stateRunning)
	defer func() {
		if r := recover(); r != nil {
			d.release(res)
			res = nil
			err = errorf("dispatch", "%w: %s panicked: %v", ErrKernelFailure, op, r)
		}
		if err != nil {
			transition(stateFailed)
			return
		}
		transition(stateSucceeded)
	}()

	switch op {
	case Union:
		res, err = d.k.Union(a, b)
	case Intersection:
		res, err = d.k.Intersection(a, b)
	case Difference:
		res, err = d.k.Difference(a, b)
	default:
		return nil, errorf("dispatch", "%w: unknown operation %d", ErrKernelFailure, int32(op))
	}
	if err != nil {
		d.release(res)
		return nil, errorf("dispatch", "%w: %s: %v", ErrKernelFailure, op, err)
	}
	if res == nil {
		return nil, errorf("dispatch", "%w: %s returned no mesh", ErrKernelFailure, op)
	}
	return res, nil
}

// release hands m back to the kernel, swallowing a panicking release so
// that the original failure is the one reported.
func (d *dispatcher) release(m *kernel.Mesh) {
	if m == nil {
		return
	}
	defer func() { _ = recover() }()
	d.k.Release(m)
}
