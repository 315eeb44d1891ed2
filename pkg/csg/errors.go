package csg

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput indicates a structural problem with the inputs:
	// missing buffers, empty meshes, partial triangles, out-of-range
	// indices, non-finite coordinates or an unknown operation.
	ErrMalformedInput = errors.New("csg: malformed input")

	// ErrNotSolid indicates an input is not a closed, consistently
	// oriented manifold.
	ErrNotSolid = errors.New("csg: input is not solid")

	// ErrKernelFailure indicates the kernel failed or panicked.
	ErrKernelFailure = errors.New("csg: kernel failure")

	// ErrDegenerateResult indicates the kernel produced an empty mesh,
	// e.g. intersecting disjoint solids.
	ErrDegenerateResult = errors.New("csg: degenerate result")

	// ErrAllocation indicates output buffers could not be provided.
	ErrAllocation = errors.New("csg: allocation failure")
)

// Status codes reported by the widened C ABI.
const (
	StatusOK = iota
	StatusMalformedInput
	StatusNotSolid
	StatusKernelFailure
	StatusDegenerateResult
	StatusAllocationFailure
)

// Error wraps an underlying error with the stage that failed.
type Error struct {
	Op  string // Stage that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("csg.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorf creates a new Error
func errorf(op string, format string, args ...interface{}) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf(format, args...),
	}
}

// Status maps an error returned by this package to its boundary status
// code. Errors from outside the taxonomy count as kernel failures.
func Status(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrMalformedInput):
		return StatusMalformedInput
	case errors.Is(err, ErrNotSolid):
		return StatusNotSolid
	case errors.Is(err, ErrDegenerateResult):
		return StatusDegenerateResult
	case errors.Is(err, ErrAllocation):
		return StatusAllocationFailure
	}
	return StatusKernelFailure
}

// StatusText returns a short name for a status code.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "ok"
	case StatusMalformedInput:
		return "malformed input"
	case StatusNotSolid:
		return "not solid"
	case StatusKernelFailure:
		return "kernel failure"
	case StatusDegenerateResult:
		return "degenerate result"
	case StatusAllocationFailure:
		return "allocation failure"
	}
	return fmt.Sprintf("status(%d)", code)
}
