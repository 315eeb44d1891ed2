// Package script evaluates small Lisp programs that build meshes and
// combine them with booleans. It wraps zygomys in a sandboxed environment;
// each evaluation gets a fresh interpreter.
//
//	(def base (cube 2 :center))
//	(def hole (scale (cube 1 :center) 0.5 0.5 4))
//	(difference base hole)
//
// The value of the last expression is the result.
package script

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/meshbool/pkg/csg"
	"github.com/chazu/meshbool/pkg/mesh"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result is the outcome of a successful evaluation.
type Result struct {
	// Mesh is the final mesh, empty if the program did not end with one.
	Mesh mesh.Mesh
	// Value is the printed form of the final expression.
	Value string
}

// Options configures an Engine.
type Options struct {
	// Pipeline runs the boolean builtins. Nil uses csg.Perform.
	Pipeline *csg.Pipeline
	// Dir is the directory `load` may read from. Empty disables `load`.
	Dir string
	// Timeout bounds one evaluation. Zero selects EvalTimeout.
	Timeout time.Duration
}

// Engine evaluates scripts. It is safe for concurrent use; each call to
// Evaluate creates a fresh sandboxed environment for determinism.
type Engine struct {
	opts Options

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine.
func NewEngine(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = EvalTimeout
	}
	return &Engine{opts: opts}
}

// Evaluate runs source and returns its result.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(ctx context.Context, source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(ctx, source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, e.opts.Timeout, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx context.Context, source string) (*Result, []EvalError, error) {
	// Empty source is a valid program that produces nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls; `load` is ours and confined to Options.Dir.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	e.registerBuiltins(ctx, env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	v, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	res := &Result{Value: v.SexpString(nil)}
	if m, ok := v.(*sexpMesh); ok {
		res.Mesh = m.m
	}
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
