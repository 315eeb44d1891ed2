//go:build !cork || !cgo

// Package cork binds the Cork boolean library as a kernel.Kernel. When the
// "cork" build tag is not set, this stub is compiled instead and New
// returns kernel.ErrNotBuilt.
//
// Build with: go build -tags=cork
package cork

import (
	"fmt"

	"github.com/chazu/meshbool/pkg/kernel"
)

// New returns an error indicating Cork is not available.
// Build with -tags=cork to enable.
func New() (kernel.Kernel, error) {
	return nil, fmt.Errorf("cork kernel not available: build with -tags=cork: %w", kernel.ErrNotBuilt)
}
