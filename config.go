package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/meshbool/internal/capi"
	"github.com/chazu/meshbool/pkg/csg"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/cork"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/logging"
)

// config holds the library settings read from the environment.
type config struct {
	Kernel    string
	Cells     int
	Serialize bool
	LogLevel  slog.Level
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Kernel: "sdfx",
		Cells:  sdfx.DefaultMeshCells,
	}
	if v := strings.ToLower(strings.TrimSpace(getenv("MESHBOOL_KERNEL"))); v != "" {
		if v != "sdfx" && v != "cork" {
			return cfg, fmt.Errorf("MESHBOOL_KERNEL: unknown kernel %q", v)
		}
		cfg.Kernel = v
	}
	if v := getenv("MESHBOOL_SDF_CELLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("MESHBOOL_SDF_CELLS: want a positive integer, got %q", v)
		}
		cfg.Cells = n
	}
	if v := getenv("MESHBOOL_SERIALIZE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("MESHBOOL_SERIALIZE: %w", err)
		}
		cfg.Serialize = b
	}
	level, err := logging.ParseLevel(getenv("MESHBOOL_LOG_LEVEL"))
	if err != nil {
		return cfg, fmt.Errorf("MESHBOOL_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level
	return cfg, nil
}

// newKernel returns the configured kernel. A cork request in a build
// without cork falls back to sdfx.
func newKernel(cfg config, log logging.Logger) kernel.Kernel {
	if cfg.Kernel == "cork" {
		k, err := cork.New()
		if err == nil {
			return k
		}
		log.Warn(context.Background(), "falling back to sdfx kernel", "err", err)
	}
	return sdfx.NewWithCells(cfg.Cells)
}

func newBoundary(cfg config, alloc capi.Allocator, w io.Writer) *capi.Boundary {
	log := logging.NewText(w, cfg.LogLevel).With("lib", "meshbool")
	p := csg.New(csg.Options{
		Kernel:          newKernel(cfg, log),
		Logger:          log,
		SerializeKernel: cfg.Serialize,
		MaxElements:     csg.DefaultMaxElements,
	})
	return capi.New(p, alloc, log)
}

var (
	libOnce     sync.Once
	libBoundary *capi.Boundary
)

// library returns the process-wide boundary, building it on first use. A
// bad environment is reported once and replaced by defaults.
func library() *capi.Boundary {
	libOnce.Do(func() {
		cfg, err := loadConfig(os.Getenv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "meshbool: %v; using defaults\n", err)
			cfg, _ = loadConfig(func(string) string { return "" })
		}
		libBoundary = newBoundary(cfg, capi.CAllocator{}, os.Stderr)
	})
	return libBoundary
}
